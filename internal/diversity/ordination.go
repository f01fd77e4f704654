// Where: internal/diversity/ordination.go
// What: Parser for scikit-bio ordination results text files.
// Why: Ordination artifacts carry sample coordinates the validators must inspect.
package diversity

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// CoordinateMatrix holds one labeled section of an ordination results file
// (Species, Site, Biplot, or Site constraints).
type CoordinateMatrix struct {
	IDs    []string
	Coords [][]float64
}

// OrdinationResults mirrors the sections of the scikit-bio ordination format.
// Empty sections (declared with zero dimensions) are nil.
type OrdinationResults struct {
	Eigvals             []float64
	ProportionExplained []float64
	Species             *CoordinateMatrix
	Site                *CoordinateMatrix
	Biplot              *CoordinateMatrix
	SiteConstraints     *CoordinateMatrix
}

// SampleIDs returns the set of sample IDs (Site section rows).
func (or *OrdinationResults) SampleIDs() map[string]struct{} {
	ids := map[string]struct{}{}
	if or.Site != nil {
		for _, id := range or.Site.IDs {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// ReadOrdinationResults parses the ordination results file at path.
func ReadOrdinationResults(path string) (*OrdinationResults, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	or, err := ParseOrdinationResults(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return or, nil
}

type ordinationScanner struct {
	scanner *bufio.Scanner
}

// nextLine returns the next non-blank line, or ok=false at EOF.
func (s *ordinationScanner) nextLine() (string, bool) {
	for s.scanner.Scan() {
		line := s.scanner.Text()
		if strings.TrimSpace(line) != "" {
			return line, true
		}
	}
	return "", false
}

// ParseOrdinationResults parses the sectioned text format: an Eigvals vector,
// a Proportion explained vector, and the Species / Site / Biplot /
// Site constraints coordinate matrices, in that order.
func ParseOrdinationResults(r io.Reader) (*OrdinationResults, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	s := &ordinationScanner{scanner: scanner}

	eigvals, err := s.parseVector("Eigvals")
	if err != nil {
		return nil, err
	}
	proportion, err := s.parseVector("Proportion explained")
	if err != nil {
		return nil, err
	}

	or := &OrdinationResults{
		Eigvals:             eigvals,
		ProportionExplained: proportion,
	}
	sections := []struct {
		name string
		dest **CoordinateMatrix
	}{
		{"Species", &or.Species},
		{"Site", &or.Site},
		{"Biplot", &or.Biplot},
		{"Site constraints", &or.SiteConstraints},
	}
	for _, section := range sections {
		matrix, err := s.parseMatrix(section.name)
		if err != nil {
			return nil, err
		}
		*section.dest = matrix
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return or, nil
}

// parseVector reads a "<name>\t<count>" header followed by one line of values.
// A zero count has no data line.
func (s *ordinationScanner) parseVector(name string) ([]float64, error) {
	header, ok := s.nextLine()
	if !ok {
		return nil, fmt.Errorf("ordination: missing %s section", name)
	}
	fields := strings.Split(header, "\t")
	if fields[0] != name || len(fields) != 2 {
		return nil, fmt.Errorf("ordination: malformed %s header: %q", name, header)
	}
	count, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("ordination: %s count: %w", name, err)
	}
	if count == 0 {
		return nil, nil
	}

	line, ok := s.nextLine()
	if !ok {
		return nil, fmt.Errorf("ordination: missing %s values", name)
	}
	return parseFloats(name, strings.Split(line, "\t"), count)
}

// parseMatrix reads a "<name>\t<rows>\t<cols>" header followed by rows lines
// of "<id>\t<values...>". Zero dimensions yield a nil matrix.
func (s *ordinationScanner) parseMatrix(name string) (*CoordinateMatrix, error) {
	header, ok := s.nextLine()
	if !ok {
		return nil, fmt.Errorf("ordination: missing %s section", name)
	}
	fields := strings.Split(header, "\t")
	if fields[0] != name || len(fields) != 3 {
		return nil, fmt.Errorf("ordination: malformed %s header: %q", name, header)
	}
	rows, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("ordination: %s rows: %w", name, err)
	}
	cols, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, fmt.Errorf("ordination: %s cols: %w", name, err)
	}
	if rows == 0 {
		return nil, nil
	}

	matrix := &CoordinateMatrix{
		IDs:    make([]string, 0, rows),
		Coords: make([][]float64, 0, rows),
	}
	for i := 0; i < rows; i++ {
		line, ok := s.nextLine()
		if !ok {
			return nil, fmt.Errorf("ordination: %s section truncated at row %d", name, i+1)
		}
		rowFields := strings.Split(line, "\t")
		if len(rowFields) != cols+1 {
			return nil, fmt.Errorf("ordination: %s row %d has %d values, expected %d",
				name, i+1, len(rowFields)-1, cols)
		}
		values, err := parseFloats(name, rowFields[1:], cols)
		if err != nil {
			return nil, err
		}
		matrix.IDs = append(matrix.IDs, rowFields[0])
		matrix.Coords = append(matrix.Coords, values)
	}
	return matrix, nil
}

func parseFloats(section string, fields []string, want int) ([]float64, error) {
	if len(fields) != want {
		return nil, fmt.Errorf("ordination: %s has %d values, expected %d", section, len(fields), want)
	}
	values := make([]float64, want)
	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("ordination: %s value %d: %w", section, i+1, err)
		}
		values[i] = v
	}
	return values, nil
}
