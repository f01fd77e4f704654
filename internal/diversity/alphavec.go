// Where: internal/diversity/alphavec.go
// What: Parser for per-sample alpha diversity vector files.
// Why: Alpha vector artifacts are two-column TSVs keyed by sample ID.
package diversity

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// AlphaVector holds one alpha diversity value per sample.
type AlphaVector struct {
	Metric string
	IDs    []string
	Values map[string]float64
}

// SampleIDs returns the set of sample IDs in the vector.
func (av *AlphaVector) SampleIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(av.IDs))
	for _, id := range av.IDs {
		ids[id] = struct{}{}
	}
	return ids
}

// ReadAlphaVector parses the alpha vector file at path.
func ReadAlphaVector(path string) (*AlphaVector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	av, err := ParseAlphaVector(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return av, nil
}

// ParseAlphaVector parses a TSV with a header row naming the metric in its
// last column, then one "<sample>\t<value>" row per sample.
func ParseAlphaVector(r io.Reader) (*AlphaVector, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	av := &AlphaVector{Values: map[string]float64{}}
	row := 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("alpha vector: row %d has %d columns, expected 2", row+1, len(fields))
		}
		row++
		if row == 1 {
			av.Metric = fields[1]
			continue
		}
		id := fields[0]
		value, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("alpha vector: sample %q: %w", id, err)
		}
		if _, seen := av.Values[id]; seen {
			return nil, fmt.Errorf("alpha vector: duplicate sample %q", id)
		}
		av.IDs = append(av.IDs, id)
		av.Values[id] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if row == 0 {
		return nil, fmt.Errorf("alpha vector: missing header line")
	}
	if len(av.IDs) == 0 {
		return nil, fmt.Errorf("alpha vector: no samples")
	}
	return av, nil
}
