// Where: internal/diversity/lsmat.go
// What: Parser for labeled square matrix (lsmat) distance matrix files.
// Why: Distance matrix artifacts arrive as the tab-separated text format scikit-bio writes.
package diversity

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// DistanceMatrix is a symmetric, hollow matrix of pairwise distances keyed by
// sample ID. Data is stored row-major, one row per ID in order.
type DistanceMatrix struct {
	IDs  []string
	Data [][]float64
}

// Shape returns the number of samples in the matrix.
func (dm *DistanceMatrix) Shape() int {
	return len(dm.IDs)
}

// SampleIDs returns the set of sample IDs in the matrix.
func (dm *DistanceMatrix) SampleIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(dm.IDs))
	for _, id := range dm.IDs {
		ids[id] = struct{}{}
	}
	return ids
}

// CondensedForm returns the upper-triangle distances (excluding the diagonal)
// in row-major order, matching the vector statistics are computed over.
func (dm *DistanceMatrix) CondensedForm() []float64 {
	n := len(dm.IDs)
	out := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, dm.Data[i][j])
		}
	}
	return out
}

// ReadDistanceMatrix parses the lsmat file at path.
func ReadDistanceMatrix(path string) (*DistanceMatrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dm, err := ParseDistanceMatrix(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return dm, nil
}

// ParseDistanceMatrix parses the lsmat format: a header line listing IDs,
// then one row per ID with tab-separated distances. Row order must match the
// header and the matrix must be symmetric and hollow.
func ParseDistanceMatrix(r io.Reader) (*DistanceMatrix, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var header []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		// Leading empty field before the first ID is the corner cell.
		if fields[0] == "" {
			fields = fields[1:]
		}
		header = fields
		break
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("lsmat: missing header line")
	}

	n := len(header)
	dm := &DistanceMatrix{
		IDs:  header,
		Data: make([][]float64, 0, n),
	}

	row := 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if row >= n {
			return nil, fmt.Errorf("lsmat: more rows than header IDs (%d)", n)
		}
		fields := strings.Split(line, "\t")
		if len(fields) != n+1 {
			return nil, fmt.Errorf("lsmat: row %d has %d values, expected %d", row+1, len(fields)-1, n)
		}
		if fields[0] != header[row] {
			return nil, fmt.Errorf("lsmat: row ID %q does not match header ID %q", fields[0], header[row])
		}
		values := make([]float64, n)
		for i, field := range fields[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("lsmat: row %d column %d: %w", row+1, i+1, err)
			}
			values[i] = v
		}
		dm.Data = append(dm.Data, values)
		row++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if row != n {
		return nil, fmt.Errorf("lsmat: expected %d rows, found %d", n, row)
	}

	for i := 0; i < n; i++ {
		if dm.Data[i][i] != 0 {
			return nil, fmt.Errorf("lsmat: nonzero diagonal at %q", header[i])
		}
		for j := i + 1; j < n; j++ {
			if math.Abs(dm.Data[i][j]-dm.Data[j][i]) > 1e-9 {
				return nil, fmt.Errorf("lsmat: matrix is not symmetric at (%q, %q)", header[i], header[j])
			}
		}
	}

	return dm, nil
}
