// Where: internal/diversity/summary_test.go
// What: Tests for HTML summary generation.
// Why: The summary page is user-facing; statistics and dispatch must be right.
package diversity

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qiita-spots/qtp-diversity/internal/qiita"
)

type fakeArtifactSource struct {
	artifact qiita.ArtifactInfo
	steps    []string
}

func (f *fakeArtifactSource) ArtifactInfo(_ context.Context, _ string) (qiita.ArtifactInfo, error) {
	return f.artifact, nil
}

func (f *fakeArtifactSource) UpdateJobStep(_ context.Context, _, step string) error {
	f.steps = append(f.steps, step)
	return nil
}

func TestDistanceMatrixSummary(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dm.txt", lsmatSample)
	outDir := filepath.Join(dir, "out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatal(err)
	}

	source := &fakeArtifactSource{artifact: qiita.ArtifactInfo{
		Type:  "distance_matrix",
		Files: map[string][]string{"plain_text": {path}},
	}}

	htmlPath, err := GenerateHTMLSummary(context.Background(), source, "job-1", "42", outDir)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if htmlPath != filepath.Join(outDir, "index.html") {
		t.Errorf("html path = %s", htmlPath)
	}

	payload, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	content := string(payload)

	// Distances are 0.25, 0.5, 0.75: min 0.25, max 0.75, mean and median 0.5.
	for _, want := range []string{
		"<b>Number of samples:</b> 3",
		"<b>Minimum distance:</b> 0.2500",
		"<b>Maximum distance:</b> 0.7500",
		"<b>Mean distance:</b> 0.5000",
		"<b>Median distance:</b> 0.5000",
		"<svg",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("summary missing %q:\n%s", want, content)
		}
	}
}

func TestOrdinationResultsSummary(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pcoa.txt", ordinationSample)

	source := &fakeArtifactSource{artifact: qiita.ArtifactInfo{
		Type:  "ordination_results",
		Files: map[string][]string{"plain_text": {path}},
	}}

	htmlPath, err := GenerateHTMLSummary(context.Background(), source, "job-1", "42", dir)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	payload, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	content := string(payload)

	for _, want := range []string{
		"<b>Number of samples:</b> 3",
		"70.12%",
		"29.88%",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("summary missing %q:\n%s", want, content)
		}
	}
}

func TestSummaryUnknownArtifactType(t *testing.T) {
	source := &fakeArtifactSource{artifact: qiita.ArtifactInfo{Type: "BIOM"}}

	_, err := GenerateHTMLSummary(context.Background(), source, "job-1", "42", t.TempDir())
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	want := "Unknown artifact type BIOM. Supported types: distance_matrix, ordination_results"
	if validationErr.Reason != want {
		t.Errorf("reason = %q", validationErr.Reason)
	}
}

func TestMedian(t *testing.T) {
	if got := median([]float64{3, 1, 2}); got != 2 {
		t.Errorf("odd median = %v", got)
	}
	if got := median([]float64{4, 1, 3, 2}); got != 2.5 {
		t.Errorf("even median = %v", got)
	}
}
