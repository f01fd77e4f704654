// Where: internal/diversity/summary.go
// What: HTML summary generation for diversity artifacts.
// Why: Qiita shows a per-artifact summary page; the plugin renders it on demand.
package diversity

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/sprig/v3"

	"github.com/qiita-spots/qtp-diversity/internal/qiita"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templateCache sync.Map

// ArtifactSource is the subset of the Qiita client the summary flow needs.
type ArtifactSource interface {
	ArtifactInfo(ctx context.Context, artifactID string) (qiita.ArtifactInfo, error)
	UpdateJobStep(ctx context.Context, jobID, step string) error
}

type summarizerFunc func(files map[string][]string, outDir string) (string, error)

var summarizers = map[string]summarizerFunc{
	"distance_matrix":    summarizeDistanceMatrix,
	"ordination_results": summarizeOrdinationResults,
}

func supportedSummaryTypes() string {
	names := make([]string, 0, len(summarizers))
	for name := range summarizers {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// GenerateHTMLSummary renders the summary page of an existing artifact into
// outDir and returns its path. Unsupported artifact types surface as
// *ValidationError so the job is reported failed, not crashed.
func GenerateHTMLSummary(ctx context.Context, source ArtifactSource, jobID, artifactID, outDir string) (string, error) {
	if err := source.UpdateJobStep(ctx, jobID, "Step 1: Collecting artifact information"); err != nil {
		return "", err
	}
	info, err := source.ArtifactInfo(ctx, artifactID)
	if err != nil {
		return "", err
	}

	summarizer, ok := summarizers[info.Type]
	if !ok {
		return "", validationFailure("Unknown artifact type %s. Supported types: %s",
			info.Type, supportedSummaryTypes())
	}

	if err := source.UpdateJobStep(ctx, jobID, "Step 2: Generating summary"); err != nil {
		return "", err
	}
	return summarizer(info.Files, outDir)
}

func renderTemplate(name string, data any) (string, error) {
	cached, ok := templateCache.Load(name)
	if !ok {
		parsed, err := template.New(filepath.Base(name)).
			Funcs(sprig.HtmlFuncMap()).
			ParseFS(templateFS, name)
		if err != nil {
			return "", fmt.Errorf("parse template %s: %w", name, err)
		}
		cached = parsed
		templateCache.Store(name, parsed)
	}

	var buf bytes.Buffer
	if err := cached.(*template.Template).Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}

func writeIndexHTML(outDir, content string) (string, error) {
	path := filepath.Join(outDir, "index.html")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type distanceMatrixSummary struct {
	Samples int
	Min     float64
	Max     float64
	Mean    float64
	Median  float64
	Heatmap template.HTML
}

func summarizeDistanceMatrix(files map[string][]string, outDir string) (string, error) {
	path, err := plainTextFile(files)
	if err != nil {
		return "", err
	}
	dm, err := ReadDistanceMatrix(path)
	if err != nil {
		return "", validationFailure("%v", err)
	}

	data := dm.CondensedForm()
	if len(data) == 0 {
		return "", validationFailure("The distance matrix has fewer than two samples")
	}

	summary := distanceMatrixSummary{
		Samples: dm.Shape(),
		Min:     math.Inf(1),
		Max:     math.Inf(-1),
		Heatmap: heatmapSVG(dm),
	}
	var sum float64
	for _, v := range data {
		sum += v
		summary.Min = math.Min(summary.Min, v)
		summary.Max = math.Max(summary.Max, v)
	}
	summary.Mean = sum / float64(len(data))
	summary.Median = median(data)

	content, err := renderTemplate("templates/distance_matrix.html.tmpl", summary)
	if err != nil {
		return "", err
	}
	return writeIndexHTML(outDir, content)
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// heatmapSVG renders the matrix as an inline SVG grid shaded by distance.
func heatmapSVG(dm *DistanceMatrix) template.HTML {
	n := dm.Shape()
	maxDistance := 0.0
	for _, row := range dm.Data {
		for _, v := range row {
			maxDistance = math.Max(maxDistance, v)
		}
	}

	const cell = 8
	var svg strings.Builder
	fmt.Fprintf(&svg, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`,
		n*cell, n*cell)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			shade := 255
			if maxDistance > 0 {
				shade = 255 - int(dm.Data[i][j]/maxDistance*255)
			}
			fmt.Fprintf(&svg, `<rect x="%d" y="%d" width="%d" height="%d" fill="rgb(%d,%d,%d)"/>`,
				j*cell, i*cell, cell, cell, shade, shade, shade)
		}
	}
	svg.WriteString("</svg>")
	return template.HTML(svg.String())
}

type ordinationAxis struct {
	Index   int
	Eigval  float64
	Percent float64
}

type ordinationSummary struct {
	Samples int
	Axes    []ordinationAxis
}

func summarizeOrdinationResults(files map[string][]string, outDir string) (string, error) {
	path, err := plainTextFile(files)
	if err != nil {
		return "", err
	}
	ordination, err := ReadOrdinationResults(path)
	if err != nil {
		return "", validationFailure("%v", err)
	}

	summary := ordinationSummary{}
	if ordination.Site != nil {
		summary.Samples = len(ordination.Site.IDs)
	}
	for i, eigval := range ordination.Eigvals {
		axis := ordinationAxis{Index: i + 1, Eigval: eigval}
		if i < len(ordination.ProportionExplained) {
			axis.Percent = ordination.ProportionExplained[i] * 100
		}
		summary.Axes = append(summary.Axes, axis)
	}

	content, err := renderTemplate("templates/ordination_results.html.tmpl", summary)
	if err != nil {
		return "", err
	}
	return writeIndexHTML(outDir, content)
}
