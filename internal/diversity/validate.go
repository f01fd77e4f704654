// Where: internal/diversity/validate.go
// What: Artifact validation for the diversity types.
// Why: New artifacts must be checked against the study metadata before Qiita accepts them.
package diversity

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/qiita-spots/qtp-diversity/internal/qiita"
)

// filesSchema constrains the job "files" payload: a non-empty object mapping
// filepath types to non-empty lists of paths.
const filesSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"minProperties": 1,
	"additionalProperties": {
		"type": "array",
		"items": {"type": "string", "minLength": 1},
		"minItems": 1
	}
}`

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

func loadFilesSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("files.schema.json", strings.NewReader(filesSchema)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile("files.schema.json")
	})
	return compiledSchema, schemaErr
}

// ValidationError marks a data problem that should be reported to the server
// as a failed job rather than crash the plugin runner.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationFailure(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// TypedFile pairs an artifact file path with its Qiita filepath type.
type TypedFile struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// Artifact is the payload describing a validated artifact.
type Artifact struct {
	Name  string      `json:"name,omitempty"`
	Type  string      `json:"artifact_type"`
	Files []TypedFile `json:"filepaths"`
}

// Parameters carries the validate job inputs.
type Parameters struct {
	Template     string
	Analysis     string
	Files        string
	ArtifactType string
}

// ParseParameters extracts validate parameters from the raw job payload.
// template/analysis arrive as null, numbers, or strings depending on origin.
func ParseParameters(raw map[string]any) Parameters {
	asString := func(v any) string {
		switch value := v.(type) {
		case nil:
			return ""
		case string:
			return value
		case float64:
			return fmt.Sprintf("%.0f", value)
		default:
			return fmt.Sprintf("%v", value)
		}
	}
	return Parameters{
		Template:     asString(raw["template"]),
		Analysis:     asString(raw["analysis"]),
		Files:        asString(raw["files"]),
		ArtifactType: asString(raw["artifact_type"]),
	}
}

// MetadataSource is the subset of the Qiita client the validate flow needs.
type MetadataSource interface {
	PrepTemplateData(ctx context.Context, prepID string) (qiita.Metadata, error)
	AnalysisMetadata(ctx context.Context, analysisID string) (qiita.Metadata, error)
	UpdateJobStep(ctx context.Context, jobID, step string) error
}

type validatorFunc func(files map[string][]string, metadata qiita.Metadata, outDir string) ([]Artifact, error)

var validators = map[string]validatorFunc{
	"distance_matrix":    validateDistanceMatrix,
	"ordination_results": validateOrdinationResults,
	"alpha_vector":       validateAlphaVector,
}

func supportedTypes() string {
	names := make([]string, 0, len(validators))
	for name := range validators {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// Validate checks a new artifact against the study metadata and returns the
// artifact payload on success. Data problems surface as *ValidationError.
func Validate(ctx context.Context, source MetadataSource, jobID string, params Parameters, outDir string) ([]Artifact, error) {
	validator, ok := validators[params.ArtifactType]
	if !ok {
		return nil, validationFailure("Unknown artifact type %s. Supported types: %s",
			params.ArtifactType, supportedTypes())
	}

	files, err := decodeFiles(params.Files)
	if err != nil {
		return nil, err
	}

	if err := source.UpdateJobStep(ctx, jobID, "Step 1: Collecting metadata"); err != nil {
		return nil, err
	}
	var metadata qiita.Metadata
	switch {
	case params.Template != "":
		metadata, err = source.PrepTemplateData(ctx, params.Template)
	case params.Analysis != "":
		metadata, err = source.AnalysisMetadata(ctx, params.Analysis)
	default:
		return nil, validationFailure("Missing metadata information")
	}
	if err != nil {
		return nil, err
	}

	if err := source.UpdateJobStep(ctx, jobID, "Step 2: Validating files"); err != nil {
		return nil, err
	}
	return validator(files, metadata, outDir)
}

// decodeFiles parses and schema-checks the JSON files payload.
func decodeFiles(raw string) (map[string][]string, error) {
	schema, err := loadFilesSchema()
	if err != nil {
		return nil, err
	}

	var document any
	if err := json.Unmarshal([]byte(raw), &document); err != nil {
		return nil, validationFailure("Invalid files payload: %v", err)
	}
	if err := schema.Validate(document); err != nil {
		return nil, validationFailure("Invalid files payload: %v", err)
	}

	var files map[string][]string
	if err := json.Unmarshal([]byte(raw), &files); err != nil {
		return nil, validationFailure("Invalid files payload: %v", err)
	}
	return files, nil
}

// plainTextFile returns the single plain_text file the diversity artifacts
// are expected to carry.
func plainTextFile(files map[string][]string) (string, error) {
	paths := files["plain_text"]
	if len(paths) == 0 {
		return "", validationFailure("Missing plain_text file")
	}
	return paths[0], nil
}

func missingFromMetadata(sampleIDs map[string]struct{}, metadata qiita.Metadata) bool {
	known := metadata.SampleIDs()
	for id := range sampleIDs {
		if _, ok := known[id]; !ok {
			return true
		}
	}
	return false
}

func validateDistanceMatrix(files map[string][]string, metadata qiita.Metadata, _ string) ([]Artifact, error) {
	path, err := plainTextFile(files)
	if err != nil {
		return nil, err
	}
	dm, err := ReadDistanceMatrix(path)
	if err != nil {
		return nil, validationFailure("%v", err)
	}
	if missingFromMetadata(dm.SampleIDs(), metadata) {
		return nil, validationFailure("The distance matrix contain samples not present in the metadata")
	}
	return []Artifact{{
		Type:  "distance_matrix",
		Files: []TypedFile{{Path: path, Type: "plain_text"}},
	}}, nil
}

func validateOrdinationResults(files map[string][]string, metadata qiita.Metadata, _ string) ([]Artifact, error) {
	path, err := plainTextFile(files)
	if err != nil {
		return nil, err
	}
	ordination, err := ReadOrdinationResults(path)
	if err != nil {
		return nil, validationFailure("%v", err)
	}
	if missingFromMetadata(ordination.SampleIDs(), metadata) {
		return nil, validationFailure("The ordination results contain samples not present in the metadata")
	}
	return []Artifact{{
		Type:  "ordination_results",
		Files: []TypedFile{{Path: path, Type: "plain_text"}},
	}}, nil
}

func validateAlphaVector(files map[string][]string, metadata qiita.Metadata, _ string) ([]Artifact, error) {
	path, err := plainTextFile(files)
	if err != nil {
		return nil, err
	}
	vector, err := ReadAlphaVector(path)
	if err != nil {
		return nil, validationFailure("%v", err)
	}
	if missingFromMetadata(vector.SampleIDs(), metadata) {
		return nil, validationFailure("The alpha vector contains samples not present in the metadata")
	}
	return []Artifact{{
		Type:  "alpha_vector",
		Files: []TypedFile{{Path: path, Type: "plain_text"}},
	}}, nil
}
