// Where: internal/plugin/plugin.go
// What: Plugin definition and artifact type table.
// Why: Keep the registration data declarative and in one place.
package plugin

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/qiita-spots/qtp-diversity/internal/meta"
)

//go:embed artifact_types.yml
var artifactTypesYAML []byte

// FilepathType names a file kind an artifact type accepts.
type FilepathType struct {
	Type     string `yaml:"type"`
	Required bool   `yaml:"required"`
}

// ArtifactType describes one artifact type the plugin registers with Qiita.
type ArtifactType struct {
	Name                  string         `yaml:"name"`
	Description           string         `yaml:"description"`
	CanBeSubmittedToEBI   bool           `yaml:"can_be_submitted_to_ebi"`
	CanBeSubmittedToVAMPS bool           `yaml:"can_be_submitted_to_vamps"`
	IsUserUploadable      bool           `yaml:"is_user_uploadable"`
	FilepathTypes         []FilepathType `yaml:"filepath_types"`
}

// Definition describes the plugin as registered with the Qiita server.
type Definition struct {
	Name          string
	Version       string
	Description   string
	Publications  []string
	ArtifactTypes []ArtifactType
}

var (
	definitionOnce sync.Once
	definitionErr  error
	definition     Definition
)

// Load returns the plugin definition with the artifact type table decoded
// from the embedded YAML document.
func Load() (Definition, error) {
	definitionOnce.Do(func() {
		var types []ArtifactType
		if err := yaml.Unmarshal(artifactTypesYAML, &types); err != nil {
			definitionErr = fmt.Errorf("decode artifact types: %w", err)
			return
		}
		definition = Definition{
			Name:          meta.PluginName,
			Version:       meta.PluginVersion,
			Description:   meta.PluginDescription,
			ArtifactTypes: types,
		}
	})
	return definition, definitionErr
}
