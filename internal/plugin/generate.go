// Where: internal/plugin/generate.go
// What: Plugin configuration file generation.
// Why: The Qiita server discovers plugins through conf files under ~/.qiita_plugins.
package plugin

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/qiita-spots/qtp-diversity/internal/meta"
)

//go:embed templates/plugin.conf.tmpl
var confTemplateFS embed.FS

type confTemplateData struct {
	Name         string
	Version      string
	Description  string
	EnvScript    string
	StartScript  string
	PluginType   string
	Publications []string
	ServerCert   string
	ClientID     string
	ClientSecret string
}

// PluginsDir returns the directory plugin conf files are written to,
// honoring the QIITA_PLUGINS_DIR override.
func PluginsDir() (string, error) {
	if override := strings.TrimSpace(os.Getenv(meta.PluginsDirEnv)); override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, meta.PluginsDir), nil
}

// ConfigPath returns the conf file path GenerateConfig writes to.
func ConfigPath() (string, error) {
	dir, err := PluginsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s.conf", meta.PluginName, meta.PluginVersion)), nil
}

// GenerateConfig renders and writes the plugin configuration file.
// serverCert is nil when the server runs without a dedicated certificate;
// an empty non-nil value is written as-is.
func GenerateConfig(envScript, startScript string, serverCert *string) error {
	def, err := Load()
	if err != nil {
		return err
	}

	data := confTemplateData{
		Name:         def.Name,
		Version:      def.Version,
		Description:  def.Description,
		EnvScript:    envScript,
		StartScript:  startScript,
		PluginType:   meta.PluginType,
		Publications: def.Publications,
	}
	if serverCert != nil {
		data.ServerCert = *serverCert
	}

	parsed, err := template.New("plugin.conf.tmpl").
		Funcs(sprig.FuncMap()).
		ParseFS(confTemplateFS, "templates/plugin.conf.tmpl")
	if err != nil {
		return fmt.Errorf("parse conf template: %w", err)
	}
	var buf bytes.Buffer
	if err := parsed.Execute(&buf, data); err != nil {
		return fmt.Errorf("render conf template: %w", err)
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
