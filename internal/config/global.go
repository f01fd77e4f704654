// Where: internal/config/global.go
// What: Global config load/save helpers.
// Why: Manage ~/.qtp-diversity/config.yaml consistently.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/qiita-spots/qtp-diversity/internal/meta"
	"gopkg.in/yaml.v3"
)

// ConfigPathEnv overrides the global config file location.
const ConfigPathEnv = "QTP_DIVERSITY_CONFIG_PATH"

// GlobalConfig represents the ~/.qtp-diversity/config.yaml global configuration.
// It remembers the values last used by the configure command so they can be
// offered as prompt suggestions on the next run.
type GlobalConfig struct {
	Version        int    `yaml:"version"`
	EnvScript      string `yaml:"env_script,omitempty"`
	ServerCert     string `yaml:"server_cert,omitempty"`
	LastConfigured string `yaml:"last_configured,omitempty"`
}

// DefaultGlobalConfig returns an initialized GlobalConfig with version set.
func DefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{Version: 1}
}

// GlobalConfigPath returns the path to the global config file.
// The QTP_DIVERSITY_CONFIG_PATH environment variable takes precedence.
func GlobalConfigPath() (string, error) {
	if override := strings.TrimSpace(os.Getenv(ConfigPathEnv)); override != "" {
		path := override
		if !filepath.IsAbs(path) {
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
		}
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, meta.HomeDir, "config.yaml"), nil
}

// EnsureGlobalConfig creates the global config file if it doesn't exist.
func EnsureGlobalConfig() error {
	path, err := GlobalConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return SaveGlobalConfig(path, DefaultGlobalConfig())
		}
		return err
	}
	return nil
}

// LoadGlobalConfig reads and parses the global configuration file.
func LoadGlobalConfig(path string) (GlobalConfig, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return GlobalConfig{}, err
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(payload, &cfg); err != nil {
		return GlobalConfig{}, err
	}
	return cfg, nil
}

// SaveGlobalConfig writes a GlobalConfig to the specified path.
func SaveGlobalConfig(path string, cfg GlobalConfig) error {
	payload, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, payload, 0o644)
}
