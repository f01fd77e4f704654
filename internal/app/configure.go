// Where: internal/app/configure.go
// What: The configure command: collect two inputs and write the plugin conf file.
// Why: Operators register the plugin with a Qiita server by generating its configuration.
package app

import (
	"fmt"
	"io"
	"time"

	"github.com/qiita-spots/qtp-diversity/internal/config"
	"github.com/qiita-spots/qtp-diversity/internal/meta"
	"github.com/qiita-spots/qtp-diversity/internal/plugin"
)

// ConfigureCmd holds the configure command flags. Pointer fields distinguish
// an omitted flag (prompt or default) from one explicitly set, including to
// the empty string.
type ConfigureCmd struct {
	EnvScript *string `name:"env-script" help:"Shell command that activates the plugin environment"`
	CaCert    *string `name:"ca-cert" help:"Path to the server certificate, or None if not needed"`
}

// caCertSentinel is the printable stand-in for "no certificate" used as the
// prompt default. It is translated to an absent value right after collection.
const caCertSentinel = "None"

// runConfigure collects env-script and ca-cert (from flags, interactive
// prompts, or the stated defaults) and delegates file generation to the
// plugin registration routine. Errors from that routine propagate unchanged.
func runConfigure(cli CLI, deps Dependencies, out io.Writer) int {
	generate := deps.GenerateConfig
	if generate == nil {
		generate = plugin.GenerateConfig
	}

	cfgPath, cfg, cfgErr := loadGlobalConfigSoft()

	envScript, err := resolveOption(cli.Configure.EnvScript, deps,
		"Environment script", meta.DefaultEnvScript, cfg.EnvScript)
	if err != nil {
		return exitWithError(out, err)
	}
	caCert, err := resolveOption(cli.Configure.CaCert, deps,
		"Server certificate", caCertSentinel, cfg.ServerCert)
	if err != nil {
		return exitWithError(out, err)
	}

	var serverCert *string
	if caCert != caCertSentinel {
		serverCert = &caCert
	}

	if err := generate(envScript, meta.StartScript, serverCert); err != nil {
		return exitWithError(out, err)
	}

	if cfgErr == nil {
		cfg.EnvScript = envScript
		if serverCert != nil {
			cfg.ServerCert = *serverCert
		} else {
			cfg.ServerCert = ""
		}
		cfg.LastConfigured = deps.Now().Format(time.RFC3339)
		if err := config.SaveGlobalConfig(cfgPath, cfg); err != nil {
			fmt.Fprintf(out, "Warning: failed to remember configure inputs: %v\n", err)
		}
	}

	if path, err := plugin.ConfigPath(); err == nil {
		fmt.Fprintf(out, "wrote plugin configuration: %s\n", path)
	}
	return 0
}

// resolveOption picks a value from the flag, an interactive prompt, or the
// default, in that order. The last-used value is offered as a suggestion but
// never overrides the stated default.
func resolveOption(flag *string, deps Dependencies, title, defaultValue, lastUsed string) (string, error) {
	if flag != nil {
		return *flag, nil
	}
	if deps.IsTTY() && deps.Prompter != nil {
		var suggestions []string
		if lastUsed != "" && lastUsed != defaultValue {
			suggestions = []string{lastUsed}
		}
		return deps.Prompter.Input(title, defaultValue, suggestions)
	}
	return defaultValue, nil
}

// loadGlobalConfigSoft loads the global config, falling back to defaults
// when it cannot be read. Remembering inputs is best-effort.
func loadGlobalConfigSoft() (string, config.GlobalConfig, error) {
	path, err := config.GlobalConfigPath()
	if err != nil {
		return "", config.DefaultGlobalConfig(), err
	}
	cfg, err := config.LoadGlobalConfig(path)
	if err != nil {
		return path, config.DefaultGlobalConfig(), nil
	}
	return path, cfg, nil
}
