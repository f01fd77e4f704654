// Where: internal/meta/meta.go
// What: Plugin identity constants.
// Why: Keep the registration values used across commands in one place.
package meta

const (
	// Plugin identity as registered with the Qiita server.
	PluginName        = "Diversity types"
	PluginVersion     = "2023.02"
	PluginDescription = "Diversity artifacts type plugin"
	PluginType        = "artifact definition"

	// StartScript is the executable the server invokes to run plugin jobs.
	StartScript = "start_diversity_types"

	// DefaultEnvScript activates the runtime environment before StartScript runs.
	DefaultEnvScript = "source activate qtp-diversity"

	// AppName is the CLI binary name.
	AppName = "qtp-diversity"

	// HomeDir holds the CLI's own state under the user home directory.
	HomeDir = ".qtp-diversity"

	// PluginsDirEnv overrides where plugin configuration files are written.
	PluginsDirEnv = "QIITA_PLUGINS_DIR"

	// PluginsDir is the default directory scanned by the Qiita server.
	PluginsDir = ".qiita_plugins"
)
