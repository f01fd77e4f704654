// Where: internal/version/version.go
// What: Version information retrieval.
// Why: Report the plugin release together with the Git revision it was built from.
package version

import (
	"fmt"
	"runtime/debug"

	"github.com/qiita-spots/qtp-diversity/internal/meta"
)

// GetVersion returns the plugin release, annotated with the VCS revision when
// build info is available ("2023.02 (a1b2c3d)"). A modified tree is marked dirty.
func GetVersion() string {
	release := meta.PluginVersion

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return release
	}

	var revision string
	var modified bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
			if len(revision) > 7 {
				revision = revision[:7]
			}
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}

	if revision == "" {
		return release
	}
	if modified {
		return fmt.Sprintf("%s (%s, dirty)", release, revision)
	}
	return fmt.Sprintf("%s (%s)", release, revision)
}
