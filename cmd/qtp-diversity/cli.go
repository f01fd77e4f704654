// Where: cmd/qtp-diversity/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/qiita-spots/qtp-diversity/internal/app"
	"github.com/qiita-spots/qtp-diversity/internal/interaction"
	"github.com/qiita-spots/qtp-diversity/internal/meta"
	"github.com/qiita-spots/qtp-diversity/internal/plugin"
	"github.com/qiita-spots/qtp-diversity/internal/qiita"
)

// buildDependencies constructs the runtime dependencies required by the CLI.
func buildDependencies() app.Dependencies {
	return app.Dependencies{
		Out:            os.Stdout,
		Prompter:       interaction.HuhPrompter{},
		IsTTY:          func() bool { return interaction.IsTerminal(os.Stdin) },
		GenerateConfig: plugin.GenerateConfig,
		NewJobClient: func(serverURL, certPath string) (plugin.JobClient, error) {
			return qiita.NewClient(serverURL, certPath)
		},
		Logger: log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          meta.AppName,
		}),
		Now: time.Now,
	}
}
