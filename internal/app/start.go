// Where: internal/app/start.go
// What: The start command: run one plugin job against a Qiita server.
// Why: The server invokes the start script with a URL, job ID, and output directory.
package app

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/qiita-spots/qtp-diversity/internal/config"
	"github.com/qiita-spots/qtp-diversity/internal/meta"
	"github.com/qiita-spots/qtp-diversity/internal/plugin"
	"github.com/qiita-spots/qtp-diversity/internal/qiita"
)

// StartCmd holds the start command arguments, matching the invocation the
// Qiita server performs: <url> <job-id> <output-dir>.
type StartCmd struct {
	URL       string `arg:"" help:"Qiita server URL"`
	JobID     string `arg:"" name:"job-id" help:"Identifier of the job to run"`
	OutputDir string `arg:"" name:"output-dir" help:"Directory for job outputs"`
}

func runStart(cli CLI, deps Dependencies, out io.Writer) int {
	newClient := deps.NewJobClient
	if newClient == nil {
		newClient = func(serverURL, certPath string) (plugin.JobClient, error) {
			return qiita.NewClient(serverURL, certPath)
		}
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          meta.AppName,
		})
	}

	// The certificate configured at registration time also secures job traffic.
	certPath := ""
	if path, err := config.GlobalConfigPath(); err == nil {
		if cfg, err := config.LoadGlobalConfig(path); err == nil {
			certPath = cfg.ServerCert
		}
	}

	client, err := newClient(cli.Start.URL, certPath)
	if err != nil {
		return exitWithError(out, err)
	}

	if err := plugin.Execute(context.Background(), client, logger, cli.Start.JobID, cli.Start.OutputDir); err != nil {
		return exitWithError(out, err)
	}
	return 0
}
