// Where: internal/plugin/execute.go
// What: Plugin job execution against a Qiita server.
// Why: The start script fetches a job, dispatches on its command, and reports back.
package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/qiita-spots/qtp-diversity/internal/diversity"
	"github.com/qiita-spots/qtp-diversity/internal/qiita"
)

// Job command names as registered with the Qiita server.
const (
	CommandValidate    = "Validate"
	CommandHTMLSummary = "Generate HTML summary"
)

// JobClient is the server surface the job runner needs. *qiita.Client
// satisfies it.
type JobClient interface {
	JobInfo(ctx context.Context, jobID string) (qiita.JobInfo, error)
	UpdateJobStep(ctx context.Context, jobID, step string) error
	CompleteJob(ctx context.Context, jobID string, success bool, artifacts, errMsg string) error
	diversity.MetadataSource
	diversity.ArtifactSource
}

// Execute runs one plugin job to completion. Data problems are reported to
// the server as a failed job and return nil; transport and I/O errors are
// reported best-effort and returned.
func Execute(ctx context.Context, client JobClient, logger *log.Logger, jobID, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	info, err := client.JobInfo(ctx, jobID)
	if err != nil {
		return err
	}
	logger.Info("running job", "job", jobID, "command", info.Command)

	artifactsJSON, runErr := runCommand(ctx, client, jobID, outDir, info)
	if runErr != nil {
		var validationErr *diversity.ValidationError
		if errors.As(runErr, &validationErr) {
			logger.Error("job failed", "job", jobID, "reason", validationErr.Reason)
			return client.CompleteJob(ctx, jobID, false, "", validationErr.Reason)
		}
		if completeErr := client.CompleteJob(ctx, jobID, false, "", runErr.Error()); completeErr != nil {
			logger.Error("could not report job failure", "job", jobID, "err", completeErr)
		}
		return runErr
	}

	logger.Info("job succeeded", "job", jobID)
	return client.CompleteJob(ctx, jobID, true, artifactsJSON, "")
}

func runCommand(ctx context.Context, client JobClient, jobID, outDir string, info qiita.JobInfo) (string, error) {
	switch info.Command {
	case CommandValidate:
		params := diversity.ParseParameters(info.Parameters)
		artifacts, err := diversity.Validate(ctx, client, jobID, params, outDir)
		if err != nil {
			return "", err
		}
		payload, err := json.Marshal(artifacts)
		if err != nil {
			return "", err
		}
		return string(payload), nil

	case CommandHTMLSummary:
		artifactID := stringParameter(info.Parameters, "input_data")
		if artifactID == "" {
			return "", &diversity.ValidationError{Reason: "Missing input_data parameter"}
		}
		htmlPath, err := diversity.GenerateHTMLSummary(ctx, client, jobID, artifactID, outDir)
		if err != nil {
			return "", err
		}
		payload, err := json.Marshal(map[string]string{"html_summary": htmlPath})
		if err != nil {
			return "", err
		}
		return string(payload), nil

	default:
		return "", &diversity.ValidationError{
			Reason: fmt.Sprintf("Unknown command %q. Supported commands: %s, %s",
				info.Command, CommandValidate, CommandHTMLSummary),
		}
	}
}

func stringParameter(params map[string]any, key string) string {
	switch value := params[key].(type) {
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
