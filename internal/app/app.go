// Where: internal/app/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package app

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/qiita-spots/qtp-diversity/internal/config"
	"github.com/qiita-spots/qtp-diversity/internal/interaction"
	"github.com/qiita-spots/qtp-diversity/internal/plugin"
	"github.com/qiita-spots/qtp-diversity/internal/version"
)

// Dependencies holds all injected dependencies required for CLI command
// execution. This structure enables dependency injection for testing and
// allows swapping implementations of the collaborating subsystems.
type Dependencies struct {
	Out            io.Writer
	Prompter       interaction.Prompter
	IsTTY          func() bool
	GenerateConfig func(envScript, startScript string, serverCert *string) error
	NewJobClient   func(serverURL, certPath string) (plugin.JobClient, error)
	Logger         *log.Logger
	Now            func() time.Time
}

// CLI defines the command-line interface structure parsed by Kong.
type CLI struct {
	EnvFile   string       `name:"env-file" help:"Path to .env file"`
	Configure ConfigureCmd `cmd:"" help:"Create the plugin configuration file"`
	Start     StartCmd     `cmd:"" help:"Run a plugin job against a Qiita server"`
	Version   VersionCmd   `cmd:"" help:"Show version information"`
}

type VersionCmd struct{}

// Run is the main entry point for CLI command execution.
// It parses the command-line arguments, identifies the requested command,
// and dispatches to the appropriate handler. Returns 0 on success, 1 on error.
func Run(args []string, deps Dependencies) int {
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.IsTTY == nil {
		deps.IsTTY = func() bool { return false }
	}

	if err := config.EnsureGlobalConfig(); err != nil {
		return exitWithError(out, err)
	}

	// Handle no arguments: the plugin configuration is the tool's whole
	// purpose, so run configure with its interactive prompts.
	if len(args) == 0 {
		return runConfigure(CLI{}, deps, out)
	}

	cli := CLI{}
	parser, err := kong.New(&cli)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return exitWithError(out, err)
	}

	// Load environment file if provided or if .env exists in current directory
	if cli.EnvFile != "" {
		if err := godotenv.Load(cli.EnvFile); err != nil {
			fmt.Fprintf(out, "Warning: failed to load env file %s: %v\n", cli.EnvFile, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(out, "Warning: failed to load .env: %v\n", err)
		}
	}

	command := ctx.Command()
	if exitCode, handled := dispatchCommand(command, cli, deps, out); handled {
		return exitCode
	}

	fmt.Fprintln(out, "unknown command")
	return 1
}

type commandHandler func(CLI, Dependencies, io.Writer) int

func dispatchCommand(command string, cli CLI, deps Dependencies, out io.Writer) (int, bool) {
	exactHandlers := map[string]commandHandler{
		"configure": runConfigure,
		"version":   func(_ CLI, _ Dependencies, out io.Writer) int { return runVersion(out) },
	}

	if handler, ok := exactHandlers[command]; ok {
		return handler(cli, deps, out), true
	}

	// Commands with positional arguments carry them in the command string.
	if strings.HasPrefix(command, "start") {
		return runStart(cli, deps, out), true
	}

	return 1, false
}

// runVersion prints the version information of the CLI.
func runVersion(out io.Writer) int {
	fmt.Fprintln(out, version.GetVersion())
	return 0
}
