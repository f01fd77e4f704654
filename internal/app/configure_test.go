// Where: internal/app/configure_test.go
// What: Tests for the configure command.
// Why: The sentinel normalization and argument passing are the command's whole contract.
package app

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/qiita-spots/qtp-diversity/internal/config"
	"github.com/qiita-spots/qtp-diversity/internal/meta"
)

type generatorCall struct {
	envScript   string
	startScript string
	serverCert  *string
}

type configureFixture struct {
	out   bytes.Buffer
	calls []generatorCall
	deps  Dependencies
}

func newConfigureFixture(t *testing.T) *configureFixture {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.ConfigPathEnv, filepath.Join(dir, "config.yaml"))
	t.Setenv(meta.PluginsDirEnv, filepath.Join(dir, "plugins"))

	f := &configureFixture{}
	f.deps = Dependencies{
		Out:   &f.out,
		IsTTY: func() bool { return false },
		Now:   func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
		GenerateConfig: func(envScript, startScript string, serverCert *string) error {
			f.calls = append(f.calls, generatorCall{envScript, startScript, serverCert})
			return nil
		},
	}
	return f
}

func (f *configureFixture) lastCall(t *testing.T) generatorCall {
	t.Helper()
	if len(f.calls) != 1 {
		t.Fatalf("generator called %d times, want 1", len(f.calls))
	}
	return f.calls[0]
}

func TestConfigureWithBothFlags(t *testing.T) {
	f := newConfigureFixture(t)

	code := Run([]string{
		"configure",
		"--env-script", "source activate foo",
		"--ca-cert", "/etc/certs/a.pem",
	}, f.deps)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0: %s", code, f.out.String())
	}

	call := f.lastCall(t)
	if call.envScript != "source activate foo" {
		t.Errorf("env script = %q", call.envScript)
	}
	if call.startScript != "start_diversity_types" {
		t.Errorf("start script = %q", call.startScript)
	}
	if call.serverCert == nil || *call.serverCert != "/etc/certs/a.pem" {
		t.Errorf("server cert = %v", call.serverCert)
	}
}

func TestConfigureNormalizesNoneSentinel(t *testing.T) {
	f := newConfigureFixture(t)

	code := Run([]string{
		"configure",
		"--env-script", "source activate foo",
		"--ca-cert", "None",
	}, f.deps)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	call := f.lastCall(t)
	if call.serverCert != nil {
		t.Errorf("server cert = %q, want absent", *call.serverCert)
	}
}

func TestConfigureEmptyCaCertPassesThrough(t *testing.T) {
	f := newConfigureFixture(t)

	code := Run([]string{"configure", "--ca-cert", ""}, f.deps)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	call := f.lastCall(t)
	if call.serverCert == nil || *call.serverCert != "" {
		t.Errorf("server cert = %v, want explicit empty string", call.serverCert)
	}
}

func TestConfigureNoFlagsUsesDefaults(t *testing.T) {
	f := newConfigureFixture(t)

	code := Run([]string{"configure"}, f.deps)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	call := f.lastCall(t)
	if call.envScript != "source activate qtp-diversity" {
		t.Errorf("env script = %q", call.envScript)
	}
	if call.startScript != "start_diversity_types" {
		t.Errorf("start script = %q", call.startScript)
	}
	if call.serverCert != nil {
		t.Errorf("server cert = %q, want absent", *call.serverCert)
	}
}

func TestConfigurePromptsWhenInteractive(t *testing.T) {
	f := newConfigureFixture(t)
	prompter := &mockPrompter{}
	f.deps.IsTTY = func() bool { return true }
	f.deps.Prompter = prompter

	code := Run([]string{"configure"}, f.deps)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	if len(prompter.titles) != 2 {
		t.Fatalf("prompted %d times, want 2: %v", len(prompter.titles), prompter.titles)
	}

	// Accepting both defaults matches the non-interactive defaults.
	call := f.lastCall(t)
	if call.envScript != "source activate qtp-diversity" {
		t.Errorf("env script = %q", call.envScript)
	}
	if call.serverCert != nil {
		t.Errorf("server cert = %v, want absent", call.serverCert)
	}
}

func TestConfigurePromptedNoneIsNormalized(t *testing.T) {
	f := newConfigureFixture(t)
	f.deps.IsTTY = func() bool { return true }
	f.deps.Prompter = &mockPrompter{
		inputFn: func(title, defaultValue string, _ []string) (string, error) {
			if strings.Contains(title, "certificate") || strings.Contains(title, "Certificate") {
				return "None", nil
			}
			return "source activate foo", nil
		},
	}

	code := Run([]string{"configure"}, f.deps)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	call := f.lastCall(t)
	if call.envScript != "source activate foo" {
		t.Errorf("env script = %q", call.envScript)
	}
	if call.serverCert != nil {
		t.Errorf("server cert = %v, want absent", call.serverCert)
	}
}

func TestConfigureOffersLastUsedAsSuggestion(t *testing.T) {
	f := newConfigureFixture(t)
	prompter := &mockPrompter{}
	f.deps.IsTTY = func() bool { return true }
	f.deps.Prompter = prompter

	if code := Run([]string{"configure", "--env-script", "source activate bar",
		"--ca-cert", "None"}, f.deps); code != 0 {
		t.Fatalf("seeding run failed: %s", f.out.String())
	}

	if code := Run([]string{"configure"}, f.deps); code != 0 {
		t.Fatalf("exit code != 0: %s", f.out.String())
	}
	if len(prompter.suggestions) != 2 {
		t.Fatalf("prompted %d times, want 2", len(prompter.suggestions))
	}
	envSuggestions := prompter.suggestions[0]
	if len(envSuggestions) != 1 || envSuggestions[0] != "source activate bar" {
		t.Errorf("env script suggestions = %v", envSuggestions)
	}
}

func TestConfigureGeneratorErrorPropagates(t *testing.T) {
	f := newConfigureFixture(t)
	f.deps.GenerateConfig = func(string, string, *string) error {
		return errors.New("cannot write plugin configuration")
	}

	code := Run([]string{"configure"}, f.deps)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(f.out.String(), "cannot write plugin configuration") {
		t.Errorf("error not surfaced: %q", f.out.String())
	}
}

func TestNoArgsRunsConfigureWithDefaults(t *testing.T) {
	f := newConfigureFixture(t)

	code := Run(nil, f.deps)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	call := f.lastCall(t)
	if call.envScript != "source activate qtp-diversity" {
		t.Errorf("env script = %q", call.envScript)
	}
}
