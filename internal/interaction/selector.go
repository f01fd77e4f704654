// Where: internal/interaction/selector.go
// What: Prompter implementation backed by the huh library.
// Why: Give the configure command keyboard-friendly prompts with visible defaults.
package interaction

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// HuhPrompter implements the Prompter interface using the huh TUI library.
type HuhPrompter struct{}

func (p HuhPrompter) Input(title, defaultValue string, suggestions []string) (string, error) {
	if defaultValue != "" {
		title = fmt.Sprintf("%s [%s]", title, defaultValue)
	}

	var input string
	err := huh.NewInput().
		Title(title).
		Placeholder(defaultValue).
		Suggestions(suggestions).
		Value(&input).
		Run()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) == "" {
		return defaultValue, nil
	}
	return input, nil
}
