// Where: internal/app/mock_prompter_test.go
// What: Test helper prompter for interaction-dependent command tests.
// Why: Provide deterministic input behavior without a TTY.
package app

type mockPrompter struct {
	inputFn func(title, defaultValue string, suggestions []string) (string, error)

	// Recorded prompt titles and suggestion sets, in order.
	titles      []string
	suggestions [][]string
}

func (m *mockPrompter) Input(title, defaultValue string, suggestions []string) (string, error) {
	m.titles = append(m.titles, title)
	m.suggestions = append(m.suggestions, suggestions)
	if m.inputFn != nil {
		return m.inputFn(title, defaultValue, suggestions)
	}
	// Default behavior: accept the offered default, as an operator
	// pressing Enter would.
	return defaultValue, nil
}
