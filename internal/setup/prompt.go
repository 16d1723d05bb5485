package setup

import "github.com/pterm/pterm"

// Prompter asks the operator for wizard answers.
type Prompter interface {
	Ask(label, defaultValue string) (string, error)
	AskSecret(label string) (string, error)
	Confirm(label string, defaultValue bool) (bool, error)
}

// TerminalPrompter reads answers from an interactive terminal.
type TerminalPrompter struct{}

func (TerminalPrompter) Ask(label, defaultValue string) (string, error) {
	return pterm.DefaultInteractiveTextInput.WithDefaultValue(defaultValue).Show(label)
}

func (TerminalPrompter) AskSecret(label string) (string, error) {
	return pterm.DefaultInteractiveTextInput.WithMask("*").Show(label)
}

func (TerminalPrompter) Confirm(label string, defaultValue bool) (bool, error) {
	return pterm.DefaultInteractiveConfirm.WithDefaultValue(defaultValue).Show(label)
}
