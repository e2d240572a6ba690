// Package ui is the terminal boundary of the wizard: prompts, spinners and
// the text blocks it prints.
package ui

// Prompter asks the user for input and reports progress. Every prompt
// returns a CANCELED error when the user interrupts it.
type Prompter interface {
	// Select shows options and returns the chosen one. def preselects an
	// option when non-empty.
	Select(prompt string, options []string, def string) (string, error)
	// Input reads a line of text. def is returned when the user just
	// presses Enter.
	Input(prompt, def string) (string, error)
	// Secret reads a line without echoing it.
	Secret(prompt string) (string, error)
	Confirm(prompt string, def bool) (bool, error)
	// Pause waits for Enter.
	Pause(prompt string) error

	StartSpinner(text string) Spinner

	Info(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	// Print writes a preformatted block such as a table or QR code.
	Print(block string)
	Clear()
}

// Spinner is a running progress indicator.
type Spinner interface {
	UpdateText(text string)
	Success(text string)
	Fail(text string)
	Stop()
}
