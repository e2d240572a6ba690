package ui

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"

	werrors "github.com/lugondev/solmint/internal/errors"
)

// Terminal is the pterm-backed Prompter.
type Terminal struct{}

// NewTerminal creates a Terminal.
func NewTerminal() *Terminal {
	return &Terminal{}
}

// interrupt replaces pterm's default Ctrl+C handler, which exits the
// process, with a flag the caller turns into an error.
type interrupt struct {
	hit bool
}

func (i *interrupt) handler() func() {
	return func() { i.hit = true }
}

func (i *interrupt) err(what string) error {
	if i.hit {
		return werrors.Canceled(what, context.Canceled)
	}
	return nil
}

func (t *Terminal) Select(prompt string, options []string, def string) (string, error) {
	var intr interrupt
	p := pterm.DefaultInteractiveSelect.
		WithOptions(options).
		WithMaxHeight(len(options) + 1).
		WithFilter(false).
		WithOnInterruptFunc(intr.handler())
	if def != "" {
		p = p.WithDefaultOption(def)
	}

	choice, err := p.Show(prompt)
	if cerr := intr.err("selection"); cerr != nil {
		return "", cerr
	}
	if err != nil {
		return "", fmt.Errorf("selection failed: %w", err)
	}
	return choice, nil
}

func (t *Terminal) Input(prompt, def string) (string, error) {
	var intr interrupt
	p := pterm.DefaultInteractiveTextInput.WithOnInterruptFunc(intr.handler())
	if def != "" {
		p = p.WithDefaultValue(def)
	}

	value, err := p.Show(prompt)
	if cerr := intr.err("input"); cerr != nil {
		return "", cerr
	}
	if err != nil {
		return "", fmt.Errorf("input failed: %w", err)
	}
	return value, nil
}

func (t *Terminal) Secret(prompt string) (string, error) {
	var intr interrupt
	value, err := pterm.DefaultInteractiveTextInput.
		WithMask("*").
		WithOnInterruptFunc(intr.handler()).
		Show(prompt)
	if cerr := intr.err("input"); cerr != nil {
		return "", cerr
	}
	if err != nil {
		return "", fmt.Errorf("input failed: %w", err)
	}
	return value, nil
}

func (t *Terminal) Confirm(prompt string, def bool) (bool, error) {
	var intr interrupt
	ok, err := pterm.DefaultInteractiveConfirm.
		WithDefaultValue(def).
		WithOnInterruptFunc(intr.handler()).
		Show(prompt)
	if cerr := intr.err("confirmation"); cerr != nil {
		return false, cerr
	}
	if err != nil {
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	return ok, nil
}

func (t *Terminal) Pause(prompt string) error {
	if prompt == "" {
		prompt = "Press Enter to continue"
	}
	_, err := t.Input(prompt, "")
	return err
}

func (t *Terminal) StartSpinner(text string) Spinner {
	s, err := pterm.DefaultSpinner.WithText(text).Start()
	if err != nil {
		// Non-interactive output; fall back to plain lines.
		pterm.Info.Println(text)
		return lineSpinner{}
	}
	return &spinner{s: s}
}

func (t *Terminal) Info(format string, args ...any) {
	pterm.Info.Printfln(format, args...)
}

func (t *Terminal) Success(format string, args ...any) {
	pterm.Success.Printfln(format, args...)
}

func (t *Terminal) Warn(format string, args ...any) {
	pterm.Warning.Printfln(format, args...)
}

func (t *Terminal) Print(block string) {
	pterm.Println(block)
}

func (t *Terminal) Clear() {
	fmt.Print("\033[H\033[2J")
}

type spinner struct {
	s *pterm.SpinnerPrinter
}

func (s *spinner) UpdateText(text string) { s.s.UpdateText(text) }
func (s *spinner) Success(text string)    { s.s.Success(text) }
func (s *spinner) Fail(text string)       { s.s.Fail(text) }
func (s *spinner) Stop()                  { _ = s.s.Stop() }

type lineSpinner struct{}

func (lineSpinner) UpdateText(string)   {}
func (lineSpinner) Success(text string) { pterm.Success.Println(text) }
func (lineSpinner) Fail(text string)    { pterm.Error.Println(text) }
func (lineSpinner) Stop()               {}
