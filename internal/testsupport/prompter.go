// Package testsupport holds fakes shared by package tests.
package testsupport

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/lugondev/solmint/internal/ui"
)

// Answer is one scripted reply to a prompt.
type Answer struct {
	Value string
	Err   error
}

// Text scripts a typed or selected value.
func Text(v string) Answer { return Answer{Value: v} }

// Fail scripts a prompt that returns err.
func Fail(err error) Answer { return Answer{Err: err} }

// Prompter replays scripted answers in order and records everything the
// wizard shows. Confirm treats "y" and "yes" as true.
type Prompter struct {
	mu      sync.Mutex
	answers []Answer
	prompts []string
	output  []string
}

var _ ui.Prompter = (*Prompter)(nil)

// NewPrompter creates a Prompter with the given script.
func NewPrompter(answers ...Answer) *Prompter {
	return &Prompter{answers: answers}
}

// Push appends answers to the script.
func (p *Prompter) Push(answers ...Answer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.answers = append(p.answers, answers...)
}

// Remaining returns how many scripted answers were not consumed.
func (p *Prompter) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.answers)
}

// Prompts returns the prompt texts in the order they were asked.
func (p *Prompter) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.prompts)
}

// Output returns every message, spinner update and block printed.
func (p *Prompter) Output() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return strings.Join(p.output, "\n")
}

func (p *Prompter) next(prompt string) (Answer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, prompt)
	if len(p.answers) == 0 {
		return Answer{}, fmt.Errorf("no scripted answer for %q", prompt)
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, a.Err
}

func (p *Prompter) write(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output = append(p.output, line)
}

func (p *Prompter) Select(prompt string, options []string, def string) (string, error) {
	a, err := p.next(prompt)
	if err != nil {
		return "", err
	}
	if a.Value == "" {
		return def, nil
	}
	if !slices.Contains(options, a.Value) {
		return "", fmt.Errorf("scripted answer %q is not one of %v", a.Value, options)
	}
	return a.Value, nil
}

func (p *Prompter) Input(prompt, def string) (string, error) {
	a, err := p.next(prompt)
	if err != nil {
		return "", err
	}
	if a.Value == "" {
		return def, nil
	}
	return a.Value, nil
}

func (p *Prompter) Secret(prompt string) (string, error) {
	a, err := p.next(prompt)
	return a.Value, err
}

func (p *Prompter) Confirm(prompt string, def bool) (bool, error) {
	a, err := p.next(prompt)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(a.Value) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (p *Prompter) Pause(prompt string) error {
	_, err := p.next("pause: " + prompt)
	return err
}

func (p *Prompter) StartSpinner(text string) ui.Spinner {
	p.write("spinner: " + text)
	return &spinner{p: p}
}

func (p *Prompter) Info(format string, args ...any) {
	p.write("info: " + fmt.Sprintf(format, args...))
}

func (p *Prompter) Success(format string, args ...any) {
	p.write("success: " + fmt.Sprintf(format, args...))
}

func (p *Prompter) Warn(format string, args ...any) {
	p.write("warn: " + fmt.Sprintf(format, args...))
}

func (p *Prompter) Print(block string) {
	p.write(block)
}

func (p *Prompter) Clear() {}

type spinner struct {
	p *Prompter
}

func (s *spinner) UpdateText(text string) { s.p.write("spinner: " + text) }
func (s *spinner) Success(text string)    { s.p.write("success: " + text) }
func (s *spinner) Fail(text string)       { s.p.write("fail: " + text) }
func (s *spinner) Stop()                  {}
