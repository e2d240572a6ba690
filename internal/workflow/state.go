// Package workflow holds the token wizard's persisted state machine, the
// deposit watcher and the Machine that drives one pass of the wizard.
package workflow

import (
	"fmt"

	werrors "github.com/lugondev/solmint/internal/errors"
)

// Step is a position in the wizard.
type Step string

const (
	StepStart        Step = "start"
	StepAwaitDeposit Step = "await_deposit"
	StepCreateToken  Step = "create_token"
	StepDone         Step = "done"
)

// Valid reports whether s is a known step.
func (s Step) Valid() bool {
	switch s {
	case StepStart, StepAwaitDeposit, StepCreateToken, StepDone:
		return true
	}
	return false
}

// State is the wizard progress persisted between runs. Optional fields are
// written as null until set and are never cleared once set.
type State struct {
	Step           Step    `json:"step" yaml:"step"`
	Pubkey         *string `json:"pubkey" yaml:"pubkey"`
	TokenName      *string `json:"token_name" yaml:"token_name"`
	TokenSymbol    *string `json:"token_symbol" yaml:"token_symbol"`
	TokenAddress   *string `json:"token_address" yaml:"token_address"`
	AccountAddress *string `json:"account_address" yaml:"account_address"`
}

// TokenResult is what the create_token step produces.
type TokenResult struct {
	Name           string
	Symbol         string
	TokenAddress   string
	AccountAddress string
}

// NewState returns a state at the start step.
func NewState() *State {
	return &State{Step: StepStart}
}

// Check validates the field requirements of the current step.
func (s *State) Check() error {
	if !s.Step.Valid() {
		return fmt.Errorf("unknown step %q", s.Step)
	}

	switch s.Step {
	case StepAwaitDeposit, StepCreateToken:
		if isEmpty(s.Pubkey) {
			return fmt.Errorf("step %q requires pubkey", s.Step)
		}
	case StepDone:
		required := []struct {
			name  string
			value *string
		}{
			{"pubkey", s.Pubkey},
			{"token_name", s.TokenName},
			{"token_symbol", s.TokenSymbol},
			{"token_address", s.TokenAddress},
			{"account_address", s.AccountAddress},
		}
		for _, f := range required {
			if isEmpty(f.value) {
				return fmt.Errorf("step %q requires %s", s.Step, f.name)
			}
		}
	}
	return nil
}

// PubkeyString returns the wallet address or "".
func (s *State) PubkeyString() string {
	if s.Pubkey == nil {
		return ""
	}
	return *s.Pubkey
}

// ChooseWallet records the wallet and moves start to await_deposit.
func (s *State) ChooseWallet(pubkey string) error {
	if s.Step != StepStart {
		return werrors.InvalidTransition(string(s.Step), "choose wallet")
	}
	if pubkey == "" {
		return werrors.InvalidInput("wallet address", fmt.Errorf("empty"))
	}
	s.Pubkey = &pubkey
	s.Step = StepAwaitDeposit
	return nil
}

// MarkFunded moves await_deposit to create_token.
func (s *State) MarkFunded() error {
	if s.Step != StepAwaitDeposit {
		return werrors.InvalidTransition(string(s.Step), "mark funded")
	}
	s.Step = StepCreateToken
	return nil
}

// CompleteToken records the created token and moves create_token to done.
func (s *State) CompleteToken(r TokenResult) error {
	if s.Step != StepCreateToken {
		return werrors.InvalidTransition(string(s.Step), "complete token")
	}
	if r.Name == "" || r.Symbol == "" || r.TokenAddress == "" || r.AccountAddress == "" {
		return werrors.InvalidInput("token result", fmt.Errorf("all fields are required"))
	}
	s.TokenName = &r.Name
	s.TokenSymbol = &r.Symbol
	s.TokenAddress = &r.TokenAddress
	s.AccountAddress = &r.AccountAddress
	s.Step = StepDone
	return nil
}

func isEmpty(v *string) bool {
	return v == nil || *v == ""
}
