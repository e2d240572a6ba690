// Package shell is the wizard's top-level menu loop.
package shell

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/solmint/internal/common"
	werrors "github.com/lugondev/solmint/internal/errors"
	chain "github.com/lugondev/solmint/internal/solana"
	"github.com/lugondev/solmint/internal/ui"
	"github.com/lugondev/solmint/internal/workflow"
)

// Menu entries.
const (
	ActionBalance     = "Check wallet balance and transactions"
	ActionCreateToken = "Create token"
	ActionExit        = "Exit"
)

// Ledger is what the balance action reads.
type Ledger interface {
	GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error)
	RecentTransactions(ctx context.Context, pubkey solana.PublicKey, limit int) ([]chain.TransactionRecord, error)
}

// Runner runs one wizard pass.
type Runner interface {
	Run(ctx context.Context, state *workflow.State) (*workflow.State, error)
}

// Shell shows the main menu until the user exits or an action fails.
type Shell struct {
	common.LoggerMixin

	prompter ui.Prompter
	ledger   Ledger
	wizard   Runner
	state    *workflow.State
	limit    int
}

// New creates a Shell starting from state. limit bounds the transaction
// history; zero uses the client default.
func New(prompter ui.Prompter, ledger Ledger, wizard Runner, state *workflow.State, limit int) *Shell {
	return &Shell{
		LoggerMixin: common.NewLoggerMixin(),
		prompter:    prompter,
		ledger:      ledger,
		wizard:      wizard,
		state:       state,
		limit:       limit,
	}
}

// State returns the wizard state as of the last pass.
func (s *Shell) State() *workflow.State {
	return s.state
}

// Run loops over the menu. It returns nil on Exit and the first error any
// action returns.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return werrors.Canceled("shell", err)
		}

		s.prompter.Clear()
		action, err := s.prompter.Select("What would you like to do?",
			[]string{ActionBalance, ActionCreateToken, ActionExit}, ActionBalance)
		if err != nil {
			return err
		}
		s.GetLogger().Debug("menu action", "action", action)

		switch action {
		case ActionBalance:
			err = s.showBalance(ctx)
		case ActionCreateToken:
			s.state, err = s.wizard.Run(ctx, s.state)
		case ActionExit:
			return nil
		default:
			err = werrors.InvalidInput("menu action", fmt.Errorf("unknown option %q", action))
		}
		if err != nil {
			return err
		}
	}
}

func (s *Shell) showBalance(ctx context.Context) error {
	p := s.prompter
	p.Clear()

	address, err := p.Input("Wallet public key", "")
	if err != nil {
		return err
	}
	pubkey, err := chain.ParsePublicKey(address)
	if err != nil {
		return werrors.InvalidInput("wallet address", err)
	}

	spin := p.StartSpinner("Fetching balance and transactions...")
	lamports, err := s.ledger.GetBalance(ctx, pubkey)
	if err != nil {
		spin.Fail("Could not fetch the balance")
		return err
	}
	records, err := s.ledger.RecentTransactions(ctx, pubkey, s.limit)
	if err != nil {
		spin.Fail("Could not fetch transactions")
		return err
	}
	spin.Stop()

	p.Info("Balance of %s: %s SOL", pubkey, common.LamportsToSOL(lamports))
	p.Print(ui.TransactionTable(records))
	return p.Pause("")
}
