package cmd

import (
	"context"

	"github.com/gagliardetto/solana-go/rpc"

	"github.com/lugondev/solmint/internal/metrics"
	chain "github.com/lugondev/solmint/internal/solana"
	"github.com/lugondev/solmint/internal/toolchain"
	"github.com/lugondev/solmint/internal/ui"
	"github.com/lugondev/solmint/internal/workflow"
)

// app is the set of components one command run works with.
type app struct {
	metrics *metrics.LogMetrics
	client  *chain.Client
	store   *workflow.Store
	machine *workflow.Machine
}

// newApp wires the components from cfg. prompter may be nil for commands
// that never run the wizard.
func newApp(prompter ui.Prompter) (*app, error) {
	minLamports, err := cfg.Deposit.MinLamports()
	if err != nil {
		return nil, err
	}

	m := metrics.NewLogMetrics(logger)

	client := chain.NewClient(cfg.Solana.GetRPCEndpoint(),
		chain.WithCommitment(rpc.CommitmentType(cfg.Solana.Commitment)),
		chain.WithTimeout(cfg.Solana.RequestTimeout()),
		chain.WithMetrics(m),
	)
	client.SetLogger(logger)

	store := workflow.NewStore(cfg.State.Path)
	store.SetLogger(logger)

	a := &app{metrics: m, client: client, store: store}
	if prompter == nil {
		return a, nil
	}

	runner := toolchain.NewRunner(m)
	runner.SetLogger(logger)

	keygenOpts := []toolchain.KeygenOption{toolchain.WithKeygenBinary(cfg.Tools.Keygen)}
	var tokenOpts []toolchain.TokenCLIOption
	if cfg.Tools.KeypairPath != "" {
		keygenOpts = append(keygenOpts, toolchain.WithOutfile(cfg.Tools.KeypairPath))
		tokenOpts = append(tokenOpts, toolchain.WithKeypair(cfg.Tools.KeypairPath))
	}
	keygen := toolchain.NewKeygen(runner, keygenOpts...)

	watcher := workflow.NewWatcher(client,
		workflow.WithPollInterval(cfg.Deposit.PollInterval),
		workflow.WithDepositTimeout(cfg.Deposit.Timeout),
		workflow.WithWatcherMetrics(m),
	)
	watcher.SetLogger(logger)

	attacher := chain.NewMetadataAttacher(client)
	attacher.SetLogger(logger)

	a.machine = workflow.NewMachine(workflow.MachineConfig{
		Prompter:    prompter,
		Store:       store,
		Watcher:     watcher,
		Keygen:      keygen,
		Tokens:      toolchain.NewTokenCLI(runner, cfg.Tools.SPLToken, tokenOpts...),
		Metadata:    attacher,
		MinLamports: minLamports,
		MintAmount:  cfg.Token.MintAmount,
		KeypairPath: cfg.Tools.KeypairPath,
	})
	a.machine.SetLogger(logger)
	return a, nil
}

func (a *app) close(ctx context.Context) {
	_ = a.metrics.Flush(ctx)
	if err := a.client.Close(); err != nil {
		logger.Warn("failed to close RPC client", "error", err)
	}
}
