package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lugondev/solmint/internal/common"
	"github.com/lugondev/solmint/internal/config"
	werrors "github.com/lugondev/solmint/internal/errors"
	"github.com/lugondev/solmint/internal/shell"
	"github.com/lugondev/solmint/internal/ui"
)

var (
	cfgFile string

	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "solmint",
	Short: "solmint - a Solana wallet and token wizard",
	Long: `solmint is an interactive terminal wizard for the Solana blockchain.

Run without a subcommand to open the menu, which can:
- Show a wallet's SOL balance and recent transactions
- Create or pick a wallet, wait for a deposit, then create and mint a token
  with on-chain metadata

Progress through the token wizard is saved, so an interrupted run resumes
where it stopped.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runShell,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	closeLog()
	if err != nil {
		if werrors.Is(err, werrors.ErrCanceled) {
			pterm.Warning.Println("Canceled.")
		} else {
			pterm.Error.Println(err)
		}
	}
	return err
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./.solmint.yaml or $HOME/.solmint.yaml)")
	flags.String("rpc", "", "Solana RPC endpoint (overrides --network)")
	flags.String("network", "mainnet", "Solana network (mainnet, devnet, testnet, localnet)")
	flags.String("state-file", "state.json", "wizard state file")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "write logs to this file instead of stderr")
	flags.Duration("deposit-timeout", 0, "give up waiting for a deposit after this long (0 waits until interrupted)")

	bindings := map[string]string{
		"solana.rpc":      "rpc",
		"solana.network":  "network",
		"state.path":      "state-file",
		"log.level":       "log-level",
		"log.file":        "log-file",
		"deposit.timeout": "deposit-timeout",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding flag: %v\n", err)
		}
	}
}

// setup loads configuration and installs the run logger before any command.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	base, closer, err := common.NewLogger(loaded.Log.Options())
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	closeLog()
	cfg = loaded
	logCloser = closer
	logger = base.With("run_id", uuid.New().String())
	slog.SetDefault(logger)

	if used := viper.ConfigFileUsed(); used != "" {
		logger.Info("using config file", "path", used)
	}
	logger.Debug("configuration loaded",
		"rpc", cfg.Solana.GetRPCEndpoint(),
		"state_file", cfg.State.Path,
		"min_sol", cfg.Deposit.MinSOL,
	)
	return nil
}

// closeLog releases the log file. It runs whether or not the command failed.
func closeLog() {
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}

func runShell(cmd *cobra.Command, args []string) error {
	if fd := os.Stdin.Fd(); !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return fmt.Errorf("the wizard needs an interactive terminal; try 'solmint balance' or 'solmint state show'")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	term := ui.NewTerminal()
	a, err := newApp(term)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	state, err := a.store.Load()
	if err != nil {
		return err
	}
	logger.Info("wizard state loaded", "path", a.store.Path(), "step", state.Step)

	sh := shell.New(term, a.client, a.machine, state, 0)
	sh.SetLogger(logger)
	return sh.Run(ctx)
}
