package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lugondev/solmint/internal/common"
	werrors "github.com/lugondev/solmint/internal/errors"
	chain "github.com/lugondev/solmint/internal/solana"
	"github.com/lugondev/solmint/internal/ui"
)

var balanceLimit int

var balanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Check wallet balance and recent transactions",
	Long: `Print the SOL balance of a wallet address followed by its most recent
transactions and the net SOL change each one caused.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pubkey, err := chain.ParsePublicKey(args[0])
		if err != nil {
			return werrors.InvalidInput("address", err)
		}
		if balanceLimit <= 0 {
			return werrors.InvalidInput("limit", fmt.Errorf("must be positive, got %d", balanceLimit))
		}

		a, err := newApp(nil)
		if err != nil {
			return err
		}
		defer a.close(cmd.Context())

		lamports, err := a.client.GetBalance(cmd.Context(), pubkey)
		if err != nil {
			return err
		}
		records, err := a.client.RecentTransactions(cmd.Context(), pubkey, balanceLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Address: %s\n", pubkey)
		fmt.Fprintf(out, "Balance: %s SOL\n\n", common.LamportsToSOL(lamports))
		fmt.Fprintln(out, ui.TransactionTable(records))
		return nil
	},
}

func init() {
	balanceCmd.Flags().IntVar(&balanceLimit, "limit", chain.DefaultSignatureLimit, "number of recent transactions to show")
	rootCmd.AddCommand(balanceCmd)
}
