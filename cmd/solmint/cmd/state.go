package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	werrors "github.com/lugondev/solmint/internal/errors"
	"github.com/lugondev/solmint/internal/ui"
	"github.com/lugondev/solmint/internal/workflow"
)

var (
	stateOutput string
	stateYes    bool
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or reset the wizard state",
	Long:  `Commands for the saved token wizard progress.`,
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved wizard state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := workflow.NewStore(cfg.State.Path).Load()
		if err != nil {
			return err
		}

		var data []byte
		switch stateOutput {
		case "json":
			data, err = json.MarshalIndent(state, "", "  ")
			data = append(data, '\n')
		case "yaml":
			data, err = yaml.Marshal(state)
		default:
			return werrors.InvalidInput("output", fmt.Errorf("unknown format %q (want json or yaml)", stateOutput))
		}
		if err != nil {
			return fmt.Errorf("failed to encode state: %w", err)
		}

		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var stateResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the saved wizard state",
	Long:  `Delete the state file so the next wizard run starts from wallet selection.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := workflow.NewStore(cfg.State.Path)
		store.SetLogger(logger)

		if !stateYes {
			ok, err := ui.NewTerminal().Confirm(fmt.Sprintf("Delete %s?", store.Path()), false)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}

		if err := store.Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", store.Path())
		return nil
	},
}

func init() {
	stateShowCmd.Flags().StringVarP(&stateOutput, "output", "o", "json", "output format (json, yaml)")
	stateResetCmd.Flags().BoolVarP(&stateYes, "yes", "y", false, "do not ask for confirmation")

	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateResetCmd)
}
