package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/abusectl/abusectl/internal/cli"
	"github.com/abusectl/abusectl/internal/config"
)

// cliCmd represents the cli command
var cliCmd = &cobra.Command{
	Use:     "cli",
	Aliases: []string{"interactive", "i"},
	Short:   "Start interactive menu mode",
	Long: `Start the interactive menu for submitting abuse reports.

The menu walks through each field, re-prompting until the value is valid, shows
a summary and asks for confirmation before anything is sent. It also lists the
categories, runs dry-run validations and bulk reports, saves the API key to a
.env file and shows statistics for the session.`,
	Example: `  # Start the menu
  abusectl cli

  # Same as running without arguments
  abusectl`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd.Context(), loadConfig())
	},
}

func runInteractive(ctx context.Context, cfg *config.Config) error {
	if jsonOutput {
		return fmt.Errorf("--json is not supported in interactive mode")
	}

	cliInstance, err := cli.NewCLI(cfg, cli.Options{
		Printer:   printer,
		Logger:    log.Default(),
		NewSender: senderFactory(cfg),
		Version:   buildVersion,
	})
	if err != nil {
		return fmt.Errorf("failed to create CLI: %w", err)
	}

	if err := cliInstance.Start(ctx); err != nil {
		return fmt.Errorf("CLI error: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(cliCmd)
}
