package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/abusectl/abusectl/internal/categories"
	"github.com/abusectl/abusectl/internal/input"
	"github.com/abusectl/abusectl/internal/report"
)

var (
	// Flags for the bulk command
	bulkFile       string
	bulkCategories string
	bulkComment    string
	bulkConfidence int
	bulkDryRun     bool
	bulkYes        bool
)

// bulkCmd represents the bulk command
var bulkCmd = &cobra.Command{
	Use:     "bulk",
	Aliases: []string{"b"},
	Short:   "Report a list of IP addresses",
	Long: `Report up to 100 IP addresses with the same categories, comment and confidence.

Addresses are read from --file, or from stdin when no file is given. They may
be separated by newlines, commas, semicolons or whitespace, and '#' starts a
comment. Duplicates are dropped and invalid tokens are reported.

Every report is validated before the first one is sent. Reports are then sent
one at a time in input order; a failed report does not stop the run.`,
	Example: `  # From a file, asking for confirmation
  abusectl bulk --file ips.txt --categories port-scan --comment "Port scan"

  # From a pipe (confirmation must be given with --yes)
  grep Failed auth.log | awk '{print $11}' | abusectl bulk --categories 18,22 --comment "SSH brute force" --yes

  # Validate only
  abusectl bulk --file ips.txt --categories ssh --comment "SSH brute force" --dry-run`,
	Args: cobra.NoArgs,
	RunE: runBulk,
}

func runBulk(cmd *cobra.Command, args []string) error {
	list, err := input.ReadFileOrStdin(bulkFile)
	if err != nil {
		return err
	}
	if len(list.Invalid) > 0 {
		printer.Warning("Skipping %d invalid entries: %s", len(list.Invalid), strings.Join(list.Invalid, ", "))
	}
	if list.Duplicates > 0 {
		printer.Info("Dropped %d duplicate addresses", list.Duplicates)
	}

	cfg := loadConfig()
	submitter := newSubmitter(cfg)
	inputs := report.InputsForIPs(list.IPs, categories.SplitList(bulkCategories), bulkComment, bulkConfidence)

	if !bulkDryRun && !bulkYes {
		fromStdin := bulkFile == "" || bulkFile == "-"
		if fromStdin || jsonOutput {
			return errors.New("use --yes to submit without confirmation when reading from stdin or with --json")
		}

		// validate before asking so nothing is confirmed that cannot be sent
		if _, err := submitter.ValidateBulk(inputs); err != nil {
			outputResult(nil, err.Error(), true)
			return errReported
		}

		ok, err := confirmBulk(len(inputs))
		if err != nil {
			return err
		}
		if !ok {
			printer.Warning("Bulk report cancelled")
			return nil
		}
	}

	total := len(inputs)
	result, err := submitter.SubmitBulk(cmd.Context(), inputs, bulkDryRun, func(item report.BulkItem) {
		if !jsonOutput {
			printer.BulkItem(item, total)
		}
	})
	if err != nil {
		outputResult(nil, err.Error(), true)
		return errReported
	}

	if jsonOutput {
		outputResult(result, fmt.Sprintf("%d succeeded, %d failed", result.Succeeded, result.Failed), result.Failed > 0)
	} else {
		printer.BulkSummary(result)
	}

	if result.Failed > 0 {
		return errReported
	}
	return nil
}

func confirmBulk(n int) (bool, error) {
	rl, err := readline.New(printer.Prompt(fmt.Sprintf("Submit all %d reports? (yes/no)", n)))
	if err != nil {
		return false, fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()
	return readConfirmation(rl)
}

// readConfirmation reads one yes/no answer. Ctrl+C and EOF count as no.
func readConfirmation(r interface{ Readline() (string, error) }) (bool, error) {
	answer, err := r.Readline()
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y", nil
}

func init() {
	bulkCmd.Flags().StringVarP(&bulkFile, "file", "f", "", "file with IP addresses (default: stdin)")
	bulkCmd.Flags().StringVar(&bulkCategories, "categories", "", "comma-separated category names or IDs")
	bulkCmd.Flags().StringVar(&bulkComment, "comment", "", "description of the abuse (max 1000 characters)")
	bulkCmd.Flags().IntVar(&bulkConfidence, "confidence", 100, "confidence score 0-100")
	bulkCmd.Flags().BoolVar(&bulkDryRun, "dry-run", false, "validate the reports without submitting them")
	bulkCmd.Flags().BoolVarP(&bulkYes, "yes", "y", false, "submit without asking for confirmation")
	bulkCmd.MarkFlagRequired("categories")
	bulkCmd.MarkFlagRequired("comment")

	rootCmd.AddCommand(bulkCmd)
}
