package cmd

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abusectl/abusectl/internal/categories"
)

// categoriesCmd represents the categories command
var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"cats", "c"},
	Short:   "List the AbuseIPDB abuse categories",
	Long: `List the 23 AbuseIPDB abuse categories with their numeric IDs.

Categories can be given to --categories either by ID or by name. Names are
matched without regard to case, hyphens or surrounding whitespace, and a few
aliases such as "ddos" or "sqli" are accepted.`,
	Example: `  # Show the table
  abusectl categories

  # Check how names resolve
  abusectl categories resolve ddos "Port Scan" 22`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showCategories()
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <name-or-id>...",
	Short: "Resolve category names or IDs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		type resolution struct {
			Input string `json:"input"`
			ID    int    `json:"id,omitempty"`
			Name  string `json:"name,omitempty"`
			Found bool   `json:"found"`
		}

		var results []resolution
		missing := 0
		for _, arg := range args {
			r := resolution{Input: arg}
			if id, err := strconv.Atoi(strings.TrimSpace(arg)); err == nil {
				r.ID = id
				r.Name, r.Found = categories.ResolveID(id)
			} else {
				r.ID, r.Found = categories.ResolveName(arg)
				r.Name, _ = categories.ResolveID(r.ID)
			}
			if !r.Found {
				r.ID, r.Name = 0, ""
				missing++
			}
			results = append(results, r)
		}

		if jsonOutput {
			outputResult(results, "", missing > 0)
		} else {
			for _, r := range results {
				if r.Found {
					printer.Success("%s -> %d (%s)", r.Input, r.ID, r.Name)
				} else {
					printer.Error("%s: unknown category", r.Input)
				}
			}
		}

		if missing > 0 {
			return errReported
		}
		return nil
	},
}

func showCategories() error {
	if jsonOutput {
		outputSuccess(categories.All(), "")
		return nil
	}
	printer.Categories(categories.All())
	return nil
}

func init() {
	categoriesCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(categoriesCmd)
}
