package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/chzyer/readline"

	"github.com/abusectl/abusectl/internal/api"
	"github.com/abusectl/abusectl/internal/categories"
	"github.com/abusectl/abusectl/internal/config"
	"github.com/abusectl/abusectl/internal/metrics"
	"github.com/abusectl/abusectl/internal/report"
	"github.com/abusectl/abusectl/internal/ui"
	"github.com/abusectl/abusectl/internal/validate"
)

// errAbort is returned by prompts when the user hits Ctrl-C or Ctrl-D
var errAbort = errors.New("input aborted")

// lineReader is the part of *readline.Instance the menu needs
type lineReader interface {
	Readline() (string, error)
	ReadPassword(prompt string) ([]byte, error)
	SetPrompt(prompt string)
	Close() error
}

// Options configures the interactive CLI
type Options struct {
	Printer *ui.Printer
	Logger  *log.Logger
	// NewSender overrides the report client, mainly for tests
	NewSender report.SenderFactory
	Version   string
}

// CLI represents the interactive menu
type CLI struct {
	config    *config.Config
	printer   *ui.Printer
	logger    *log.Logger
	newSender report.SenderFactory
	submitter *report.Submitter
	rl        lineReader
	version   string
}

var menu = []ui.MenuItem{
	{Key: "1", Title: "Submit Abuse Report", Description: "Report a single malicious IP address"},
	{Key: "2", Title: "View Categories", Description: "Browse all 23 abuse categories"},
	{Key: "3", Title: "Test Report (Dry-Run)", Description: "Validate report without submitting"},
	{Key: "4", Title: "Bulk Report", Description: "Submit multiple reports at once"},
	{Key: "5", Title: "Save API Key", Description: "Store ABUSEIPDB_API_KEY in a .env file"},
	{Key: "6", Title: "Session Statistics", Description: "Reports sent since startup"},
	{Key: "0", Title: "Exit", Description: "Quit the application"},
}

// NewCLI creates a new interactive CLI reading from the terminal
func NewCLI(cfg *config.Config, opts Options) (*CLI, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "❯ ",
		HistoryFile:       filepath.Join(os.TempDir(), "abusectl_history"),
		AutoComplete:      createCompleter(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return newCLI(cfg, opts, rl), nil
}

func newCLI(cfg *config.Config, opts Options, rl lineReader) *CLI {
	c := &CLI{
		config:    cfg,
		printer:   opts.Printer,
		logger:    opts.Logger,
		newSender: opts.NewSender,
		rl:        rl,
		version:   opts.Version,
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	if c.newSender == nil {
		clientOpts := append(cfg.ClientOptions(), api.WithLogger(c.logger))
		c.newSender = func(apiKey string) report.Sender {
			return api.NewClient(apiKey, clientOpts...)
		}
	}
	c.rebuildSubmitter()
	return c
}

// rebuildSubmitter picks up the current API key
func (c *CLI) rebuildSubmitter() {
	c.submitter = report.NewSubmitter(report.Options{
		APIKey:    c.config.APIKey,
		NewSender: c.newSender,
		Limiter:   c.config.Limiter(),
		Logger:    c.logger,
	})
}

// Start runs the menu until the user exits or input ends
func (c *CLI) Start(ctx context.Context) error {
	defer c.rl.Close()

	c.printer.Banner(c.version)
	if c.config.APIKey == "" {
		c.printer.Warning(validate.ReasonMissingKey)
		c.printer.Info("Set it with: export %s='your_key_here' or choose option 5", config.APIKeyVar)
	}

	for {
		c.printer.Menu(menu)
		choice, err := c.ask("Select an option")
		if errors.Is(err, errAbort) {
			c.printer.Goodbye()
			return nil
		}
		if err != nil {
			return err
		}

		if done := c.dispatch(ctx, choice); done {
			c.printer.Goodbye()
			return nil
		}
	}
}

// dispatch runs one menu entry and reports whether the menu should exit
func (c *CLI) dispatch(ctx context.Context, choice string) bool {
	var err error
	switch strings.ToLower(choice) {
	case "1", "submit":
		err = c.submitReport(ctx, false)
	case "2", "categories":
		c.printer.Categories(categories.All())
	case "3", "dry-run":
		err = c.submitReport(ctx, true)
	case "4", "bulk":
		err = c.bulkReport(ctx)
	case "5", "key":
		err = c.saveKey()
	case "6", "stats":
		err = c.showStats()
	case "0", "exit", "quit", "q":
		return true
	default:
		c.printer.Error("Invalid option. Please try again.")
		return false
	}

	if errors.Is(err, errAbort) {
		c.printer.Warning("Cancelled")
	} else if err != nil {
		c.printer.Error("%v", err)
	}
	return false
}

func (c *CLI) ask(label string) (string, error) {
	c.rl.SetPrompt(c.printer.Prompt(label))
	line, err := c.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", errAbort
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirm accepts "yes" or "y" in any case
func (c *CLI) confirm(label string) (bool, error) {
	answer, err := c.ask(label + " (yes/no)")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "yes" || answer == "y", nil
}

func (c *CLI) askIP() (string, error) {
	for {
		ip, err := c.ask("Enter the IP address to report")
		if err != nil {
			return "", err
		}
		if ip == "" {
			c.printer.Error(validate.ReasonIPRequired)
			continue
		}
		if err := validate.CheckIP(ip); err != nil {
			c.printer.Error("%v", err)
			continue
		}
		c.printer.Success("IP address valid: %s", ip)
		return ip, nil
	}
}

// askCategories accepts IDs such as "18,22" or names such as "ssh,brute-force"
// and returns canonical names
func (c *CLI) askCategories() ([]string, error) {
	c.printer.Categories(categories.All())
	for {
		line, err := c.ask("Enter category IDs or names separated by commas (e.g., 18,22)")
		if err != nil {
			return nil, err
		}
		names, err := resolveCategories(line)
		if err != nil {
			c.printer.Error("%v", err)
			continue
		}
		c.printer.Success("Categories valid: %s", strings.Join(names, ", "))
		return names, nil
	}
}

func resolveCategories(line string) ([]string, error) {
	if strings.TrimSpace(line) == "" {
		return nil, validate.ErrCategoriesMissing
	}

	ids, unknown, err := categories.ParseIDs(line)
	if err == nil {
		if len(unknown) > 0 {
			parts := make([]string, len(unknown))
			for i, id := range unknown {
				parts[i] = strconv.Itoa(id)
			}
			return nil, &validate.Error{Field: "categories", Reason: validate.ReasonInvalidCategories, Value: strings.Join(parts, ", ")}
		}
		return categories.Names(ids), nil
	}

	_, ids, unresolved := categories.ValidateBatch(categories.SplitNames(line))
	if err := validate.Categories(unresolved, len(ids)); err != nil {
		return nil, err
	}
	return categories.Names(ids), nil
}

func (c *CLI) askComment() (string, error) {
	for {
		comment, err := c.ask("Enter a comment describing the abuse")
		if err != nil {
			return "", err
		}
		if err := validate.Comment(comment); err != nil {
			c.printer.Error("%v", err)
			continue
		}
		c.printer.Success("Comment received (%d characters)", len([]rune(comment)))
		return comment, nil
	}
}

func (c *CLI) askConfidence() (int, error) {
	for {
		line, err := c.ask("Enter confidence score 0-100 (press Enter for 100)")
		if err != nil {
			return 0, err
		}
		if line == "" {
			line = strconv.Itoa(validate.MaxConfidence)
		}
		confidence, err := validate.ParseConfidence(line)
		if err != nil {
			c.printer.Error("%v", err)
			continue
		}
		c.printer.Success("Confidence set to %d%%", confidence)
		return confidence, nil
	}
}

func (c *CLI) collect() (report.Input, error) {
	ip, err := c.askIP()
	if err != nil {
		return report.Input{}, err
	}
	names, err := c.askCategories()
	if err != nil {
		return report.Input{}, err
	}
	comment, err := c.askComment()
	if err != nil {
		return report.Input{}, err
	}
	confidence, err := c.askConfidence()
	if err != nil {
		return report.Input{}, err
	}
	return report.Input{IP: ip, Categories: names, Comment: comment, Confidence: confidence}, nil
}

func (c *CLI) submitReport(ctx context.Context, dryRun bool) error {
	c.printer.Section("SUBMIT ABUSE REPORT")

	in, err := c.collect()
	if err != nil {
		return err
	}
	req, err := c.submitter.Validate(in)
	if err != nil {
		return err
	}
	c.printer.ReportSummary(req, true)

	if dryRun {
		if _, err := c.submitter.Submit(ctx, in, true); err != nil {
			return err
		}
		c.printer.Box("DRY-RUN MODE", "Validation completed successfully (no report submitted)")
		return nil
	}

	ok, err := c.confirm("Submit report?")
	if err != nil {
		return err
	}
	if !ok {
		c.printer.Warning("Report cancelled")
		return nil
	}

	c.printer.Info("Sending request to AbuseIPDB...")
	result, err := c.submitter.Submit(ctx, in, false)
	if errors.Is(err, report.ErrCredential) {
		c.printer.Info("Set it with: export %s='your_key_here' or choose option 5", config.APIKeyVar)
	}
	if err != nil {
		return err
	}
	c.printer.Outcome(result.Outcome)
	return nil
}

func (c *CLI) askBatchSize() (int, error) {
	for {
		line, err := c.ask("How many reports would you like to submit? (1-100)")
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			c.printer.Error("Invalid number. Please try again.")
			continue
		}
		if err := validate.BatchSize(n); err != nil {
			c.printer.Error("%v", err)
			continue
		}
		return n, nil
	}
}

func (c *CLI) bulkReport(ctx context.Context) error {
	c.printer.Section("BULK ABUSE REPORT")

	n, err := c.askBatchSize()
	if err != nil {
		return err
	}

	inputs := make([]report.Input, 0, n)
	for i := 0; i < n; i++ {
		c.printer.Info("Report %d/%d", i+1, n)
		in, err := c.collect()
		if err != nil {
			return err
		}
		inputs = append(inputs, in)
	}

	c.printer.Section("BULK REPORT SUMMARY")
	for i, in := range inputs {
		req, err := c.submitter.Validate(in)
		if err != nil {
			return fmt.Errorf("report %d: %w", i+1, err)
		}
		c.printer.Info("Report %d:", i+1)
		c.printer.ReportSummary(req, false)
	}

	ok, err := c.confirm(fmt.Sprintf("Submit all %d reports?", n))
	if err != nil {
		return err
	}
	if !ok {
		c.printer.Warning("Bulk report cancelled")
		return nil
	}

	result, err := c.submitter.SubmitBulk(ctx, inputs, false, func(item report.BulkItem) {
		c.printer.BulkItem(item, n)
	})
	if err != nil {
		return err
	}
	c.printer.BulkSummary(result)
	return nil
}

func (c *CLI) saveKey() error {
	c.printer.Section("SAVE API KEY")

	path := c.config.EnvFile
	if path == "" {
		path = config.DefaultEnvPath()
	}
	c.printer.Info("The key will be written to %s", path)

	secret, err := c.rl.ReadPassword("API key: ")
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return errAbort
	}
	if err != nil {
		return err
	}

	key := strings.TrimSpace(string(secret))
	if err := validate.APIKey(key); err != nil {
		c.printer.Warning("%v", err)
	}
	if err := config.SaveAPIKey(path, key); err != nil {
		if errors.Is(err, config.ErrPermissionDenied) {
			return fmt.Errorf("cannot write %s: permission denied", path)
		}
		return err
	}

	c.config.APIKey = key
	c.config.EnvFile = path
	c.rebuildSubmitter()
	c.printer.Success("API key saved to %s", path)
	return nil
}

func (c *CLI) showStats() error {
	stats, err := metrics.Snapshot()
	if err != nil {
		return err
	}
	c.printer.SessionStats(stats)
	return nil
}

// createCompleter completes the word forms of the menu entries
func createCompleter() readline.AutoCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("submit"),
		readline.PcItem("categories"),
		readline.PcItem("dry-run"),
		readline.PcItem("bulk"),
		readline.PcItem("key"),
		readline.PcItem("stats"),
		readline.PcItem("exit"),
	)
}
