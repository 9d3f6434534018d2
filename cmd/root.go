package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/abusectl/abusectl/internal/api"
	"github.com/abusectl/abusectl/internal/categories"
	"github.com/abusectl/abusectl/internal/config"
	"github.com/abusectl/abusectl/internal/metrics"
	"github.com/abusectl/abusectl/internal/report"
	"github.com/abusectl/abusectl/internal/ui"
)

// errReported means the failure was already shown to the user; the process
// only has to exit with status 1.
var errReported = errors.New("failure already reported")

var (
	configFile string
	verbose    bool
	quiet      bool
	jsonOutput bool

	ipAddress      string
	categoryList   string
	comment        string
	confidence     int
	dryRun         bool
	listCategories bool
	interactive    bool

	// buildVersion is set by SetBuildInfo
	buildVersion = "dev"

	printer = ui.New(os.Stdout, os.Stderr)
	// loaded is the configuration used by the current command, kept for the
	// metrics push after it returns
	loaded *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "abusectl",
	Short: "Report abusive IP addresses to AbuseIPDB",
	Long: `abusectl validates abuse reports and submits them to the AbuseIPDB v2 report API.

Run without flags for the interactive menu, or pass --ip, --categories and
--comment to submit a single report from scripts. The API key is read from
ABUSEIPDB_API_KEY, either in the environment or in a .env file.`,
	Example: `  # Interactive menu
  abusectl

  # Submit one report
  abusectl --ip 192.0.2.1 --categories brute-force,ssh --comment "SSH brute force"

  # Validate without submitting
  abusectl --ip 192.0.2.1 --categories 18,22 --comment "SSH brute force" --dry-run

  # Report a list of IPs
  abusectl bulk --file ips.txt --categories port-scan --comment "Port scan" --yes

  # Machine readable output
  abusectl -j --ip 192.0.2.1 --categories ssh --comment "SSH brute force"`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

// SetBuildInfo sets the version reported by --version
func SetBuildInfo(version, buildTime, commit string) {
	buildVersion = version
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("abusectl v{{.Version}}\nBuilt: %s\nCommit: %s\n", buildTime, commit))
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	pushMetrics()

	if err != nil {
		if !errors.Is(err, errReported) {
			outputError(err.Error())
		}
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "C", "", "settings file (default is ./abusectl.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (show detailed logs)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "quiet mode (minimal output)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "output in JSON format for scripting")

	rootCmd.Flags().StringVar(&ipAddress, "ip", "", "IP address to report (IPv4 or IPv6)")
	rootCmd.Flags().StringVar(&categoryList, "categories", "", "comma-separated category names or IDs (e.g., brute-force,ssh)")
	rootCmd.Flags().StringVar(&comment, "comment", "", "description of the abuse (max 1000 characters)")
	rootCmd.Flags().IntVar(&confidence, "confidence", 100, "confidence score 0-100")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the report without submitting it")
	rootCmd.Flags().BoolVar(&listCategories, "list-categories", false, "list all categories and exit")
	rootCmd.Flags().BoolVar(&interactive, "cli", false, "start the interactive menu")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if configFile != "" {
			os.Setenv("CONFIG_FILE", configFile)
		}

		// Configure logging based on verbosity flags
		setupLogging()
		printer.SetQuiet(quiet || jsonOutput)
	}
}

// GetGlobalFlags returns the global flags for use in subcommands
func GetGlobalFlags() (string, bool, bool, bool) {
	return configFile, verbose, quiet, jsonOutput
}

// setupLogging configures logging based on verbosity flags
func setupLogging() {
	log.SetOutput(os.Stderr)
	if quiet {
		log.SetOutput(io.Discard)
	} else if verbose {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
		log.SetTimeFormat(time.TimeOnly)
		log.SetReportCaller(true)
	} else {
		log.SetLevel(log.WarnLevel)
		log.SetReportTimestamp(false)
	}
}

// loadConfig loads settings and the .env file, falling back to defaults
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Warn("Failed to load configuration, using defaults", "err", err)
		cfg = config.LoadDefault()
	}
	loaded = cfg
	return cfg
}

func newSubmitter(cfg *config.Config) *report.Submitter {
	return report.NewSubmitter(report.Options{
		APIKey:    cfg.APIKey,
		NewSender: senderFactory(cfg),
		Limiter:   cfg.Limiter(),
		Logger:    log.Default(),
	})
}

// senderFactory builds report clients with the configured endpoint and timeout
func senderFactory(cfg *config.Config) report.SenderFactory {
	opts := append(cfg.ClientOptions(), api.WithLogger(log.Default()))
	return func(apiKey string) report.Sender {
		return api.NewClient(apiKey, opts...)
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	if listCategories {
		return showCategories()
	}

	cfg := loadConfig()

	reportFlags := ipAddress != "" || categoryList != "" || comment != "" || cmd.Flags().Changed("confidence")
	if interactive || !reportFlags {
		if dryRun && !interactive {
			outputError("--dry-run needs --ip, --categories and --comment")
			return errReported
		}
		return runInteractive(cmd.Context(), cfg)
	}

	in := report.Input{
		IP:         ipAddress,
		Categories: categories.SplitList(categoryList),
		Comment:    comment,
		Confidence: confidence,
	}
	return submitOne(cmd.Context(), newSubmitter(cfg), in, dryRun)
}

// submitOne runs a single report and prints the outcome
func submitOne(ctx context.Context, submitter *report.Submitter, in report.Input, dryRun bool) error {
	req, err := submitter.Validate(in)
	if err != nil {
		outputResult(in, err.Error(), true)
		return errReported
	}
	if !jsonOutput && !quiet {
		printer.ReportSummary(req, verbose)
	}

	result, err := submitter.Submit(ctx, in, dryRun)
	if err != nil {
		outputResult(in, err.Error(), true)
		if errors.Is(err, report.ErrCredential) && !jsonOutput {
			printer.Info("Set %s in the environment or run: abusectl key save", config.APIKeyVar)
		}
		return errReported
	}

	if jsonOutput {
		outputResult(result, result.Outcome.Message, !result.Outcome.Success)
	} else if dryRun {
		printer.Box("DRY-RUN MODE", "Validation completed successfully (no report submitted)")
	} else {
		printer.Outcome(result.Outcome)
	}

	if !result.Outcome.Success {
		return errReported
	}
	return nil
}

func pushMetrics() {
	if loaded == nil || loaded.Metrics.Pushgateway == "" {
		return
	}
	if err := metrics.Push(loaded.Metrics.Pushgateway, "abusectl"); err != nil {
		log.Warn("Failed to push metrics", "url", loaded.Metrics.Pushgateway, "err", err)
		return
	}
	log.Debug("Pushed metrics", "url", loaded.Metrics.Pushgateway)
}
