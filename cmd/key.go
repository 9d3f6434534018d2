package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/abusectl/abusectl/internal/config"
	"github.com/abusectl/abusectl/internal/validate"
)

var envFile string

// keyCmd represents the key command
var keyCmd = &cobra.Command{
	Use:     "key",
	Aliases: []string{"keys", "k"},
	Short:   "Manage the AbuseIPDB API key",
	Long: `Manage the ABUSEIPDB_API_KEY used to authenticate reports.

The key is looked up in the environment first and then in the first .env file
found in: $ABUSECTL_ENV_FILE, ./.env, the directory of the executable and the
user configuration directory (abusectl/.env).`,
	Example: `  # Store a key (prompted without echo when omitted)
  abusectl key save
  abusectl key save 0123456789abcdef... --env-file ~/.config/abusectl/.env

  # Check the configured key
  abusectl key check`,
}

var keySaveCmd = &cobra.Command{
	Use:   "save [key]",
	Short: "Save the API key to a .env file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := envFile
		if path == "" {
			path = config.DefaultEnvPath()
		}

		var key string
		if len(args) == 1 {
			key = args[0]
		} else {
			secret, err := readSecret("API key: ")
			if err != nil {
				return err
			}
			key = secret
		}

		if err := validate.APIKey(key); err != nil {
			printer.Warning("%v", err)
		}

		if err := config.SaveAPIKey(path, key); err != nil {
			if errors.Is(err, config.ErrPermissionDenied) {
				return fmt.Errorf("cannot write %s: permission denied", path)
			}
			return err
		}

		outputSuccess(map[string]string{"env_file": path}, fmt.Sprintf("API key saved to %s", path))
		return nil
	},
}

var keyCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that an API key is configured and well formed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		source := "environment"
		if cfg.EnvFile != "" {
			source = cfg.EnvFile
		}

		status := map[string]any{
			"configured": cfg.APIKey != "",
			"env_file":   cfg.EnvFile,
			"endpoint":   cfg.API.Endpoint,
		}

		if err := validate.APIKey(cfg.APIKey); err != nil {
			outputResult(status, err.Error(), true)
			return errReported
		}

		outputSuccess(status, fmt.Sprintf("API key looks valid (%s, from %s)", mask(cfg.APIKey), source))
		return nil
	},
}

// readSecret prompts for a value without echoing it
func readSecret(prompt string) (string, error) {
	rl, err := readline.New("")
	if err != nil {
		return "", fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	secret, err := rl.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}

// mask keeps the first and last four characters of key
func mask(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

func init() {
	keySaveCmd.Flags().StringVar(&envFile, "env-file", "", ".env file to write (default: the discovered one, else ./.env)")

	keyCmd.AddCommand(keySaveCmd)
	keyCmd.AddCommand(keyCheckCmd)
	rootCmd.AddCommand(keyCmd)
}
