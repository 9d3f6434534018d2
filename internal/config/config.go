package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/abusectl/abusectl/internal/api"
	"github.com/abusectl/abusectl/internal/validate"
)

// APIKeyVar is the variable holding the AbuseIPDB API key
const APIKeyVar = "ABUSEIPDB_API_KEY"

// ErrPermissionDenied is returned when the .env file cannot be written
var ErrPermissionDenied = errors.New("permission denied")

// ErrInvalidKey is returned by SaveAPIKey for an empty or short key
var ErrInvalidKey = errors.New("API key is empty or too short")

type Config struct {
	API     APIConfig     `yaml:"api"`
	Bulk    BulkConfig    `yaml:"bulk"`
	Metrics MetricsConfig `yaml:"metrics"`

	// APIKey comes from the environment or the discovered .env file
	APIKey string `yaml:"-"`
	// EnvFile is the .env file that was found, empty if none
	EnvFile string `yaml:"-"`
}

type APIConfig struct {
	Endpoint  string        `yaml:"endpoint"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

type BulkConfig struct {
	// Rate is reports per second, 0 means unpaced
	Rate float64 `yaml:"rate"`
}

type MetricsConfig struct {
	Pushgateway string `yaml:"pushgateway"`
}

// Load loads the .env file, the YAML settings file and environment overrides.
// A missing file of either kind is not an error.
func Load() (*Config, error) {
	return LoadFile(getEnv("CONFIG_FILE", "abusectl.yaml"))
}

// LoadFile is Load with an explicit settings file path
func LoadFile(configPath string) (*Config, error) {
	config := getDefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	envFile := FindEnvFile()
	if envFile != "" {
		// existing process variables win over the file
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	config.EnvFile = envFile

	if err := overrideWithEnv(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadDefault returns defaults with environment overrides and no file access.
// Overrides that do not parse are logged and skipped.
func LoadDefault() *Config {
	config := getDefaultConfig()
	if err := overrideWithEnv(config); err != nil {
		log.Warn("Ignoring invalid environment overrides", "err", err)
	}
	return config
}

func getDefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Endpoint:  api.DefaultEndpoint,
			Timeout:   api.DefaultTimeout,
			UserAgent: api.DefaultUserAgent,
		},
	}
}

// overrideWithEnv applies every variable that parses and returns the
// others joined into one error
func overrideWithEnv(config *Config) error {
	var errs []error
	config.APIKey = strings.TrimSpace(os.Getenv(APIKeyVar))

	if endpoint := getEnv("ABUSEIPDB_ENDPOINT", ""); endpoint != "" {
		config.API.Endpoint = endpoint
	}
	if timeout := getEnv("ABUSEIPDB_TIMEOUT", ""); timeout != "" {
		d, err := parseDuration(timeout)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid ABUSEIPDB_TIMEOUT %q: %w", timeout, err))
		} else {
			config.API.Timeout = d
		}
	}
	if r := getEnv("ABUSECTL_BULK_RATE", ""); r != "" {
		f, err := strconv.ParseFloat(r, 64)
		if err != nil || f < 0 {
			errs = append(errs, fmt.Errorf("invalid ABUSECTL_BULK_RATE %q", r))
		} else {
			config.Bulk.Rate = f
		}
	}
	if gw := getEnv("ABUSECTL_PUSHGATEWAY", ""); gw != "" {
		config.Metrics.Pushgateway = gw
	}
	return errors.Join(errs...)
}

// parseDuration accepts a Go duration ("20s") or a plain number of seconds
func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if secs <= 0 {
			return 0, errors.New("must be positive")
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.New("must be positive")
	}
	return d, nil
}

// Limiter returns the bulk pacing limiter, nil when pacing is off
func (c *Config) Limiter() *rate.Limiter {
	if c.Bulk.Rate <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(c.Bulk.Rate), 1)
}

// ClientOptions returns the report client options for the loaded settings
func (c *Config) ClientOptions() []api.Option {
	return []api.Option{
		api.WithEndpoint(c.API.Endpoint),
		api.WithTimeout(c.API.Timeout),
		api.WithUserAgent(c.API.UserAgent),
	}
}

// EnvCandidates lists the .env locations in the order they are tried
func EnvCandidates() []string {
	var paths []string
	if p := os.Getenv("ABUSECTL_ENV_FILE"); p != "" {
		paths = append(paths, p)
	}
	paths = append(paths, ".env")
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), ".env"))
	}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "abusectl", ".env"))
	}
	return paths
}

// FindEnvFile returns the first existing .env candidate, or ""
func FindEnvFile() string {
	for _, p := range EnvCandidates() {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// DefaultEnvPath is where the save-key action writes when no .env exists yet
func DefaultEnvPath() string {
	if p := FindEnvFile(); p != "" {
		return p
	}
	if p := os.Getenv("ABUSECTL_ENV_FILE"); p != "" {
		return p
	}
	return ".env"
}

// SaveAPIKey stores key in the .env file at path, keeping the other entries.
// The process environment is updated too so later submissions see the key.
func SaveAPIKey(path, key string) error {
	key = strings.TrimSpace(key)
	if len(key) < validate.MinAPIKeyLength {
		return ErrInvalidKey
	}

	values := map[string]string{}
	if _, err := os.Stat(path); err == nil {
		existing, err := godotenv.Read(path)
		if err != nil {
			return wrapFileError(path, err)
		}
		values = existing
	}
	values[APIKeyVar] = key

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return wrapFileError(path, err)
		}
	}
	if err := godotenv.Write(values, path); err != nil {
		return wrapFileError(path, err)
	}

	return os.Setenv(APIKeyVar, key)
}

func wrapFileError(path string, err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
	}
	return fmt.Errorf("failed to save %s: %w", path, err)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
