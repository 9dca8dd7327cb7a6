package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override, e.g. HEALTHDASH_FITBIT_CLIENT_ID
const EnvPrefix = "HEALTHDASH"

// Config represents the application configuration
type Config struct {
	Fitbit   FitbitConfig  `json:"fitbit"`
	User     UserConfig    `json:"user"`
	Sync     SyncConfig    `json:"sync"`
	Display  DisplayConfig `json:"display"`
	LogLevel string        `json:"log_level" validate:"oneof=debug info warn error"`
	DemoMode bool          `json:"demo_mode"`
}

// FitbitConfig holds Fitbit API credentials
type FitbitConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURL  string `json:"redirect_url" validate:"omitempty,url"`
}

// UserConfig identifies whose rows are read and written
type UserConfig struct {
	ID string `json:"id" validate:"required"`
}

// SyncConfig controls automatic syncing
type SyncConfig struct {
	AutoSyncDays int    `json:"auto_sync_days" validate:"min=1,max=30"`
	Schedule     string `json:"schedule" validate:"required"` // 6-field cron spec
	MaxAttempts  int    `json:"max_attempts" validate:"min=1,max=10"`
}

// DisplayConfig holds display preferences
type DisplayConfig struct {
	ChartDays int `json:"chart_days" validate:"min=7,max=180"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Fitbit: FitbitConfig{
			RedirectURL: "http://localhost:8089/callback",
		},
		User: UserConfig{
			ID: "me",
		},
		Sync: SyncConfig{
			AutoSyncDays: 3,
			Schedule:     "0 15 6 * * *",
			MaxAttempts:  3,
		},
		Display: DisplayConfig{
			ChartDays: 30,
		},
		LogLevel: "info",
	}
}

// envOverrides are read from HEALTHDASH_* variables. Pointers stay nil when unset.
type envOverrides struct {
	FitbitClientID     *string `envconfig:"FITBIT_CLIENT_ID"`
	FitbitClientSecret *string `envconfig:"FITBIT_CLIENT_SECRET"`
	FitbitRedirectURI  *string `envconfig:"FITBIT_REDIRECT_URI"`
	UserID             *string `envconfig:"USER_ID"`
	DemoMode           *bool   `envconfig:"DEMO_MODE"`
	AutoSyncDays       *int    `envconfig:"AUTO_SYNC_DAYS"`
	SyncSchedule       *string `envconfig:"SYNC_SCHEDULE"`
	LogLevel           *string `envconfig:"LOG_LEVEL"`
}

// Load reads the configuration from ~/.healthdash/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadPath(path)
}

// LoadPath reads the configuration from path and fills missing values with defaults
func LoadPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Resolve builds the effective configuration: the config file if present,
// defaults otherwise, then .env and HEALTHDASH_* overrides.
func Resolve() (*Config, error) {
	cfg, err := Load()
	if errors.Is(err, ErrNoConfig) {
		d := DefaultConfig()
		cfg, err = &d, nil
	}
	if err != nil {
		return nil, err
	}

	// A missing .env is not an error
	_ = godotenv.Load()

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays HEALTHDASH_* environment variables onto the config
func (c *Config) ApplyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}

	setString(&c.Fitbit.ClientID, env.FitbitClientID)
	setString(&c.Fitbit.ClientSecret, env.FitbitClientSecret)
	setString(&c.Fitbit.RedirectURL, env.FitbitRedirectURI)
	setString(&c.User.ID, env.UserID)
	setString(&c.Sync.Schedule, env.SyncSchedule)
	setString(&c.LogLevel, env.LogLevel)
	if env.DemoMode != nil {
		c.DemoMode = *env.DemoMode
	}
	if env.AutoSyncDays != nil {
		c.Sync.AutoSyncDays = *env.AutoSyncDays
	}

	c.applyDefaults()
	return nil
}

func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

// applyDefaults fills zero values; a non-positive sync window falls back to the default
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Fitbit.RedirectURL == "" {
		c.Fitbit.RedirectURL = defaults.Fitbit.RedirectURL
	}
	if c.User.ID == "" {
		c.User.ID = defaults.User.ID
	}
	if c.Sync.AutoSyncDays < 1 {
		c.Sync.AutoSyncDays = defaults.Sync.AutoSyncDays
	}
	if c.Sync.Schedule == "" {
		c.Sync.Schedule = defaults.Sync.Schedule
	}
	if c.Sync.MaxAttempts < 1 {
		c.Sync.MaxAttempts = defaults.Sync.MaxAttempts
	}
	if c.Display.ChartDays == 0 {
		c.Display.ChartDays = defaults.Display.ChartDays
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
}

// Save writes the configuration to ~/.healthdash/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Fitbit.ClientID = "YOUR_CLIENT_ID"
	example.Fitbit.ClientSecret = "YOUR_CLIENT_SECRET"

	return Save(&example)
}

var validate = validator.New()

// Validate checks field ranges and, outside demo mode, the Fitbit credentials
func (c *Config) Validate() error {
	if err := c.ValidateFields(); err != nil {
		return err
	}
	if c.DemoMode {
		return nil
	}
	return c.ValidateCredentials()
}

// ValidateFields checks field ranges only. Commands that never call Fitbit
// run with this alone.
func (c *Config) ValidateFields() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s is invalid: failed %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	return nil
}

// ValidateCredentials checks the Fitbit app credentials needed for login and sync
func (c *Config) ValidateCredentials() error {
	if c.Fitbit.ClientID == "" || c.Fitbit.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("fitbit.client_id is required - register an app at https://dev.fitbit.com/apps")
	}
	if c.Fitbit.ClientSecret == "" || c.Fitbit.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("fitbit.client_secret is required - register an app at https://dev.fitbit.com/apps")
	}
	return nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".healthdash"), nil
}
