// Package config provides configuration management for the trading coach.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "dcoach/internal/errors"
	"dcoach/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	Coach    CoachConfig    `mapstructure:"coach"`
	Provider ProviderConfig `mapstructure:"provider"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	UI       UIConfig       `mapstructure:"ui"`

	// Dir is the directory the configuration was loaded from.
	Dir string `mapstructure:"-"`
}

// CoachConfig holds session and learning configuration.
type CoachConfig struct {
	Session          string `mapstructure:"session"`
	CatalogPath      string `mapstructure:"catalog_path"` // empty uses the built-in catalog
	RejectConcurrent bool   `mapstructure:"reject_concurrent"`
}

// ProviderConfig holds retry, rate limit, and circuit breaker settings for
// the analysis provider.
type ProviderConfig struct {
	MaxRetries       int           `mapstructure:"max_retries"`
	RetryInterval    time.Duration `mapstructure:"retry_interval"`
	RatePerMinute    int           `mapstructure:"rate_per_minute"` // 0 disables the limit
	FailureThreshold int           `mapstructure:"failure_threshold"`
	Cooldown         time.Duration `mapstructure:"cooldown"`
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool `mapstructure:"color_enabled"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/dcoach"
	}
	return filepath.Join(home, ".config", "dcoach")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config.toml is replaced by a commented template and defaults apply.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	// .env files only fill variables that are not already set
	_ = godotenv.Load(filepath.Join(configDir, ".env"))
	_ = godotenv.Load()

	cfg := &Config{Dir: configDir}
	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	logDefaults := logging.DefaultLogConfig()

	v.SetDefault("coach.session", "default")
	v.SetDefault("coach.catalog_path", "")
	v.SetDefault("coach.reject_concurrent", false)
	v.SetDefault("provider.max_retries", 2)
	v.SetDefault("provider.retry_interval", "500ms")
	v.SetDefault("provider.rate_per_minute", 30)
	v.SetDefault("provider.failure_threshold", 5)
	v.SetDefault("provider.cooldown", "30s")
	v.SetDefault("storage.db_path", filepath.Join(configDir, "dcoach.db"))
	v.SetDefault("logging.level", logDefaults.Level)
	v.SetDefault("logging.console", false)
	v.SetDefault("logging.file", logDefaults.File)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "dcoach.log"))
	v.SetDefault("logging.max_size", logDefaults.MaxSize)
	v.SetDefault("logging.max_backups", logDefaults.MaxBackups)
	v.SetDefault("logging.max_age", logDefaults.MaxAge)
	v.SetDefault("ui.color_enabled", true)
}

func loadConfigFile(configDir, name string, target *Config) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		if err := createTemplateConfig(configDir, name); err != nil {
			return err
		}
	}

	return v.Unmarshal(target)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DCOACH_SESSION"); v != "" {
		cfg.Coach.Session = v
	}
	if v := os.Getenv("DCOACH_CATALOG"); v != "" {
		cfg.Coach.CatalogPath = v
	}
	if v := os.Getenv("DCOACH_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("DCOACH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Coach.Session) == "" {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "coach.session must not be empty")
	}
	if c.Provider.MaxRetries < 0 || c.Provider.RatePerMinute < 0 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "provider limits must be non-negative")
	}
	if c.Provider.FailureThreshold < 1 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "provider.failure_threshold must be at least 1")
	}
	if c.Storage.DBPath == "" {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "storage.db_path must not be empty")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "invalid log level: %s (must be debug, info, warn or error)", c.Logging.Level)
	}
	if c.Logging.File && c.Logging.FilePath == "" {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "logging.file_path is required when file logging is enabled")
	}
	if c.Logging.MaxSize < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAge < 0 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "logging rotation limits must be non-negative")
	}
	return nil
}

// LogConfig converts the logging section for the logging package.
func (c *Config) LogConfig() logging.LogConfig {
	return logging.LogConfig{
		Level:      c.Logging.Level,
		Console:    c.Logging.Console,
		File:       c.Logging.File,
		FilePath:   c.Logging.FilePath,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
	}
}
