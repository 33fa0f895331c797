package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "dcoach/internal/errors"
)

func TestLoad_CreatesTemplateAndAppliesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Errorf("expected template config.toml: %v", err)
	}
	if cfg.Coach.Session != "default" {
		t.Errorf("session = %q, want default", cfg.Coach.Session)
	}
	if cfg.Storage.DBPath != filepath.Join(dir, "dcoach.db") {
		t.Errorf("db_path = %q", cfg.Storage.DBPath)
	}
	if cfg.Logging.Level != "info" || !cfg.Logging.File {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
	if !cfg.UI.ColorEnabled {
		t.Error("color should be enabled by default")
	}
	if cfg.Provider.RetryInterval != 500*time.Millisecond || cfg.Provider.Cooldown != 30*time.Second {
		t.Errorf("unexpected provider durations %+v", cfg.Provider)
	}
	if cfg.Provider.MaxRetries != 2 || cfg.Provider.FailureThreshold != 5 {
		t.Errorf("unexpected provider limits %+v", cfg.Provider)
	}
}

func TestLoad_ReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	body := `
[coach]
session = "alice"
catalog_path = "/tmp/catalog.yaml"
reject_concurrent = true

[storage]
db_path = "/tmp/coach.db"

[logging]
level = "debug"
file = false
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Coach.Session != "alice" || !cfg.Coach.RejectConcurrent || cfg.Coach.CatalogPath != "/tmp/catalog.yaml" {
		t.Errorf("unexpected coach config %+v", cfg.Coach)
	}
	if cfg.Storage.DBPath != "/tmp/coach.db" {
		t.Errorf("db_path = %q", cfg.Storage.DBPath)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.File {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
	if cfg.Logging.MaxSize != 20 {
		t.Errorf("max_size default = %d, want 20", cfg.Logging.MaxSize)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DCOACH_SESSION", "bob")
	t.Setenv("DCOACH_DB_PATH", "/var/lib/dcoach.db")
	t.Setenv("DCOACH_LOG_LEVEL", "WARN")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Coach.Session != "bob" || cfg.Storage.DBPath != "/var/lib/dcoach.db" || cfg.Logging.Level != "warn" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DCOACH_SESSION", "")
	os.Unsetenv("DCOACH_SESSION")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DCOACH_SESSION=from-dotenv\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Coach.Session != "from-dotenv" {
		t.Errorf("session = %q, want from-dotenv", cfg.Coach.Session)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Coach:    CoachConfig{Session: "default"},
			Provider: ProviderConfig{FailureThreshold: 5},
			Storage:  StorageConfig{DBPath: "coach.db"},
			Logging:  LoggingConfig{Level: "info"},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := map[string]func(c *Config){
		"empty session":  func(c *Config) { c.Coach.Session = "  " },
		"empty db path":  func(c *Config) { c.Storage.DBPath = "" },
		"bad level":      func(c *Config) { c.Logging.Level = "trace" },
		"file no path":   func(c *Config) { c.Logging.File = true },
		"negative limit": func(c *Config) { c.Logging.MaxAge = -1 },
		"negative retry": func(c *Config) { c.Provider.MaxRetries = -1 },
		"zero threshold": func(c *Config) { c.Provider.FailureThreshold = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			if err := cfg.Validate(); !apperrors.Is(err, apperrors.ErrConfigInvalid) {
				t.Errorf("expected ErrConfigInvalid, got %v", err)
			}
		})
	}
}
