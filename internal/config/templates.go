package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# DCoach Configuration

[coach]
# Name of the learning session; each session keeps its own progress
session = "default"
# Optional YAML concept catalog; empty uses the built-in catalog
catalog_path = ""
# Fail fast instead of waiting when an analysis is already running
reject_concurrent = false

[provider]
# Retries after a failed analysis attempt, with exponential backoff
max_retries = 2
retry_interval = "500ms"
# Maximum analyses per minute; 0 disables the limit
rate_per_minute = 30
# Consecutive failures before analysis is paused, and for how long
failure_threshold = 5
cooldown = "30s"

[storage]
# SQLite database for trades, analyses and learning state
# db_path = "~/.config/dcoach/dcoach.db"

[logging]
# Log level: debug, info, warn, error
level = "info"
# Mirror logs to stderr
console = false
# Write rotating log files
file = true
max_size = 20
max_backups = 5
max_age = 30

[ui]
# Enable colored output
color_enabled = true
`

func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
