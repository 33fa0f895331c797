// Package cli provides the command-line interface for the trading coach.
package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"dcoach/internal/coach"
	"dcoach/internal/config"
	"dcoach/internal/learning"
	"dcoach/internal/logging"
	"dcoach/internal/resilience"
	"dcoach/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-03-01"
)

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Store   store.DataStore
	Catalog *learning.Catalog

	session *coach.Session
}

// NewRootCmd creates the root command for the CLI. Configuration, logging,
// and the concept catalog are set up before any subcommand runs.
func NewRootCmd() *cobra.Command {
	app := &App{Logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "dcoach",
		Short: "DCoach - trading coach for synthetic index traders",
		Long: `DCoach reviews completed trades, scores risky trading behavior,
and tracks the concepts you learn along the way.

Import your trades with 'dcoach trades import', then analyze them one at a time
with 'dcoach analyze <trade-id>' to unlock concepts and raise your Trading IQ.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/dcoach)")
	rootCmd.PersistentFlags().String("session", "", "learner session name (overrides config)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addTradeCommands(rootCmd, app)
	addCoachCommands(rootCmd, app)

	return rootCmd
}

// init loads configuration and builds the logger and catalog.
func (a *App) init(cmd *cobra.Command) error {
	configDir, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if session, _ := cmd.Flags().GetString("session"); session != "" {
		cfg.Coach.Session = session
	}
	if !cfg.UI.ColorEnabled {
		_ = cmd.Flags().Set("no-color", "true")
	}
	a.Config = cfg

	a.Logger = logging.NewLoggerWithConfig(cfg.LogConfig())
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logging.SetDebugLevel()
		a.Logger = a.Logger.Level(zerolog.DebugLevel)
	}

	a.Catalog = learning.DefaultCatalog()
	if cfg.Coach.CatalogPath != "" {
		catalog, err := learning.LoadCatalog(cfg.Coach.CatalogPath)
		if err != nil {
			return err
		}
		a.Catalog = catalog
		a.Logger.Debug().Str("path", cfg.Coach.CatalogPath).Int("concepts", catalog.Len()).Msg("Concept catalog loaded")
	}

	cmd.SetContext(logging.WithLogger(cmd.Context(), a.Logger))
	return nil
}

// dataStore opens the SQLite store on first use.
func (a *App) dataStore() (store.DataStore, error) {
	if a.Store != nil {
		return a.Store, nil
	}
	ds, err := store.NewSQLiteStore(a.Config.Storage.DBPath)
	if err != nil {
		return nil, err
	}
	a.Logger.Debug().Str("path", a.Config.Storage.DBPath).Msg("SQLite store initialized")
	a.Store = ds
	return ds, nil
}

// Session returns the coaching session named in the configuration.
func (a *App) Session(ctx context.Context) (*coach.Session, error) {
	if a.session != nil {
		return a.session, nil
	}
	ds, err := a.dataStore()
	if err != nil {
		return nil, err
	}
	analyzer := coach.NewGuardedAnalyzer(coach.NewRuleAnalyzer(a.Catalog), coach.GuardConfig{
		MaxRetries:    a.Config.Provider.MaxRetries,
		RetryInterval: a.Config.Provider.RetryInterval,
		RatePerMinute: a.Config.Provider.RatePerMinute,
		Breaker: resilience.BreakerConfig{
			FailureThreshold: a.Config.Provider.FailureThreshold,
			Cooldown:         a.Config.Provider.Cooldown,
		},
	}, a.Logger)
	sess, err := coach.NewSession(ctx, ds, analyzer, a.Catalog, coach.Options{
		Name:   a.Config.Coach.Session,
		Reject: a.Config.Coach.RejectConcurrent,
	}, a.Logger)
	if err != nil {
		return nil, err
	}
	a.session = sess
	return sess, nil
}

// Close releases the store if it was opened.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	err := a.Store.Close()
	a.Store = nil
	a.session = nil
	return err
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("DCoach v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": app.Config.Dir})
			} else {
				output.Println(app.Config.Dir)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	catalog := cfg.Coach.CatalogPath
	if catalog == "" {
		catalog = "(built-in)"
	}

	output.Bold("Coach")
	output.Printf("  Session:           %s\n", cfg.Coach.Session)
	output.Printf("  Catalog:           %s\n", catalog)
	output.Printf("  Reject concurrent: %v\n", cfg.Coach.RejectConcurrent)
	output.Println()

	output.Bold("Provider")
	output.Printf("  Max retries:       %d (every %s)\n", cfg.Provider.MaxRetries, cfg.Provider.RetryInterval)
	output.Printf("  Rate limit:        %d/min\n", cfg.Provider.RatePerMinute)
	output.Printf("  Breaker:           %d failures, %s cooldown\n", cfg.Provider.FailureThreshold, cfg.Provider.Cooldown)
	output.Println()

	output.Bold("Storage")
	output.Printf("  Database:          %s\n", cfg.Storage.DBPath)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:             %s\n", cfg.Logging.Level)
	output.Printf("  Console:           %v\n", cfg.Logging.Console)
	output.Printf("  File:              %v\n", cfg.Logging.File)
	if cfg.Logging.File {
		output.Printf("  File path:         %s\n", cfg.Logging.FilePath)
	}
}
