package cli

import (
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trade-journal/internal/config"
	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/logging"
	"trade-journal/internal/reports"
	"trade-journal/internal/stats"
	"trade-journal/internal/store"
)

// Version information
const (
	Version   = "0.3.0"
	BuildDate = "2026-10-01"
)

// App holds the application dependencies. Store and the report service are
// opened on first use so commands like version never touch the database.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Store    store.JournalStore
	Registry *prometheus.Registry

	reports *reports.Service
	metrics *reports.Metrics
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(logger zerolog.Logger) *cobra.Command {
	return newRootCmd(&App{Logger: logger})
}

func newRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "journal",
		Short: "Trade journal statistics",
		Long: `Trade journal statistics computes performance reports for trading journals.

It reports win rates, P&L and breakdowns by symbol, strategy, emotion, session,
weekday and month, and measures how checklist habits relate to outcomes.

Use 'journal import' to load data and 'journal serve' to expose the HTTP API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Config == nil {
				dir, _ := cmd.Flags().GetString("config")
				cfg, err := config.Load(dir)
				if err != nil {
					return err
				}
				app.Config = cfg
				app.Logger = logging.NewLoggerWithConfig(cfg.LogConfig())
			}

			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/trade-journal)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addJournalCommands(rootCmd, app)
	addImportCommands(rootCmd, app)
	addServeCommands(rootCmd, app)

	return rootCmd
}

// journalStore opens the configured SQLite database.
func (app *App) journalStore() (store.JournalStore, error) {
	if app.Store != nil {
		return app.Store, nil
	}
	dbPath := app.Config.Database.Path
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, apperrors.Wrap(err, "creating database directory")
	}
	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, err
	}
	app.Logger.Debug().Str("path", dbPath).Msg("SQLite store initialized")
	app.Store = st
	return st, nil
}

// reportService builds the report service on top of the store.
func (app *App) reportService() (*reports.Service, error) {
	if app.reports != nil {
		return app.reports, nil
	}
	st, err := app.journalStore()
	if err != nil {
		return nil, err
	}
	sc, err := app.Config.StatsConfig()
	if err != nil {
		return nil, err
	}
	engine, err := stats.NewEngine(sc, app.Logger)
	if err != nil {
		return nil, err
	}
	if app.metrics == nil {
		app.metrics = reports.NewMetrics(app.registry())
	}
	app.reports = reports.NewService(st, engine, app.metrics, app.Logger, app.Config.Server.MaxParallel)
	return app.reports, nil
}

func (app *App) registry() *prometheus.Registry {
	if app.Registry == nil {
		app.Registry = prometheus.NewRegistry()
		app.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return app.Registry
}

// Close releases the store if one was opened.
func (app *App) Close() error {
	if app.Store == nil {
		return nil
	}
	err := app.Store.Close()
	app.Store = nil
	app.reports = nil
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
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("Trade Journal v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			cfg := app.Config
			if defaults, _ := cmd.Flags().GetBool("defaults"); defaults {
				cfg = config.Default(app.Config.Dir)
			}
			if output.IsJSON() {
				return output.JSON(cfg)
			}
			showConfig(output, cfg)
			return nil
		},
	}
	show.Flags().Bool("defaults", false, "show the built-in defaults instead")
	cmd.AddCommand(show)

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			path := config.ConfigFile(app.Config.Dir)
			if output.IsJSON() {
				return output.JSON(map[string]string{"path": path})
			}
			output.Println(path)
			return nil
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
			output.Success("Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Database")
	output.Printf("  Path:            %s\n", cfg.Database.Path)
	output.Println()

	output.Bold("Server")
	output.Printf("  Address:         %s\n", cfg.Server.Addr)
	output.Printf("  Read Timeout:    %s\n", cfg.Server.ReadTimeout)
	output.Printf("  Write Timeout:   %s\n", cfg.Server.WriteTimeout)
	output.Printf("  Max Parallel:    %d\n", cfg.Server.MaxParallel)
	output.Println()

	output.Bold("Statistics")
	output.Printf("  Timezone:        %s\n", cfg.Stats.Timezone)
	for _, s := range cfg.Stats.Sessions {
		output.Printf("  %-16s %02d:00-%02d:00\n", s.Name+":", s.StartHour, s.EndHour)
	}
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:           %s\n", cfg.Logging.Level)
	output.Printf("  Console:         %v\n", cfg.Logging.Console)
	output.Printf("  File:            %v\n", cfg.Logging.File)
	if cfg.Logging.File {
		output.Printf("  File Path:       %s\n", cfg.Logging.FilePath)
	}
}
