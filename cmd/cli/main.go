package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/deskrota/cmd/cli/commands"
	"github.com/jakechorley/deskrota/internal/config"
	"github.com/jakechorley/deskrota/pkg/metrics"
	"github.com/jakechorley/deskrota/pkg/utils/logging"
)

var (
	env        string
	configPath string
	logDir     string
	verbose    bool
	app        = &commands.AppContext{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "deskrota",
		Short: "Deskrota CLI - Assign employees to desks over a planning horizon",
		Long: `A CLI tool for building and improving desk assignments with constructive,
local search, annealing and genetic methods, and for running and summarising experiments.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Close()
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (selects deskrota_config.<env>.yaml)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a config file")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "logs", "Directory for log files")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to the console")

	// Add all commands
	rootCmd.AddCommand(commands.SolveCmd(app))
	rootCmd.AddCommand(commands.ExperimentCmd(app))
	rootCmd.AddCommand(commands.SummarizeCmd(app))
	rootCmd.AddCommand(commands.GenerateCmd(app))
	rootCmd.AddCommand(commands.ValidateCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config and metrics. The run store is opened by the
// commands that need it.
func initApp() error {
	var err error
	app.Ctx = context.Background()

	// Initialize logger
	app.Logger, err = logging.New(logging.Options{Env: env, Dir: logDir, Verbose: verbose})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.Cfg, err = loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully",
		zap.String("store", app.Cfg.Store.Backend),
		zap.Strings("methods", app.Cfg.Experiments.Methods))

	app.Metrics = metrics.NewRecorder(true)

	return nil
}

// loadConfig reads the explicit config path, or searches for one and falls
// back to the defaults when none exists
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}

	cfg, err := config.LoadWithEnv(env)
	if errors.Is(err, config.ErrNotFound) {
		app.Logger.Info("No config file found, using defaults")
		return config.Default(), nil
	}
	return cfg, err
}
