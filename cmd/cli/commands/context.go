package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/deskrota/internal/config"
	"github.com/jakechorley/deskrota/pkg/db"
	"github.com/jakechorley/deskrota/pkg/metrics"
	"github.com/jakechorley/deskrota/pkg/postgres"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg     *config.Config
	Metrics *metrics.Recorder
	Logger  *zap.Logger
	Ctx     context.Context

	store  db.RunStore
	closer func()
}

// Store returns the configured run store, connecting on first use.
// Commands that never touch results do not need a reachable database.
func (app *AppContext) Store() (db.RunStore, error) {
	if app.store != nil {
		return app.store, nil
	}

	switch app.Cfg.Store.Backend {
	case "postgres":
		app.Logger.Info("Connecting to database")
		pg, err := postgres.NewDB(app.Ctx, app.Cfg.Store.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		app.store = pg
		app.closer = pg.Close
		app.Logger.Debug("Database initialized successfully")
	default:
		app.store = db.NewCSVStore(app.Cfg.Store.CSVPath)
		app.Logger.Debug("Using CSV run store", zap.String("path", app.Cfg.Store.CSVPath))
	}

	return app.store, nil
}

// SetStore overrides the configured run store
func (app *AppContext) SetStore(store db.RunStore) {
	app.store = store
}

// Close releases the store connection, if any
func (app *AppContext) Close() {
	if app.closer != nil {
		app.closer()
		app.closer = nil
	}
}

// writeMetrics writes the metrics textfile when one is configured
func (app *AppContext) writeMetrics() error {
	path := app.Cfg.Metrics.Textfile
	if path == "" || app.Metrics == nil {
		return nil
	}
	if err := app.Metrics.WriteTextfile(path); err != nil {
		return err
	}
	app.Logger.Info("Metrics written", zap.String("path", path))
	return nil
}
