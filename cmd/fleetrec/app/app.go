// Package app wires the fleetrec CLI together: configuration,
// logging, and the lazily built reconciliation instance shared by the
// commands.
package app

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/netviva/fleetrec"
	"github.com/netviva/fleetrec/internal/workbook"
	"github.com/netviva/fleetrec/pkg/errors"
	"github.com/netviva/fleetrec/pkg/fleet"
	"github.com/netviva/fleetrec/pkg/logging"
	"github.com/netviva/fleetrec/pkg/rollup"
)

// App carries the CLI's shared dependencies.
type App struct {
	version string
	commit  string
	date    string

	config *Config
	logger *zerolog.Logger

	mu    sync.Mutex
	fleet fleetrec.Fleetrec
}

// New creates an App with the given build information.
func New(version, commit, date string) (*App, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		config:  config,
	}
	app.ConfigureLogging()
	return app, nil
}

// Version returns the build version.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// Config returns the loaded configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	if a.logger == nil {
		return logging.Default()
	}
	return a.logger
}

// ConfigureLogging rebuilds the logger from the current config. Call
// again after flag parsing updates the config.
func (a *App) ConfigureLogging() {
	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:   a.config.LogLevel,
		Format:  a.config.LogFormat,
		Output:  a.config.LogOutput,
		NoColor: a.config.NoColor,
	})
	logging.SetDefault(logger)
	a.logger = &logger
}

// Fleet returns the reconciliation instance, building it on first
// use. The workbook path must be configured: every run reloads the
// workbook so repeated runs pick up fresh data.
func (a *App) Fleet() (fleetrec.Fleetrec, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.fleet != nil {
		return a.fleet, nil
	}
	if a.config.Workbook == "" {
		return nil, errors.NewConfigError("workbook", "no workbook configured: pass --workbook or set FLEETREC_WORKBOOK", nil)
	}

	path := a.config.Workbook
	loader := func(context.Context) (*fleet.Sources, error) {
		return workbook.Load(path)
	}

	opts := []fleetrec.Option{
		fleetrec.WithSourceLoader(loader),
		fleetrec.WithRollupOptions(rollup.Options{
			CountNoServiceAsPending: a.config.CountNoServiceAsPending,
		}),
	}
	if a.config.Store != "" {
		opts = append(opts,
			fleetrec.WithStore(a.config.Store),
			fleetrec.WithRetention(a.config.Retention),
		)
	}

	f, err := fleetrec.New(opts...)
	if err != nil {
		return nil, err
	}
	a.fleet = f
	return f, nil
}

// Latest returns the latest result, reconciling first when no
// snapshot exists yet.
func (a *App) Latest(ctx context.Context) (fleetrec.Fleetrec, error) {
	f, err := a.Fleet()
	if err != nil {
		return nil, err
	}
	if _, err := f.Latest(); err == nil {
		return f, nil
	}
	if _, err := f.Reconcile(ctx); err != nil {
		return nil, err
	}
	return f, nil
}

// ExitOnError prints the error and exits with a non-zero status.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "fleetrec: %v\n", err)
	os.Exit(1)
}
