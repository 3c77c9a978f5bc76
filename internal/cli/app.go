package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakemonkey/sakemonkey/internal/config"
	"github.com/sakemonkey/sakemonkey/internal/formula"
	"github.com/sakemonkey/sakemonkey/internal/store"
	"github.com/sakemonkey/sakemonkey/internal/tracker"
)

// app is what a database-backed command works with.
type app struct {
	cfg    *config.Config
	store  *store.Store
	svc    *tracker.Service
	eval   *formula.Evaluator
	logger *slog.Logger
	out    *OutputFormatter
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// loadConfig reads the config file and applies flag overrides.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, commandError(ErrCodeConfig, err)
	}
	if o.Database != "" {
		cfg.Database = o.Database
	}
	return cfg, nil
}

// newLogger writes text logs to stderr: debug with --verbose, otherwise at
// the configured level.
func (o *RootOptions) newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	if o.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// evaluator builds the formula evaluator without opening the database.
func (o *RootOptions) evaluator(cmd *cobra.Command) (*formula.Evaluator, *config.Config, *slog.Logger, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	eval, err := cfg.Evaluator()
	if err != nil {
		return nil, nil, nil, commandError(ErrCodeConfig, err)
	}
	return eval, cfg, o.newLogger(cmd, cfg), nil
}

// openApp loads config, opens the database and wires the tracker.
// Callers must call close.
func (o *RootOptions) openApp(cmd *cobra.Command) (*app, error) {
	eval, cfg, logger, err := o.evaluator(cmd)
	if err != nil {
		return nil, err
	}

	logger.Debug("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, commandError(ErrCodeDatabase, err)
	}

	trackerOpts := []tracker.Option{
		tracker.WithEvaluator(eval),
		tracker.WithTargets(cfg.Dilution.Targets),
		tracker.WithLogger(logger),
	}
	if o.IDs != nil {
		trackerOpts = append(trackerOpts, tracker.WithIDGenerator(o.IDs))
	}
	if o.Clock != nil {
		trackerOpts = append(trackerOpts, tracker.WithClock(o.Clock))
	}

	return &app{
		cfg:    cfg,
		store:  st,
		svc:    tracker.New(st, trackerOpts...),
		eval:   eval,
		logger: logger,
		out:    o.formatter(cmd),
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("error closing database", "error", err)
	}
}
