package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ChristianJusjong/FishLog-sub000/internal/config"
	"github.com/ChristianJusjong/FishLog-sub000/internal/contest"
	"github.com/ChristianJusjong/FishLog-sub000/internal/feed"
	"github.com/ChristianJusjong/FishLog-sub000/internal/reconcile"
	"github.com/ChristianJusjong/FishLog-sub000/internal/scoring"
	"github.com/ChristianJusjong/FishLog-sub000/internal/store"
	"github.com/ChristianJusjong/FishLog-sub000/internal/validation"
)

// app is the engine wired from configuration.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *store.Store
	workflow *validation.Workflow
	scoring  *scoring.Engine
	feed     *feed.Feed
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return config.Config{}, err
	}
	if opts.Database != "" {
		cfg.DB.Path = opts.Database
	}
	return cfg, nil
}

// newLogger builds the slog logger for cfg. Verbose forces debug level.
func newLogger(cfg config.LogConfig, verbose bool, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err != nil {
		return nil, fmt.Errorf("invalid log.level %q: %w", cfg.Level, err)
	}
	if verbose {
		level = slog.LevelDebug
	}

	hopts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts)), nil
	}
	return slog.New(slog.NewTextHandler(w, hopts)), nil
}

// openApp loads configuration, opens the store and wires the engine.
// Logs go to logw so they never mix with command output.
func openApp(opts *RootOptions, logw io.Writer) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	logger, err := newLogger(cfg.Log, opts.Verbose, logw)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to configure logging", err)
	}

	logger.Debug("opening database", "path", cfg.DB.Path)
	st, err := store.Open(cfg.DB.Path, store.WithLogger(logger))
	if err != nil {
		return nil, contest.NewStoreUnavailable("open database", err)
	}

	rec := reconcile.New(reconcile.Thresholds{
		DistanceMeters: cfg.Reconcile.DistanceThresholdM,
		Time:           cfg.Reconcile.TimeThreshold,
	})

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		workflow: validation.New(st, validation.WithLogger(logger), validation.WithReconciler(rec)),
		scoring:  scoring.New(st, scoring.WithSize(cfg.Leaderboard.Size), scoring.WithLogger(logger)),
		feed: feed.New(st,
			feed.WithWindow(cfg.Feed.DefaultWindow),
			feed.WithLimit(cfg.Feed.Limit),
			feed.WithLogger(logger)),
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("error closing database", "error", err)
	}
}
