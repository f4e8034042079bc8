package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/jtrack/internal/api"
	"github.com/jonathan/jtrack/internal/config"
	"github.com/jonathan/jtrack/internal/gateway"
	"github.com/jonathan/jtrack/internal/observability"
	"github.com/jonathan/jtrack/internal/resume"
	"github.com/jonathan/jtrack/internal/session"
	"github.com/jonathan/jtrack/internal/shell"
	"github.com/jonathan/jtrack/internal/types"
)

// errNotLoggedIn is returned by commands that need a session when there is none.
var errNotLoggedIn = errors.New("not logged in, run 'jtrack login' first")

// app holds everything one command invocation needs.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	storage  session.Storage
	store    *session.Store
	registry *prometheus.Registry
	api      *api.Client
	shell    *shell.Shell
	resume   *resume.Manager
	printer  *observability.Printer
	closers  []func() error
}

// newApp loads the configuration and wires storage, gateway, and the shell.
func newApp(cmd *cobra.Command) (*app, error) {
	loaded, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	flagged := config.Config{
		APIURL:      apiURL,
		Storage:     storageKind,
		StoragePath: storagePath,
		LogLevel:    logLevel,
	}
	cfg := flagged.MergeWithDefaults(*loaded)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:      &cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		printer:  observability.NewPrinter(cmd.OutOrStdout()),
	}

	if err := a.openStorage(cmd.Context()); err != nil {
		_ = logger.Sync()
		return nil, err
	}
	a.store = session.NewStore(a.storage, logger.Named("session"))

	gw := gateway.New(gateway.Options{
		BaseURL:    cfg.APIURL,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		Session:    a.store,
		Logger:     logger.Named("gateway"),
		Metrics:    gateway.NewMetrics(a.registry),
	})
	a.api = api.New(gw)
	a.shell = shell.New(a.api, a.store, logger.Named("shell"))
	a.resume = resume.NewManager(a.api, logger.Named("resume"))
	return a, nil
}

func (a *app) openStorage(ctx context.Context) error {
	switch a.cfg.Storage {
	case config.StorageMemory:
		a.storage = session.NewMemoryStorage()
	case config.StorageRedis:
		rs := session.NewRedisStorage(session.RedisOptions{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
			Prefix:   a.cfg.RedisPrefix,
		})
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return err
		}
		a.storage = rs
		a.closers = append(a.closers, rs.Close)
	default:
		path := a.cfg.StoragePath
		if path == "" {
			p, err := session.DefaultFilePath()
			if err != nil {
				return err
			}
			path = p
		}
		fs, err := session.NewFileStorage(path)
		if err != nil {
			return err
		}
		a.storage = fs
	}
	return nil
}

// close writes the metrics file when asked for and releases storage.
func (a *app) close() {
	if metricsFile != "" {
		if err := prometheus.WriteToTextfile(metricsFile, a.registry); err != nil {
			a.logger.Warn("failed to write metrics file", zap.String("path", metricsFile), zap.Error(err))
		}
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("failed to close storage", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// open restores the session and switches to page. It fails when there is no
// session to restore.
func (a *app) open(ctx context.Context, page shell.Page) (*types.Profile, error) {
	state, err := a.shell.Bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	if state.Page == shell.PageLogin {
		return nil, errNotLoggedIn
	}
	state, err = a.shell.Navigate(ctx, page)
	if err != nil {
		return nil, err
	}
	if state.Page == shell.PageLogin || state.Profile == nil {
		return nil, errNotLoggedIn
	}
	return state.Profile, nil
}

// withApp builds the app, runs fn, and releases the app.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(cmd)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer a.close()
	return fn(cmd.Context(), a)
}
