package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/example/roombook-console/internal/application"
	"github.com/example/roombook-console/internal/availability"
	"github.com/example/roombook-console/internal/backend"
	"github.com/example/roombook-console/internal/config"
	"github.com/example/roombook-console/internal/logging"
	"github.com/example/roombook-console/internal/persistence/sqlite"
	"github.com/example/roombook-console/internal/persistence/sqlite/migration"
)

// environment is what roomctl takes from the process.
type environment struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func() (config.Config, error)
	now        func() time.Time
	location   *time.Location
}

// app holds the dependencies of one roomctl invocation. They are opened on
// first use so that help and usage errors never touch the state file.
type app struct {
	env     environment
	output  string
	verbose bool

	cfg     config.Config
	logger  *slog.Logger
	storage *sqlite.Storage
	store   *sqlite.Store
	client  *backend.Client
	notices *application.NoticeBoard
}

func newApp(env environment) *app {
	if env.stdout == nil {
		env.stdout = io.Discard
	}
	if env.stderr == nil {
		env.stderr = io.Discard
	}
	if env.loadConfig == nil {
		env.loadConfig = func() (config.Config, error) { return config.Load(config.RequireLocalState) }
	}
	if env.now == nil {
		env.now = time.Now
	}
	if env.location == nil {
		env.location = time.Local
	}
	return &app{env: env, output: formatTable, notices: &application.NoticeBoard{}}
}

// open loads configuration, the state database, and the backend client.
func (a *app) open(ctx context.Context) error {
	if a.store != nil {
		return nil
	}
	cfg, err := a.env.loadConfig()
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if a.verbose {
		level = slog.LevelDebug
	}
	logger := logging.New(a.env.stderr, level)

	storage, err := sqlite.Open(ctx, migration.DefaultSQLiteConfig(cfg.StateDSN), a.env.now, logger)
	if err != nil {
		return fmt.Errorf("open state database: %w", err)
	}
	if err := storage.Migrate(ctx); err != nil {
		_ = storage.Close()
		return err
	}
	sealer, err := sqlite.NewTokenSealer(cfg.StateSecret)
	if err != nil {
		_ = storage.Close()
		return fmt.Errorf("state secret: %w", err)
	}
	client, err := backend.New(cfg.BackendURL, backend.Options{Timeout: cfg.RequestTimeout, Logger: logger})
	if err != nil {
		_ = storage.Close()
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.storage = storage
	a.store = sqlite.NewStoreFromStorage(storage, sealer, logger)
	a.client = client
	return nil
}

func (a *app) close() {
	if a.storage == nil {
		return
	}
	if err := a.storage.Close(); err != nil && a.logger != nil {
		a.logger.Warn("failed to close state database", "error", err)
	}
	a.storage = nil
}

func (a *app) guard(role application.Role) *application.SessionGuard {
	return application.NewSessionGuardWithLogger(role, a.store, a.client, a.env.now, a.logger)
}

func (a *app) screenOptions(state sqlite.ScreenState) application.ScreenOptions {
	return application.ScreenOptions{
		DefaultPageSize: a.cfg.DefaultPageSize,
		InitialPageSize: state.PageSize,
		Notifier:        a.notices,
		Logger:          a.logger,
	}
}

func (a *app) dashboard() *application.ScheduleDashboard {
	return application.NewScheduleDashboard(a.guard(application.RoleMeeting), a.client, application.ScheduleOptions{
		Engine:   availability.NewEngine(a.env.location),
		Now:      a.env.now,
		Notifier: a.notices,
		Logger:   a.logger,
	})
}

func (a *app) render(value any, tbl func() table) error {
	return render(a.env.stdout, a.output, value, tbl)
}

// flushNotices prints what the command produced so far.
func (a *app) flushNotices() {
	printNotices(a.env.stderr, a.notices.Drain())
}

// describe turns a command failure into the line printed to the operator.
func describe(err error) string {
	var rErr *application.RedirectError
	if errors.As(err, &rErr) {
		if rErr.Err != nil {
			return fmt.Sprintf("session check failed (%s): %v; run 'roomctl login'", rErr.Reason, rErr.Err)
		}
		return fmt.Sprintf("no valid session (%s); run 'roomctl login'", rErr.Reason)
	}
	return err.Error()
}
