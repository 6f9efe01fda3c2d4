package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/roombook-console/internal/application"
	"github.com/example/roombook-console/internal/availability"
	"github.com/example/roombook-console/internal/backend"
	"github.com/example/roombook-console/internal/config"
	httptransport "github.com/example/roombook-console/internal/http"
	"github.com/example/roombook-console/internal/logging"
)

const (
	validationTTL     = 30 * time.Second
	validationEntries = 1024
	shutdownTimeout   = 10 * time.Second
)

func main() {
	cfg, err := config.Load(config.RequireBackend)
	if err != nil {
		logging.New(os.Stderr, slog.LevelInfo).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, err := newHandler(cfg, logger, time.Now)
	if err != nil {
		logger.Error("failed to build console", "error", err)
		os.Exit(1)
	}
	server := newServer(cfg, handler)

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		logger.Error("failed to listen", "addr", server.Addr, "error", err)
		os.Exit(1)
	}
	if err := serve(ctx, server, ln, logger); err != nil {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// newHandler wires the backend client, the workspace registry, and the
// console routes.
func newHandler(cfg config.Config, logger *slog.Logger, now func() time.Time) (http.Handler, error) {
	client, err := backend.New(cfg.BackendURL, backend.Options{
		Timeout: cfg.RequestTimeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}
	validator := application.NewCachingValidator(client, validationTTL, validationEntries, now)

	workspaces := httptransport.NewWorkspaces(httptransport.WorkspaceConfig{
		Admin:           client,
		Meetings:        client,
		Users:           client,
		Schedule:        client,
		Validator:       client,
		Engine:          availability.NewEngine(time.Local),
		Now:             now,
		DefaultPageSize: cfg.DefaultPageSize,
		Logger:          logger,
	})

	return httptransport.NewRouter(httptransport.RouterConfig{
		Meetings:       httptransport.NewMeetingHandler(workspaces, logger),
		Users:          httptransport.NewUserHandler(workspaces, logger),
		Schedule:       httptransport.NewScheduleHandler(workspaces, logger),
		Session:        httptransport.NewSessionHandler(workspaces, validator, logger),
		AdminSession:   httptransport.RequireSession(application.RoleAdmin, validator, now, logger),
		MeetingSession: httptransport.RequireSession(application.RoleMeeting, validator, now, logger),
		Middleware:     []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	}), nil
}

func newServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// serve blocks until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, server *http.Server, ln net.Listener, logger *slog.Logger) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("console listening", "addr", ln.Addr().String())
	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	logger.Info("console stopped")
	return nil
}
