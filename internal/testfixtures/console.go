package testfixtures

import (
	"net/http"
	"testing"
	"time"

	"github.com/example/roombook-console/internal/application"
	"github.com/example/roombook-console/internal/availability"
	consolehttp "github.com/example/roombook-console/internal/http"
)

// ConsoleOption configures the console built by ServiceFactory.Console.
type ConsoleOption func(*consolehttp.WorkspaceConfig)

// WithMaxWorkspaces bounds the console's workspace registry.
func WithMaxWorkspaces(n int) ConsoleOption {
	return func(cfg *consolehttp.WorkspaceConfig) { cfg.MaxWorkspaces = n }
}

// Console is the console HTTP surface wired against a FakeBackend.
type Console struct {
	Handler    http.Handler
	Workspaces *consolehttp.Workspaces
}

// Console wires the console router, session middleware, and workspace
// registry the way cmd/console does, with the factory's clock and logger.
func (f *ServiceFactory) Console(tb testing.TB, opts ...ConsoleOption) Console {
	tb.Helper()
	client := f.Client(tb)
	now := f.Clock.NowFunc()

	cfg := consolehttp.WorkspaceConfig{
		Admin:     client,
		Meetings:  client,
		Users:     client,
		Schedule:  client,
		Validator: client,
		Engine:    availability.NewEngine(time.UTC),
		Now:       now,
		Logger:    f.Logger,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	workspaces := consolehttp.NewWorkspaces(cfg)

	handler := consolehttp.NewRouter(consolehttp.RouterConfig{
		Meetings:       consolehttp.NewMeetingHandler(workspaces, f.Logger),
		Users:          consolehttp.NewUserHandler(workspaces, f.Logger),
		Schedule:       consolehttp.NewScheduleHandler(workspaces, f.Logger),
		Session:        consolehttp.NewSessionHandler(workspaces, client, f.Logger),
		AdminSession:   consolehttp.RequireSession(application.RoleAdmin, client, now, f.Logger),
		MeetingSession: consolehttp.RequireSession(application.RoleMeeting, client, now, f.Logger),
		Middleware:     []func(http.Handler) http.Handler{consolehttp.RequestLogger(f.Logger)},
	})
	return Console{Handler: handler, Workspaces: workspaces}
}
