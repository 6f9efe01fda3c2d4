package http

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/example/roombook-console/internal/application"
	"github.com/example/roombook-console/internal/availability"
)

// DefaultMaxWorkspaces bounds the registry when WorkspaceConfig leaves it unset.
const DefaultMaxWorkspaces = 256

// Screen keys used by Workspace.mount.
const (
	screenMeetings = "meetings"
	screenUsers    = "users"
	screenSchedule = "schedule"
)

// WorkspaceConfig wires the screens every Workspace owns.
type WorkspaceConfig struct {
	Admin     application.AdminAPI
	Meetings  application.MeetingAPI
	Users     application.UserAPI
	Schedule  application.ScheduleAPI
	// Validator is consulted every time a screen mounts, so it should not
	// answer from a cache.
	Validator application.TokenValidator
	Engine    *availability.Engine
	Now       func() time.Time
	// DefaultPageSize is restored by reset. Zero means application.DefaultPageSize.
	DefaultPageSize int
	// MaxWorkspaces evicts the least recently used workspace beyond this count.
	MaxWorkspaces int
	Logger        *slog.Logger
}

// Workspace is the screen state of one signed in browser session.
type Workspace struct {
	Meetings *application.MeetingScreen
	Users    *application.UserScreen
	Schedule *application.ScheduleDashboard

	mu       sync.Mutex
	mounted  map[string]bool
	lastSeen time.Time
}

// mount runs fn the first time the screen named key is visited and reports
// whether it did. A failed mount is retried on the next visit.
func (w *Workspace) mount(ctx context.Context, key string, fn func(context.Context) error) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.mounted[key] {
		return false, nil
	}
	if err := fn(ctx); err != nil {
		return true, err
	}
	w.mounted[key] = true
	return true, nil
}

// Workspaces keeps one Workspace per token.
type Workspaces struct {
	cfg    WorkspaceConfig
	guards map[application.Role]*application.SessionGuard
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]*Workspace
}

// NewWorkspaces builds an empty registry.
func NewWorkspaces(cfg WorkspaceConfig) *Workspaces {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.MaxWorkspaces <= 0 {
		cfg.MaxWorkspaces = DefaultMaxWorkspaces
	}
	logger := defaultLogger(cfg.Logger)
	guards := make(map[application.Role]*application.SessionGuard, 2)
	for _, role := range []application.Role{application.RoleAdmin, application.RoleMeeting} {
		guards[role] = application.NewSessionGuardWithLogger(role, requestSessionStore{}, cfg.Validator, cfg.Now, logger)
	}
	return &Workspaces{
		cfg:     cfg,
		guards:  guards,
		logger:  logger,
		entries: make(map[string]*Workspace),
	}
}

// Get returns the workspace for token, creating it on first use.
func (ws *Workspaces) Get(token string) *Workspace {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	now := ws.cfg.Now()
	if w, ok := ws.entries[token]; ok {
		w.lastSeen = now
		return w
	}

	w := ws.newWorkspace()
	w.lastSeen = now
	ws.entries[token] = w
	ws.evictLocked(token)
	return w
}

// Forget drops the workspace for token.
func (ws *Workspaces) Forget(token string) {
	ws.mu.Lock()
	delete(ws.entries, token)
	ws.mu.Unlock()
}

// Len reports how many workspaces are held.
func (ws *Workspaces) Len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.entries)
}

func (ws *Workspaces) guard(role application.Role) *application.SessionGuard {
	return ws.guards[role]
}

func (ws *Workspaces) newWorkspace() *Workspace {
	screenOpts := application.ScreenOptions{
		DefaultPageSize: ws.cfg.DefaultPageSize,
		Logger:          ws.logger,
	}
	admin := ws.guards[application.RoleAdmin]
	return &Workspace{
		Meetings: application.NewMeetingScreen(admin, ws.cfg.Admin, ws.cfg.Meetings, screenOpts),
		Users:    application.NewUserScreen(admin, ws.cfg.Admin, ws.cfg.Users, screenOpts),
		Schedule: application.NewScheduleDashboard(ws.guards[application.RoleMeeting], ws.cfg.Schedule, application.ScheduleOptions{
			Engine: ws.cfg.Engine,
			Now:    ws.cfg.Now,
			Logger: ws.logger,
		}),
		mounted: make(map[string]bool, 3),
	}
}

func (ws *Workspaces) evictLocked(keep string) {
	for len(ws.entries) > ws.cfg.MaxWorkspaces {
		var (
			oldestToken string
			oldest      time.Time
			found       bool
		)
		for token, w := range ws.entries {
			if token == keep {
				continue
			}
			if !found || w.lastSeen.Before(oldest) {
				oldestToken, oldest, found = token, w.lastSeen, true
			}
		}
		if !found {
			return
		}
		delete(ws.entries, oldestToken)
		ws.logger.Debug("workspace evicted", "component", "http.Workspaces", "remaining", len(ws.entries))
	}
}
