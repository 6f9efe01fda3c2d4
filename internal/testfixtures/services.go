package testfixtures

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/roombook-console/internal/application"
	"github.com/example/roombook-console/internal/availability"
	"github.com/example/roombook-console/internal/backend"
)

// tokenSigningKey signs tokens minted for tests. The console never verifies
// signatures, the backend does.
var tokenSigningKey = []byte("roombook-console-test-key")

// MintToken returns an HS256 JWT for username that expires at exp.
func MintToken(username string, role application.Role, exp time.Time) string {
	claims := jwt.MapClaims{
		"sub":  username,
		"role": string(role),
		"exp":  exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tokenSigningKey)
	if err != nil {
		panic("testfixtures: sign token: " + err.Error())
	}
	return signed
}

// MemorySessionStore is an application.SessionStore kept in memory.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[application.Role]application.Session
	cleared  map[application.Role]int
}

// NewMemorySessionStore returns a store seeded with sessions.
func NewMemorySessionStore(sessions ...application.Session) *MemorySessionStore {
	s := &MemorySessionStore{
		sessions: make(map[application.Role]application.Session),
		cleared:  make(map[application.Role]int),
	}
	for _, session := range sessions {
		s.sessions[session.Role] = session
	}
	return s
}

// LoadSession implements application.SessionStore.
func (s *MemorySessionStore) LoadSession(_ context.Context, role application.Role) (application.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[role]
	if !ok {
		return application.Session{Role: role}, nil
	}
	return session, nil
}

// SaveSession implements application.SessionStore.
func (s *MemorySessionStore) SaveSession(_ context.Context, session application.Session) error {
	if !session.Complete() {
		return errors.New("incomplete session")
	}
	s.mu.Lock()
	s.sessions[session.Role] = session
	s.mu.Unlock()
	return nil
}

// ClearSession implements application.SessionStore.
func (s *MemorySessionStore) ClearSession(_ context.Context, role application.Role) error {
	s.mu.Lock()
	delete(s.sessions, role)
	s.cleared[role]++
	s.mu.Unlock()
	return nil
}

// Has reports whether a session is stored for role.
func (s *MemorySessionStore) Has(role application.Role) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[role]
	return ok
}

// Cleared reports how many times role's session was destroyed.
func (s *MemorySessionStore) Cleared(role application.Role) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleared[role]
}

// ServiceFactory wires console components against a FakeBackend with
// deterministic clocks and request ids.
type ServiceFactory struct {
	Clock      *Clock
	RequestIDs *IDGenerator
	Backend    *FakeBackend
	Sessions   *MemorySessionStore
	Notices    *application.NoticeBoard
	Logger     *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithLogger overrides the discard logger.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

// NewServiceFactory starts a FakeBackend and returns a factory around it.
func NewServiceFactory(tb testing.TB, opts ...ServiceFactoryOption) *ServiceFactory {
	tb.Helper()
	factory := &ServiceFactory{
		Clock:      NewClock(time.Time{}),
		RequestIDs: NewIDGenerator("req"),
		Backend:    NewFakeBackend(tb),
		Sessions:   NewMemorySessionStore(),
		Notices:    &application.NoticeBoard{},
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(factory)
	}
	return factory
}

// Client returns a backend client pointed at the FakeBackend.
func (f *ServiceFactory) Client(tb testing.TB) *backend.Client {
	tb.Helper()
	client, err := backend.New(f.Backend.URL(), backend.Options{
		Logger:    f.Logger,
		RequestID: f.RequestIDs.NextFunc(),
	})
	if err != nil {
		tb.Fatalf("backend.New: %v", err)
	}
	return client
}

// SignIn mints a token valid for an hour, registers it with the backend, and
// stores the session.
func (f *ServiceFactory) SignIn(tb testing.TB, role application.Role, username string) application.Session {
	tb.Helper()
	session := application.Session{
		Token:    MintToken(username, role, f.Clock.Now().Add(time.Hour)),
		Username: username,
		Role:     role,
	}
	f.Backend.AcceptToken(role, session.Token)
	if err := f.Sessions.SaveSession(context.Background(), session); err != nil {
		tb.Fatalf("SaveSession: %v", err)
	}
	return session
}

// Guard returns a session guard for role backed by the factory's store.
func (f *ServiceFactory) Guard(tb testing.TB, role application.Role) *application.SessionGuard {
	tb.Helper()
	return application.NewSessionGuardWithLogger(role, f.Sessions, f.Client(tb), f.Clock.NowFunc(), f.Logger)
}

// MeetingScreen wires the meetings screen.
func (f *ServiceFactory) MeetingScreen(tb testing.TB) *application.MeetingScreen {
	tb.Helper()
	client := f.Client(tb)
	return application.NewMeetingScreen(f.Guard(tb, application.RoleAdmin), client, client, application.ScreenOptions{
		Notifier: f.Notices,
		Logger:   f.Logger,
	})
}

// UserScreen wires the users screen.
func (f *ServiceFactory) UserScreen(tb testing.TB) *application.UserScreen {
	tb.Helper()
	client := f.Client(tb)
	return application.NewUserScreen(f.Guard(tb, application.RoleAdmin), client, client, application.ScreenOptions{
		Notifier: f.Notices,
		Logger:   f.Logger,
	})
}

// ScheduleDashboard wires the meeting account dashboard with an engine in UTC.
func (f *ServiceFactory) ScheduleDashboard(tb testing.TB) *application.ScheduleDashboard {
	tb.Helper()
	return application.NewScheduleDashboard(f.Guard(tb, application.RoleMeeting), f.Client(tb), application.ScheduleOptions{
		Engine:   availability.NewEngine(time.UTC),
		Now:      f.Clock.NowFunc(),
		Notifier: f.Notices,
		Logger:   f.Logger,
	})
}
