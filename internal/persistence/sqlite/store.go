package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/example/roombook-console/internal/application"
	"github.com/example/roombook-console/internal/persistence"
)

// Preference names kept per screen scope.
const (
	prefPageSize       = "page_size"
	prefFilterCategory = "filter_category"
	prefFilterText     = "filter_text"
)

// ScreenState is what a screen remembers between roomctl invocations.
type ScreenState struct {
	PageSize int
	Filter   application.Filter
}

// Filtered reports whether a search filter is remembered.
func (s ScreenState) Filtered() bool {
	return strings.TrimSpace(s.Filter.Text) != ""
}

// Store is the CLI's local storage: sealed session credentials plus
// remembered screen settings. It implements application.SessionStore.
type Store struct {
	sessions persistence.SessionRepository
	prefs    persistence.PreferenceRepository
	sealer   *TokenSealer
	retry    *RetryHelper
	logger   *slog.Logger
}

var _ application.SessionStore = (*Store)(nil)

// NewStore wires a store over repositories. A nil retry helper uses
// DefaultRetryConfig.
func NewStore(sessions persistence.SessionRepository, prefs persistence.PreferenceRepository, sealer *TokenSealer, retry *RetryHelper, logger *slog.Logger) *Store {
	if retry == nil {
		retry = NewRetryHelper(DefaultRetryConfig())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sessions: sessions,
		prefs:    prefs,
		sealer:   sealer,
		retry:    retry,
		logger:   logger.With("component", "sqlite.Store"),
	}
}

// NewStoreFromStorage wires a store over an opened Storage.
func NewStoreFromStorage(storage *Storage, sealer *TokenSealer, logger *slog.Logger) *Store {
	return NewStore(storage.SessionRepository, storage.PreferenceRepository, sealer, nil, logger)
}

// LoadSession returns the stored credential of role. A missing record is an
// empty Session and nil error; a token that cannot be unsealed is an error.
func (s *Store) LoadSession(ctx context.Context, role application.Role) (application.Session, error) {
	record, err := s.sessions.GetSession(ctx, string(role))
	if errors.Is(err, persistence.ErrNotFound) {
		return application.Session{Role: role}, nil
	}
	if err != nil {
		return application.Session{}, fmt.Errorf("load %s session: %w", role, err)
	}
	token, err := s.sealer.Open(record.Role, record.SealedToken)
	if err != nil {
		s.logger.WarnContext(ctx, "stored token cannot be unsealed", "operation", "LoadSession", "role", role, "error", err)
		return application.Session{}, fmt.Errorf("load %s session: %w", role, err)
	}
	return application.Session{Token: token, Username: record.Username, Role: role}, nil
}

// SaveSession seals and stores session, replacing any previous credential of
// the same role.
func (s *Store) SaveSession(ctx context.Context, session application.Session) error {
	if !session.Complete() {
		return fmt.Errorf("save %s session: %w", session.Role, persistence.ErrConstraintViolation)
	}
	sealed, err := s.sealer.Seal(string(session.Role), session.Token)
	if err != nil {
		return fmt.Errorf("save %s session: %w", session.Role, err)
	}
	record := persistence.SessionRecord{
		Role:        string(session.Role),
		Username:    strings.TrimSpace(session.Username),
		SealedToken: sealed,
	}
	if err := s.retry.WithRetry(ctx, func() error { return s.sessions.UpsertSession(ctx, record) }); err != nil {
		return fmt.Errorf("save %s session: %w", session.Role, err)
	}
	s.logger.InfoContext(ctx, "session stored", "operation", "SaveSession", "role", session.Role, "username", record.Username)
	return nil
}

// ClearSession destroys the stored credential of role.
func (s *Store) ClearSession(ctx context.Context, role application.Role) error {
	if err := s.retry.WithRetry(ctx, func() error { return s.sessions.DeleteSession(ctx, string(role)) }); err != nil {
		return fmt.Errorf("clear %s session: %w", role, err)
	}
	return nil
}

// ScreenState returns the remembered settings of screen. Unset values are zero.
func (s *Store) ScreenState(ctx context.Context, screen string) (ScreenState, error) {
	prefs, err := s.prefs.ListPreferences(ctx, screen)
	if err != nil {
		return ScreenState{}, fmt.Errorf("load %s preferences: %w", screen, err)
	}
	var state ScreenState
	for _, pref := range prefs {
		switch pref.Name {
		case prefPageSize:
			size, err := strconv.Atoi(pref.Value)
			if err != nil || size <= 0 {
				s.logger.WarnContext(ctx, "ignoring invalid stored page size", "operation", "ScreenState", "screen", screen, "value", pref.Value)
				continue
			}
			state.PageSize = size
		case prefFilterCategory:
			state.Filter.Category = pref.Value
		case prefFilterText:
			state.Filter.Text = pref.Value
		}
	}
	return state, nil
}

// SavePageSize remembers the page size chosen on screen.
func (s *Store) SavePageSize(ctx context.Context, screen string, size int) error {
	if size <= 0 {
		return fmt.Errorf("save %s page size: %w", screen, persistence.ErrConstraintViolation)
	}
	return s.set(ctx, screen, prefPageSize, strconv.Itoa(size))
}

// SaveFilter remembers the last search of screen.
func (s *Store) SaveFilter(ctx context.Context, screen string, filter application.Filter) error {
	if err := s.set(ctx, screen, prefFilterCategory, filter.Category); err != nil {
		return err
	}
	return s.set(ctx, screen, prefFilterText, filter.Text)
}

// ForgetScreen drops every remembered setting of screen.
func (s *Store) ForgetScreen(ctx context.Context, screen string) error {
	if err := s.retry.WithRetry(ctx, func() error { return s.prefs.DeletePreferences(ctx, screen) }); err != nil {
		return fmt.Errorf("forget %s preferences: %w", screen, err)
	}
	return nil
}

func (s *Store) set(ctx context.Context, screen, name, value string) error {
	pref := persistence.Preference{Scope: screen, Name: name, Value: value}
	if err := s.retry.WithRetry(ctx, func() error { return s.prefs.SetPreference(ctx, pref) }); err != nil {
		return fmt.Errorf("save %s %s: %w", screen, name, err)
	}
	return nil
}
