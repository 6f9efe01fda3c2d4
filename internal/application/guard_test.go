package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "root",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestSessionGuardCheck(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	cases := []struct {
		name       string
		stored     []Session
		validator  *stubValidator
		loadErr    error
		wantReason RedirectReason
		wantCalls  int
	}{
		{
			name:       "missing token",
			stored:     []Session{{Username: "root", Role: RoleAdmin}},
			validator:  &stubValidator{valid: true},
			wantReason: ReasonMissingCredentials,
		},
		{
			name:       "missing username",
			stored:     []Session{{Token: "opaque", Role: RoleAdmin}},
			validator:  &stubValidator{valid: true},
			wantReason: ReasonMissingCredentials,
		},
		{
			name:       "nothing stored",
			validator:  &stubValidator{valid: true},
			wantReason: ReasonMissingCredentials,
		},
		{
			name:       "store unreadable",
			loadErr:    errors.New("disk on fire"),
			validator:  &stubValidator{valid: true},
			wantReason: ReasonMissingCredentials,
		},
		{
			name:       "backend rejects token",
			stored:     []Session{{Token: "opaque", Username: "root", Role: RoleAdmin}},
			validator:  &stubValidator{valid: false},
			wantReason: ReasonTokenRejected,
			wantCalls:  1,
		},
		{
			name:       "backend unreachable",
			stored:     []Session{{Token: "opaque", Username: "root", Role: RoleAdmin}},
			validator:  &stubValidator{err: errUnreachable},
			wantReason: ReasonValidationFailed,
			wantCalls:  1,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := newMemoryStore(tc.stored...)
			store.loadErr = tc.loadErr
			guard := NewSessionGuard(RoleAdmin, store, tc.validator, clock)

			_, err := guard.Check(context.Background())
			if !errors.Is(err, ErrSessionRequired) {
				t.Fatalf("expected ErrSessionRequired, got %v", err)
			}
			var rErr *RedirectError
			if !errors.As(err, &rErr) {
				t.Fatalf("expected *RedirectError, got %T", err)
			}
			if rErr.Route != EntryRoute {
				t.Fatalf("expected redirect to %q, got %q", EntryRoute, rErr.Route)
			}
			if rErr.Reason != tc.wantReason {
				t.Fatalf("expected reason %s, got %s", tc.wantReason, rErr.Reason)
			}
			if calls := tc.validator.callCount(); calls != tc.wantCalls {
				t.Fatalf("expected %d validation calls, got %d", tc.wantCalls, calls)
			}
			if store.has(RoleAdmin) {
				t.Fatalf("expected stored session to be cleared")
			}
		})
	}
}

func TestSessionGuardExpiredTokenSkipsNetwork(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)
	validator := &stubValidator{valid: true}
	store := newMemoryStore(Session{Token: signedToken(t, now.Add(-time.Minute)), Username: "root", Role: RoleAdmin})
	guard := NewSessionGuard(RoleAdmin, store, validator, func() time.Time { return now })

	_, err := guard.Check(context.Background())
	var rErr *RedirectError
	if !errors.As(err, &rErr) || rErr.Reason != ReasonTokenExpired {
		t.Fatalf("expected token_expired redirect, got %v", err)
	}
	if validator.callCount() != 0 {
		t.Fatalf("expected no validation call for an expired token")
	}
}

func TestSessionGuardAcceptsValidSession(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)
	token := signedToken(t, now.Add(time.Hour))
	validator := &stubValidator{valid: true}
	store := newMemoryStore(Session{Token: token, Username: "room1", Role: RoleMeeting})
	guard := NewSessionGuard(RoleMeeting, store, validator, func() time.Time { return now })

	session, err := guard.Check(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Token != token || session.Username != "room1" || session.Role != RoleMeeting {
		t.Fatalf("unexpected session: %+v", session)
	}
	if validator.callCount() != 1 {
		t.Fatalf("expected exactly one validation call, got %d", validator.callCount())
	}
	if !store.has(RoleMeeting) {
		t.Fatalf("expected session to stay stored")
	}
}

func TestSessionGuardWithoutValidator(t *testing.T) {
	t.Parallel()

	store := newMemoryStore(adminSession())
	guard := NewSessionGuard(RoleAdmin, store, nil, nil)

	_, err := guard.Check(context.Background())
	var rErr *RedirectError
	if !errors.As(err, &rErr) || rErr.Reason != ReasonValidationFailed {
		t.Fatalf("expected validation_failed redirect, got %v", err)
	}
}
