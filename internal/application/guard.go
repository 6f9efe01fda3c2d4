package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionStore holds the credential of the signed in principal per role.
type SessionStore interface {
	// LoadSession returns the stored session. A missing session is reported as
	// an empty Session and a nil error.
	LoadSession(ctx context.Context, role Role) (Session, error)
	SaveSession(ctx context.Context, session Session) error
	ClearSession(ctx context.Context, role Role) error
}

// TokenValidator asks the backend whether a token is still accepted.
type TokenValidator interface {
	ValidateToken(ctx context.Context, role Role, token string) (bool, error)
}

// SessionGuard gates every screen: it reads the stored credential, asks the
// backend to validate it, and reports a redirect when either step fails.
type SessionGuard struct {
	role      Role
	store     SessionStore
	validator TokenValidator
	now       func() time.Time
	logger    *slog.Logger
}

// NewSessionGuard wires a guard for the given role.
func NewSessionGuard(role Role, store SessionStore, validator TokenValidator, now func() time.Time) *SessionGuard {
	return NewSessionGuardWithLogger(role, store, validator, now, nil)
}

// NewSessionGuardWithLogger wires a guard that emits structured logs.
func NewSessionGuardWithLogger(role Role, store SessionStore, validator TokenValidator, now func() time.Time, logger *slog.Logger) *SessionGuard {
	if now == nil {
		now = time.Now
	}
	return &SessionGuard{
		role:      role,
		store:     store,
		validator: validator,
		now:       now,
		logger:    defaultLogger(logger),
	}
}

// Role reports the role this guard protects.
func (g *SessionGuard) Role() Role {
	if g == nil {
		return ""
	}
	return g.role
}

func (g *SessionGuard) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return componentLogger(ctx, g.logger, "SessionGuard", operation, attrs...)
}

// Check returns the stored session when the backend still accepts it.
//
// Missing credentials and locally expired tokens are rejected without a
// network call. Every failure clears the stored session and is reported as a
// *RedirectError. There is no retry.
func (g *SessionGuard) Check(ctx context.Context) (Session, error) {
	if g == nil {
		return Session{}, fmt.Errorf("SessionGuard is nil")
	}
	logger := g.log(ctx, "Check", "role", g.role)

	var session Session
	if g.store != nil {
		loaded, err := g.store.LoadSession(ctx, g.role)
		if err != nil {
			logger.WarnContext(ctx, "stored session unreadable", "error", err)
			return Session{}, g.reject(ctx, logger, redirect(ReasonMissingCredentials, err))
		}
		session = loaded
	}
	session.Role = g.role

	if !session.Complete() {
		return Session{}, g.reject(ctx, logger, redirect(ReasonMissingCredentials, nil))
	}

	if expired, exp := tokenExpired(session.Token, g.now()); expired {
		logger.InfoContext(ctx, "token expired locally", "expired_at", exp)
		return Session{}, g.reject(ctx, logger, redirect(ReasonTokenExpired, nil))
	}

	if g.validator == nil {
		return Session{}, g.reject(ctx, logger, redirect(ReasonValidationFailed, errors.New("no token validator configured")))
	}

	valid, err := g.validator.ValidateToken(ctx, g.role, session.Token)
	if err != nil {
		logger.ErrorContext(ctx, "token validation failed", "error", err, "error_kind", ErrorKind(err))
		return Session{}, g.reject(ctx, logger, redirect(ReasonValidationFailed, err))
	}
	if !valid {
		return Session{}, g.reject(ctx, logger, redirect(ReasonTokenRejected, nil))
	}

	logger.DebugContext(ctx, "session validated", "username", session.Username)
	return session, nil
}

func (g *SessionGuard) reject(ctx context.Context, logger *slog.Logger, rErr *RedirectError) error {
	if g.store != nil {
		if err := g.store.ClearSession(ctx, g.role); err != nil {
			logger.WarnContext(ctx, "failed to clear stored session", "error", err)
		}
	}
	logger.InfoContext(ctx, "redirecting to entry route", "reason", rErr.Reason, "route", rErr.Route)
	return rErr
}

// tokenExpired inspects a JWT's exp claim without verifying the signature.
// Opaque tokens and tokens without exp are never treated as expired here.
func tokenExpired(token string, now time.Time) (bool, time.Time) {
	if strings.Count(token, ".") != 2 {
		return false, time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false, time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false, time.Time{}
	}
	return !now.Before(exp.Time), exp.Time
}
