package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/roombook-console/internal/application"
	"github.com/example/roombook-console/internal/logging"
)

// RequestIDHeader is echoed back on every response.
const RequestIDHeader = "X-Request-ID"

// RequireSession runs the session guard for role in front of next. The
// validated session is available to next through SessionFromContext.
func RequireSession(role application.Role, validator application.TokenValidator, now func() time.Time, logger *slog.Logger) func(http.Handler) http.Handler {
	base := defaultLogger(logger)
	responder := newResponder(base)
	guard := application.NewSessionGuardWithLogger(role, requestSessionStore{}, validator, now, base)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := contextWithCredentials(r.Context(), readCredentials(r, role))

			session, err := guard.Check(ctx)
			if err != nil {
				responder.handleScreenError(ctx, w, r, role, err)
				return
			}

			ctx = ContextWithSession(ctx, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger attaches a request scoped logger and a notice board to the
// context. Incoming X-Request-ID values are kept; otherwise a uuid is issued.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	base = defaultLogger(base)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := logging.ContextWithLogger(r.Context(), logger)
			ctx = contextWithNotices(ctx, &application.NoticeBoard{})
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			logger.DebugContext(ctx, "request started")
			next.ServeHTTP(recorder, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "status", recorder.status, "duration", time.Since(start))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// readCredentials prefers the Authorization and X-Console-Username headers
// and falls back to the cookies the booking frontend sets.
func readCredentials(r *http.Request, role application.Role) credentials {
	var creds credentials
	if auth := strings.TrimSpace(r.Header.Get("Authorization")); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			creds.Token = strings.TrimSpace(token)
		}
	}
	if creds.Token == "" {
		if cookie, err := r.Cookie(TokenCookie); err == nil {
			creds.Token = cookie.Value
		}
	}

	creds.Username = strings.TrimSpace(r.Header.Get(UsernameHeader))
	if creds.Username == "" {
		if cookie, err := r.Cookie(role.UsernameKey()); err == nil {
			creds.Username = cookie.Value
		}
	}
	return creds
}

func setCookies(w http.ResponseWriter, session application.Session) {
	http.SetCookie(w, consoleCookie(TokenCookie, session.Token, 0))
	http.SetCookie(w, consoleCookie(session.Role.UsernameKey(), session.Username, 0))
}

func expireCookies(w http.ResponseWriter, role application.Role) {
	http.SetCookie(w, consoleCookie(TokenCookie, "", -1))
	http.SetCookie(w, consoleCookie(role.UsernameKey(), "", -1))
}

func consoleCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{Name: name, Value: value, Path: "/", MaxAge: maxAge, HttpOnly: true, SameSite: http.SameSiteLaxMode}
}
