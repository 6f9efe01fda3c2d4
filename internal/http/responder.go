package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/roombook-console/internal/application"
	"github.com/example/roombook-console/internal/logging"
)

// Headers exchanged with console clients.
const (
	// NoticeHeader carries the notice of a response that has no body.
	NoticeHeader = "X-Console-Notice"
	// UsernameHeader names the principal when credentials come from headers.
	UsernameHeader = "X-Console-Username"
	// TokenCookie is shared with the booking frontend.
	TokenCookie = "token"
)

var (
	errBadRequestBody = errors.New("invalid request body")
	errInvalidPage    = errors.New("page and size must be integers")
	errMissingID      = errors.New("record id is required")
	errUnknownRecord  = errors.New("record is not in the current list")
	errNoSession      = errors.New("no validated session on the request")
)

type envelope struct {
	Data    any                  `json:"data"`
	Notices []application.Notice `json:"notices"`
	Error   string               `json:"error,omitempty"`
	Errors  map[string]string    `json:"errors,omitempty"`
}

type redirectResponse struct {
	Redirect string `json:"redirect"`
}

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeData wraps data and the request's notices in the envelope.
func (r responder) writeData(ctx context.Context, w http.ResponseWriter, status int, data any) {
	r.writeJSON(ctx, w, status, envelope{Data: data, Notices: drainNotices(ctx)})
}

// writeError answers a request that failed before reaching a screen.
func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).WarnContext(ctx, "request rejected", "status", status, "error", err)
	}
	r.writeJSON(ctx, w, status, envelope{Notices: drainNotices(ctx), Error: message})
}

// handleScreenError answers a failed screen action. The notices the screen
// raised travel in the envelope; the status reflects the failure class.
func (r responder) handleScreenError(ctx context.Context, w http.ResponseWriter, req *http.Request, role application.Role, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var rErr *application.RedirectError
	if errors.As(err, &rErr) {
		r.writeRedirect(ctx, w, req, role, rErr)
		return
	}

	if errors.Is(err, application.ErrNothingToExport) {
		notices := drainNotices(ctx)
		if len(notices) > 0 {
			w.Header().Set(NoticeHeader, notices[0].Text)
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	status := statusForError(err)
	body := envelope{Notices: drainNotices(ctx), Error: errorText(err)}
	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		body.Errors = vErr.FieldErrors
	}
	r.writeJSON(ctx, w, status, body)
}

// writeRedirect sends the caller back to the entry route and expires the
// console cookies for role.
func (r responder) writeRedirect(ctx context.Context, w http.ResponseWriter, req *http.Request, role application.Role, rErr *application.RedirectError) {
	route := rErr.Route
	if route == "" {
		route = application.EntryRoute
	}
	expireCookies(w, role)
	r.loggerFor(ctx).InfoContext(ctx, "session required", "reason", rErr.Reason, "error_kind", application.ErrorKind(rErr))

	if wantsHTML(req) {
		http.Redirect(w, req, route, http.StatusSeeOther)
		return
	}
	r.writeJSON(ctx, w, http.StatusUnauthorized, redirectResponse{Redirect: route})
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func statusForError(err error) int {
	var vErr *application.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, application.ErrFormClosed):
		return http.StatusConflict
	case errors.Is(err, application.ErrTransport), errors.Is(err, application.ErrMalformedRecord):
		return http.StatusBadGateway
	}
	if sErr, ok := application.AsStatusError(err); ok {
		if code := sErr.StatusCode(); code >= 400 && code < 500 {
			return code
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func errorText(err error) string {
	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Error()
	}
	if sErr, ok := application.AsStatusError(err); ok {
		if msg := strings.TrimSpace(sErr.ServerMessage()); msg != "" {
			return msg
		}
		return "backend answered " + strconv.Itoa(sErr.StatusCode())
	}
	if errors.Is(err, application.ErrTransport) {
		return application.MsgNetworkError
	}
	return application.MsgGenericError
}

func drainNotices(ctx context.Context) []application.Notice {
	notices := noticesFromContext(ctx).Drain()
	if notices == nil {
		return []application.Notice{}
	}
	return notices
}

func wantsHTML(r *http.Request) bool {
	return r != nil && strings.Contains(r.Header.Get("Accept"), "text/html")
}

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errBadRequestBody
	}
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return errBadRequestBody
	}
	return nil
}
