package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/roombook-console/internal/application"
)

// tokenForgetter is implemented by validators that cache answers.
type tokenForgetter interface {
	Forget(role application.Role, token string)
}

// SessionHandler stores and drops the console cookies for a role.
type SessionHandler struct {
	workspaces *Workspaces
	validator  application.TokenValidator
	guards     map[application.Role]*application.SessionGuard
	responder  responder
	logger     *slog.Logger
}

// NewSessionHandler wires the session routes. Sign in is checked with
// validator, the same one RequireSession uses, and validator is told to
// forget tokens on sign out when it caches answers.
func NewSessionHandler(workspaces *Workspaces, validator application.TokenValidator, logger *slog.Logger) *SessionHandler {
	base := defaultLogger(logger)
	h := &SessionHandler{workspaces: workspaces, validator: validator, responder: newResponder(base), logger: base}
	if validator != nil {
		h.guards = make(map[application.Role]*application.SessionGuard, 2)
		for _, role := range []application.Role{application.RoleAdmin, application.RoleMeeting} {
			h.guards[role] = application.NewSessionGuardWithLogger(role, requestSessionStore{}, validator, workspaces.cfg.Now, base)
		}
	}
	return h
}

func (h *SessionHandler) guard(role application.Role) *application.SessionGuard {
	if guard, ok := h.guards[role]; ok {
		return guard
	}
	return h.workspaces.guard(role)
}

func (h *SessionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SessionHandler", operation, attrs...)
}

type sessionRequest struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

type sessionResponse struct {
	Role     application.Role `json:"role"`
	Username string           `json:"username"`
}

// Create serves POST /console/session. The credential is validated with the
// backend before the cookies are set.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(ctx, "Create", "error_kind", "bad_request").InfoContext(ctx, "failed to decode session request", "error", err)
		h.responder.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}
	role, err := application.ParseRole(req.Role)
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(ctx, "Create", "role", role)
	creds := credentials{Token: strings.TrimSpace(req.Token), Username: strings.TrimSpace(req.Username)}
	session, err := h.guard(role).Check(contextWithCredentials(ctx, creds))
	if err != nil {
		logger.InfoContext(ctx, "sign in rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleScreenError(ctx, w, r, role, err)
		return
	}

	setCookies(w, session)
	logger.InfoContext(ctx, "console session stored", "username", session.Username)
	h.responder.writeData(ctx, w, http.StatusOK, sessionResponse{Role: role, Username: session.Username})
}

// Delete serves DELETE /console/session?role=. It expires the cookies and
// drops the caller's workspace.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	role, err := application.ParseRole(r.URL.Query().Get("role"))
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}

	creds := readCredentials(r, role)
	if creds.Token != "" {
		h.workspaces.Forget(creds.Token)
		if forgetter, ok := h.validator.(tokenForgetter); ok {
			forgetter.Forget(role, creds.Token)
		}
	}
	expireCookies(w, role)
	h.log(ctx, "Delete", "role", role).InfoContext(ctx, "console session dropped")
	w.WriteHeader(http.StatusNoContent)
}
