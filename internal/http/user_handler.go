package http

import (
	"log/slog"
	"net/http"

	"github.com/example/roombook-console/internal/application"
)

// UserHandler serves the admin users screen.
type UserHandler struct {
	listHandler[application.User]
}

// NewUserHandler wires the users routes to the registry.
func NewUserHandler(workspaces *Workspaces, logger *slog.Logger) *UserHandler {
	return &UserHandler{newListHandler("UserHandler", screenUsers, workspaces, func(w *Workspace) adminScreen[application.User] {
		return w.Users
	}, logger)}
}

// Create serves POST /console/users with the user form fields.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var draft application.UserDraft
	if err := decodeJSON(r, &draft); err != nil {
		h.log(ctx, "Create", "error_kind", "bad_request").InfoContext(ctx, "failed to decode user draft", "error", err)
		h.responder.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}
	ws, ok := h.openWorkspace(w, r)
	if !ok {
		return
	}
	screen := ws.Users

	form := screen.NewCreateForm(application.FormOptions{})
	form.Edit(func(d *application.UserDraft) { *d = draft })
	if err := form.Submit(ctx); err != nil {
		h.responder.handleScreenError(ctx, w, r, application.RoleAdmin, err)
		return
	}

	h.log(ctx, "Create").InfoContext(ctx, "user created")
	h.responder.writeData(ctx, w, http.StatusCreated, h.view(screen, screen.List().View()))
}

// Update serves PUT /console/users/{id}. Fields missing from the body keep the
// listed values.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := recordID(r)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingID)
		return
	}
	ws, ok := h.openWorkspace(w, r)
	if !ok {
		return
	}
	screen := ws.Users

	current, found := screen.Find(id)
	if !found {
		h.responder.writeError(ctx, w, http.StatusNotFound, errUnknownRecord)
		return
	}
	draft := application.DraftFromUser(current)
	if err := decodeJSON(r, &draft); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}

	form := screen.NewEditForm(current, application.FormOptions{})
	form.Edit(func(d *application.UserDraft) { *d = draft })
	if err := form.Submit(ctx); err != nil {
		h.responder.handleScreenError(ctx, w, r, application.RoleAdmin, err)
		return
	}

	h.log(ctx, "Update", "user_id", id).InfoContext(ctx, "user updated")
	h.responder.writeData(ctx, w, http.StatusOK, h.view(screen, screen.List().View()))
}
