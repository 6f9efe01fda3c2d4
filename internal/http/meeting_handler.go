package http

import (
	"log/slog"
	"net/http"

	"github.com/example/roombook-console/internal/application"
)

// MeetingHandler serves the admin meetings screen.
type MeetingHandler struct {
	listHandler[application.Meeting]
}

// NewMeetingHandler wires the meetings routes to the registry.
func NewMeetingHandler(workspaces *Workspaces, logger *slog.Logger) *MeetingHandler {
	h := &MeetingHandler{newListHandler("MeetingHandler", screenMeetings, workspaces, func(w *Workspace) adminScreen[application.Meeting] {
		return w.Meetings
	}, logger)}
	h.categories = application.MeetingCategories()
	return h
}

// Create serves POST /console/meetings with the meeting form fields.
func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var draft application.MeetingDraft
	if err := decodeJSON(r, &draft); err != nil {
		h.log(ctx, "Create", "error_kind", "bad_request").InfoContext(ctx, "failed to decode meeting draft", "error", err)
		h.responder.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}
	ws, ok := h.openWorkspace(w, r)
	if !ok {
		return
	}
	screen := ws.Meetings

	form := screen.NewCreateForm(application.FormOptions{})
	form.Edit(func(d *application.MeetingDraft) { *d = draft })
	if err := form.Submit(ctx); err != nil {
		h.responder.handleScreenError(ctx, w, r, application.RoleAdmin, err)
		return
	}

	h.log(ctx, "Create", "meeting_username", draft.Username).InfoContext(ctx, "meeting created")
	h.responder.writeData(ctx, w, http.StatusCreated, h.view(screen, screen.List().View()))
}

// Update serves PUT /console/meetings/{id}. Fields missing from the body keep
// the listed values; an empty password keeps the stored one.
func (h *MeetingHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	screen := ws.Meetings

	current, found := screen.Find(id)
	if !found {
		h.responder.writeError(ctx, w, http.StatusNotFound, errUnknownRecord)
		return
	}
	draft := application.DraftFromMeeting(current)
	if err := decodeJSON(r, &draft); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}
	draft.MeetingID = current.ID

	form := screen.NewEditForm(current, application.FormOptions{})
	form.Edit(func(d *application.MeetingDraft) { *d = draft })
	if err := form.Submit(ctx); err != nil {
		h.responder.handleScreenError(ctx, w, r, application.RoleAdmin, err)
		return
	}

	h.log(ctx, "Update", "meeting_id", id).InfoContext(ctx, "meeting updated")
	h.responder.writeData(ctx, w, http.StatusOK, h.view(screen, screen.List().View()))
}
