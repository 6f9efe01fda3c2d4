package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/roombook-console/internal/application"
)

// adminScreen is what the list routes need from a meetings or users screen.
type adminScreen[T any] interface {
	Mount(ctx context.Context) error
	Profile() application.AdminProfile
	List() *application.ListController[T]
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context) (application.Artifact, error)
	Toggle(ctx context.Context, id string, current application.Status) error
}

// listView is the data of every list route response.
type listView[T any] struct {
	AdminUsername string              `json:"admin_username"`
	Filter        application.Filter  `json:"filter"`
	Categories    []string            `json:"categories,omitempty"`
	PageSizes     []int               `json:"page_sizes"`
	Page          application.Page[T] `json:"page"`
}

type toggleRequest struct {
	Status *application.Status `json:"status"`
}

// listHandler serves the routes shared by the admin list screens.
type listHandler[T any] struct {
	name       string
	key        string
	categories []string
	workspaces *Workspaces
	screen     func(*Workspace) adminScreen[T]
	responder  responder
	logger     *slog.Logger
}

func newListHandler[T any](name, key string, workspaces *Workspaces, screen func(*Workspace) adminScreen[T], logger *slog.Logger) listHandler[T] {
	base := defaultLogger(logger)
	return listHandler[T]{
		name:       name,
		key:        key,
		workspaces: workspaces,
		screen:     screen,
		responder:  newResponder(base),
		logger:     base,
	}
}

func (h *listHandler[T]) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, h.name, operation, attrs...)
}

// open resolves the caller's screen and mounts it on the first visit.
func (h *listHandler[T]) open(w http.ResponseWriter, r *http.Request) (adminScreen[T], bool) {
	ws, ok := h.openWorkspace(w, r)
	if !ok {
		return nil, false
	}
	return h.screen(ws), true
}

func (h *listHandler[T]) openWorkspace(w http.ResponseWriter, r *http.Request) (*Workspace, bool) {
	ctx := r.Context()
	session, ok := SessionFromContext(ctx)
	if !ok || h.workspaces == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, errNoSession)
		return nil, false
	}
	ws := h.workspaces.Get(session.Token)
	if _, err := ws.mount(ctx, h.key, h.screen(ws).Mount); err != nil {
		h.responder.handleScreenError(ctx, w, r, application.RoleAdmin, err)
		return nil, false
	}
	return ws, true
}

func (h *listHandler[T]) view(screen adminScreen[T], page application.Page[T]) listView[T] {
	list := screen.List()
	return listView[T]{
		AdminUsername: screen.Profile().Username,
		Filter:        list.Filter(),
		Categories:    h.categories,
		PageSizes:     list.PageSizes(),
		Page:          page,
	}
}

// View serves GET ?page=&size=. A size change lands on the first page.
func (h *listHandler[T]) View(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, errPage := queryInt(r, "page")
	size, errSize := queryInt(r, "size")
	if errPage != nil || errSize != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errInvalidPage)
		return
	}

	screen, ok := h.open(w, r)
	if !ok {
		return
	}
	list := screen.List()

	var (
		view application.Page[T]
		err  error
	)
	switch {
	case size > 0:
		view, err = list.Paginate(page, size)
	case page > 0:
		view = list.GoTo(page)
	default:
		view = list.View()
	}
	if err != nil {
		h.log(ctx, "View", "size", size).InfoContext(ctx, "page size rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleScreenError(ctx, w, r, application.RoleAdmin, err)
		return
	}
	h.responder.writeData(ctx, w, http.StatusOK, h.view(screen, view))
}

// Search serves POST /search with a {category,text} body.
func (h *listHandler[T]) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var filter application.Filter
	if err := decodeJSON(r, &filter); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}
	screen, ok := h.open(w, r)
	if !ok {
		return
	}
	if _, err := screen.List().Search(ctx, filter); err != nil {
		h.responder.handleScreenError(ctx, w, r, application.RoleAdmin, err)
		return
	}
	h.responder.writeData(ctx, w, http.StatusOK, h.view(screen, screen.List().View()))
}

// Reset serves POST /reset.
func (h *listHandler[T]) Reset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	screen, ok := h.open(w, r)
	if !ok {
		return
	}
	if _, err := screen.List().Reset(ctx); err != nil {
		h.responder.handleScreenError(ctx, w, r, application.RoleAdmin, err)
		return
	}
	h.responder.writeData(ctx, w, http.StatusOK, h.view(screen, screen.List().View()))
}

// Export serves GET /export as a spreadsheet download.
func (h *listHandler[T]) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	screen, ok := h.open(w, r)
	if !ok {
		return
	}
	artifact, err := screen.Export(ctx)
	if err != nil {
		h.responder.handleScreenError(ctx, w, r, application.RoleAdmin, err)
		return
	}

	h.log(ctx, "Export", "file", artifact.FileName).InfoContext(ctx, "spreadsheet served", "bytes", len(artifact.Data))
	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+artifact.FileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Data); err != nil {
		h.log(ctx, "Export").ErrorContext(ctx, "failed to write spreadsheet", "error", err)
	}
}

// Delete serves DELETE /{id}.
func (h *listHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := recordID(r)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingID)
		return
	}
	screen, ok := h.open(w, r)
	if !ok {
		return
	}
	if err := screen.Delete(ctx, id); err != nil {
		h.responder.handleScreenError(ctx, w, r, application.RoleAdmin, err)
		return
	}
	h.responder.writeData(ctx, w, http.StatusOK, h.view(screen, screen.List().View()))
}

// Toggle serves POST /{id}/status with the record's current status.
func (h *listHandler[T]) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := recordID(r)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingID)
		return
	}
	var req toggleRequest
	if err := decodeJSON(r, &req); err != nil || req.Status == nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	screen, ok := h.open(w, r)
	if !ok {
		return
	}
	if err := screen.Toggle(ctx, id, *req.Status); err != nil {
		h.responder.handleScreenError(ctx, w, r, application.RoleAdmin, err)
		return
	}
	h.responder.writeData(ctx, w, http.StatusOK, h.view(screen, screen.List().View()))
}

func recordID(r *http.Request) (string, bool) {
	id, ok := RecordIDFromContext(r.Context())
	id = strings.TrimSpace(id)
	return id, ok && id != ""
}

func queryInt(r *http.Request, name string) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}
