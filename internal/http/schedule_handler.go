package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/roombook-console/internal/application"
	"github.com/example/roombook-console/internal/availability"
)

// UpcomingSlots is how many future occurrences the schedule view previews.
const UpcomingSlots = 5

// ScheduleHandler serves the meeting account's schedule dashboard.
type ScheduleHandler struct {
	workspaces *Workspaces
	responder  responder
	logger     *slog.Logger
}

// NewScheduleHandler wires the schedule routes to the registry.
func NewScheduleHandler(workspaces *Workspaces, logger *slog.Logger) *ScheduleHandler {
	base := defaultLogger(logger)
	return &ScheduleHandler{workspaces: workspaces, responder: newResponder(base), logger: base}
}

func (h *ScheduleHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ScheduleHandler", operation, attrs...)
}

type scheduleView struct {
	application.ScheduleView
	Weekdays []string            `json:"weekdays"`
	Upcoming []availability.Slot `json:"upcoming"`
}

type scheduleRequest struct {
	Days      []string `json:"days"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
}

// open mounts the dashboard on the first visit. Later visits refresh it
// when refresh is set.
func (h *ScheduleHandler) open(w http.ResponseWriter, r *http.Request, refresh bool) (*application.ScheduleDashboard, bool) {
	ctx := r.Context()
	session, ok := SessionFromContext(ctx)
	if !ok || h.workspaces == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, errNoSession)
		return nil, false
	}
	ws := h.workspaces.Get(session.Token)
	dashboard := ws.Schedule

	mounted, err := ws.mount(ctx, screenSchedule, dashboard.Mount)
	if err == nil && !mounted && refresh {
		err = dashboard.Refresh(ctx)
	}
	if err != nil {
		h.responder.handleScreenError(ctx, w, r, application.RoleMeeting, err)
		return nil, false
	}
	return dashboard, true
}

func (h *ScheduleHandler) view(ctx context.Context, dashboard *application.ScheduleDashboard) scheduleView {
	upcoming, err := dashboard.Upcoming(UpcomingSlots)
	if err != nil {
		h.log(ctx, "Upcoming").WarnContext(ctx, "saved schedule cannot be previewed", "error", err)
	}
	if upcoming == nil {
		upcoming = []availability.Slot{}
	}
	return scheduleView{
		ScheduleView: dashboard.View(),
		Weekdays:     application.Weekdays(),
		Upcoming:     upcoming,
	}
}

// Get serves GET /console/schedule.
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	dashboard, ok := h.open(w, r, true)
	if !ok {
		return
	}
	ctx := r.Context()
	h.responder.writeData(ctx, w, http.StatusOK, h.view(ctx, dashboard))
}

// Submit serves PUT /console/schedule. The dashboard decides between adding
// and updating the schedule.
func (h *ScheduleHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req scheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(ctx, "Submit", "error_kind", "bad_request").InfoContext(ctx, "failed to decode schedule request", "error", err)
		h.responder.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}

	dashboard, ok := h.open(w, r, false)
	if !ok {
		return
	}
	if err := dashboard.SetDays(req.Days); err != nil {
		h.responder.handleScreenError(ctx, w, r, application.RoleMeeting, err)
		return
	}
	dashboard.SetWindow(req.StartTime, req.EndTime)
	if err := dashboard.Submit(ctx); err != nil {
		h.responder.handleScreenError(ctx, w, r, application.RoleMeeting, err)
		return
	}

	h.log(ctx, "Submit", "days", len(req.Days)).InfoContext(ctx, "schedule submitted")
	h.responder.writeData(ctx, w, http.StatusOK, h.view(ctx, dashboard))
}
