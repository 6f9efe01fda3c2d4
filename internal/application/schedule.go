package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/roombook-console/internal/availability"
)

// Schedule dashboard messages.
const (
	MsgSelectDay             = "Please select at least one day."
	MsgSelectTimes           = "Please select start and end times."
	MsgScheduleAdded         = "Meeting schedule added successfully"
	MsgScheduleUpdated       = "Meeting schedule updated successfully"
	MsgScheduleAddFailed     = "Failed to add meeting schedule"
	MsgScheduleUpdateFailed  = "Failed to update meeting schedule"
	MsgScheduleMeetingAbsent = "Meeting not found"
	MsgNoServerResponse      = "No response received from the server"
)

// PendingNotice is the text shown when schedule requests await approval.
func PendingNotice(count int) string {
	return fmt.Sprintf("You have %d pending request for approval meeting schedule", count)
}

// ScheduleView is a snapshot of the dashboard.
type ScheduleView struct {
	Profile      MeetingProfile    `json:"profile" yaml:"profile"`
	Saved        ScheduleSelection `json:"saved" yaml:"saved"`
	Draft        ScheduleSelection `json:"draft" yaml:"draft"`
	UpdateMode   bool              `json:"update_mode" yaml:"update_mode"`
	PendingCount int               `json:"pending_count" yaml:"pending_count"`
}

// ScheduleDashboard lets a meeting account choose the weekdays and time
// window it is available in.
type ScheduleDashboard struct {
	guard    *SessionGuard
	api      ScheduleAPI
	engine   *availability.Engine
	now      func() time.Time
	notifier Notifier
	logger   *slog.Logger

	inflight atomic.Int32

	mu         sync.Mutex
	session    Session
	profile    MeetingProfile
	saved      ScheduleSelection
	draft      ScheduleSelection
	updateMode bool
	pending    int
}

// ScheduleOptions configures a ScheduleDashboard.
type ScheduleOptions struct {
	Engine   *availability.Engine
	Now      func() time.Time
	Notifier Notifier
	Logger   *slog.Logger
}

// NewScheduleDashboard wires the dashboard. The guard must protect RoleMeeting.
func NewScheduleDashboard(guard *SessionGuard, api ScheduleAPI, opts ScheduleOptions) *ScheduleDashboard {
	if opts.Engine == nil {
		opts.Engine = availability.NewEngine(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ScheduleDashboard{
		guard:    guard,
		api:      api,
		engine:   opts.Engine,
		now:      opts.Now,
		notifier: opts.Notifier,
		logger:   defaultLogger(opts.Logger),
	}
}

func (d *ScheduleDashboard) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return componentLogger(ctx, d.logger, "ScheduleDashboard", operation, attrs...)
}

func (d *ScheduleDashboard) begin() func() {
	d.inflight.Add(1)
	return func() { d.inflight.Add(-1) }
}

// Loading reports whether a network call is in flight.
func (d *ScheduleDashboard) Loading() bool {
	return d.inflight.Load() > 0
}

// Mount validates the session, loads the profile and saved selection, and
// announces pending approval requests.
func (d *ScheduleDashboard) Mount(ctx context.Context) error {
	if d == nil || d.guard == nil {
		return fmt.Errorf("ScheduleDashboard is not configured")
	}
	session, err := d.guard.Check(ctx)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.session = session
	d.mu.Unlock()

	d.loadPendingCount(ctx)
	return d.Refresh(ctx)
}

func (d *ScheduleDashboard) token() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session.Token
}

func (d *ScheduleDashboard) loadPendingCount(ctx context.Context) {
	done := d.begin()
	defer done()

	count, err := d.api.PendingCount(ctx, d.token())
	if err != nil {
		d.log(ctx, "PendingCount").ErrorContext(ctx, "pending count failed", "error", err, "error_kind", ErrorKind(err))
		return
	}
	d.mu.Lock()
	d.pending = count
	d.mu.Unlock()
	if count > 0 {
		notify(ctx, d.notifier, NoticeInfo, PendingNotice(count))
	}
}

// Refresh reloads the profile and the saved selection. An existing selection
// switches the form to update mode and seeds the draft.
func (d *ScheduleDashboard) Refresh(ctx context.Context) error {
	if d.api == nil {
		return fmt.Errorf("ScheduleDashboard is not configured")
	}
	done := d.begin()
	defer done()

	logger := d.log(ctx, "Refresh")
	token := d.token()

	profile, err := d.api.MeetingProfile(ctx, token)
	if err != nil {
		logger.ErrorContext(ctx, "meeting profile failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	d.mu.Lock()
	d.profile = profile
	d.mu.Unlock()

	saved, err := d.api.SelectedSchedule(ctx, token)
	if err != nil {
		logger.ErrorContext(ctx, "selected schedule failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	d.mu.Lock()
	d.saved = cloneSelection(saved)
	if !saved.Empty() {
		d.draft = cloneSelection(saved)
		d.updateMode = true
	} else {
		d.draft.Days = nil
	}
	d.mu.Unlock()
	return nil
}

// View returns a snapshot of the dashboard.
func (d *ScheduleDashboard) View() ScheduleView {
	d.mu.Lock()
	defer d.mu.Unlock()
	profile := d.profile
	profile.Days = append([]string(nil), profile.Days...)
	return ScheduleView{
		Profile:      profile,
		Saved:        cloneSelection(d.saved),
		Draft:        cloneSelection(d.draft),
		UpdateMode:   d.updateMode,
		PendingCount: d.pending,
	}
}

// ToggleDay adds or removes a weekday from the draft.
func (d *ScheduleDashboard) ToggleDay(day string) error {
	weekday, err := availability.ParseWeekday(day)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("days", fmt.Sprintf("%q is not a day of the week", day))
		return vErr
	}
	name := weekday.String()

	d.mu.Lock()
	defer d.mu.Unlock()
	if i := slices.Index(d.draft.Days, name); i >= 0 {
		d.draft.Days = slices.Delete(d.draft.Days, i, i+1)
		return nil
	}
	d.draft.Days = append(d.draft.Days, name)
	return nil
}

// SetDays replaces the drafted days.
func (d *ScheduleDashboard) SetDays(days []string) error {
	names := make([]string, 0, len(days))
	for _, day := range days {
		weekday, err := availability.ParseWeekday(day)
		if err != nil {
			vErr := &ValidationError{}
			vErr.add("days", fmt.Sprintf("%q is not a day of the week", day))
			return vErr
		}
		if !slices.Contains(names, weekday.String()) {
			names = append(names, weekday.String())
		}
	}
	d.mu.Lock()
	d.draft.Days = names
	d.mu.Unlock()
	return nil
}

// SetWindow replaces the drafted start and end times.
func (d *ScheduleDashboard) SetWindow(start, end string) {
	d.mu.Lock()
	d.draft.StartTime = strings.TrimSpace(start)
	d.draft.EndTime = strings.TrimSpace(end)
	d.mu.Unlock()
}

// Submit adds the drafted schedule, or updates it when one already exists,
// then reloads the dashboard.
func (d *ScheduleDashboard) Submit(ctx context.Context) error {
	if d == nil || d.api == nil {
		return fmt.Errorf("ScheduleDashboard is not configured")
	}

	d.mu.Lock()
	draft := cloneSelection(d.draft)
	saved := d.saved
	update := d.updateMode
	meetingID := d.profile.ID
	token := d.session.Token
	d.mu.Unlock()

	vErr := &ValidationError{}
	if len(draft.Days) == 0 {
		vErr.add("days", MsgSelectDay)
	}
	if draft.StartTime == "" || draft.EndTime == "" {
		vErr.add("time", MsgSelectTimes)
	}
	if vErr.HasErrors() {
		notify(ctx, d.notifier, NoticeInfo, vErr.Messages("days", "time")[0])
		return vErr
	}

	req := ScheduleRequest{
		MeetingID:    meetingID,
		SelectedDays: draft.Days,
		StartTime:    draft.StartTime,
		EndTime:      draft.EndTime,
	}

	done := d.begin()
	defer done()

	logger := d.log(ctx, "Submit", "meeting_id", meetingID, "update", update)
	var err error
	if update {
		req.PreviousStartTime = saved.StartTime
		req.PreviousEndTime = saved.EndTime
		err = d.api.UpdateSchedule(ctx, token, req)
	} else {
		err = d.api.AddSchedule(ctx, token, req)
	}
	if err != nil {
		logger.ErrorContext(ctx, "schedule submit failed", "error", err, "error_kind", ErrorKind(err))
		notify(ctx, d.notifier, NoticeError, scheduleFailureNotice(update, err))
		return err
	}

	logger.InfoContext(ctx, "schedule submitted", "days", len(req.SelectedDays))
	if update {
		notify(ctx, d.notifier, NoticeSuccess, MsgScheduleUpdated)
	} else {
		notify(ctx, d.notifier, NoticeSuccess, MsgScheduleAdded)
	}
	return d.Refresh(ctx)
}

// Upcoming previews the next n slots of the saved schedule.
func (d *ScheduleDashboard) Upcoming(n int) ([]availability.Slot, error) {
	d.mu.Lock()
	saved := cloneSelection(d.saved)
	d.mu.Unlock()

	if saved.Empty() {
		return nil, nil
	}
	window, err := availability.WindowFromNames(saved.Days, saved.StartTime, saved.EndTime)
	if err != nil {
		return nil, err
	}
	return d.engine.Upcoming(window, d.now(), n)
}

func scheduleFailureNotice(update bool, err error) string {
	if sErr, ok := AsStatusError(err); ok {
		switch sErr.StatusCode() {
		case http.StatusBadRequest:
			if msg := strings.TrimSpace(sErr.ServerMessage()); msg != "" {
				return msg
			}
		case http.StatusNotFound:
			if update {
				return MsgScheduleMeetingAbsent
			}
		}
		if update {
			return MsgScheduleUpdateFailed
		}
		return MsgScheduleAddFailed
	}
	if errors.Is(err, ErrTransport) {
		return MsgNoServerResponse
	}
	if update {
		return MsgScheduleUpdateFailed
	}
	return MsgScheduleAddFailed
}

func cloneSelection(s ScheduleSelection) ScheduleSelection {
	s.Days = append([]string(nil), s.Days...)
	return s
}
