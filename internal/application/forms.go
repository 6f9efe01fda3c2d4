package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrFormClosed is returned when a dismissed form is submitted.
var ErrFormClosed = errors.New("application: form closed")

// FormMode selects between creating a record and editing an existing one.
type FormMode int

const (
	FormCreate FormMode = iota
	FormEdit
)

// String implements fmt.Stringer.
func (m FormMode) String() string {
	if m == FormEdit {
		return "edit"
	}
	return "create"
}

// FormOptions wires a form into its parent screen.
type FormOptions struct {
	// Bounds and Viewport describe the modal on surfaces that have a page.
	Bounds   Rect
	Viewport Viewport
	// OnSaved resynchronizes the parent after a successful submit.
	OnSaved func(ctx context.Context) error
	// OnClose runs once when the form closes, whichever way.
	OnClose  func()
	Notifier Notifier
	Logger   *slog.Logger
}

type formRules[D any] struct {
	kind     string
	order    []string
	validate func(mode FormMode, draft D) *ValidationError
	submit   func(ctx context.Context, mode FormMode, draft D) error
	failure  func(mode FormMode, err error) string
	success  func(mode FormMode) string
}

// Form is a local draft of one record plus the rules for submitting it.
type Form[D any] struct {
	mode    FormMode
	rules   formRules[D]
	opts    FormOptions
	logger  *slog.Logger
	overlay *Overlay

	submitting atomic.Bool

	mu    sync.Mutex
	draft D
}

// MeetingForm creates or edits a meeting account.
type MeetingForm = Form[MeetingDraft]

// UserForm creates or edits a directory user.
type UserForm = Form[UserDraft]

func newForm[D any](mode FormMode, draft D, rules formRules[D], opts FormOptions) *Form[D] {
	return &Form[D]{
		mode:    mode,
		rules:   rules,
		opts:    opts,
		logger:  defaultLogger(opts.Logger),
		overlay: OpenOverlay(opts.Bounds, opts.Viewport, opts.OnClose),
		draft:   draft,
	}
}

// Mode reports whether the form creates or edits.
func (f *Form[D]) Mode() FormMode {
	return f.mode
}

// Draft returns the current draft.
func (f *Form[D]) Draft() D {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Edit applies change to the draft.
func (f *Form[D]) Edit(change func(*D)) {
	if change == nil {
		return
	}
	f.mu.Lock()
	change(&f.draft)
	f.mu.Unlock()
}

// Submitting reports whether a submit is in flight.
func (f *Form[D]) Submitting() bool {
	return f.submitting.Load()
}

// PointerDown forwards a press to the overlay; a press outside the form
// closes it without submitting.
func (f *Form[D]) PointerDown(x, y float64) bool {
	return f.overlay.PointerDown(x, y)
}

// Cancel closes the form without submitting.
func (f *Form[D]) Cancel() {
	f.overlay.Close()
}

// Closed reports whether the form has been dismissed.
func (f *Form[D]) Closed() bool {
	return f.overlay.Closed()
}

// Submit validates the draft locally and sends it. Validation failures never
// reach the network. On success the form closes and the parent refetches.
func (f *Form[D]) Submit(ctx context.Context) error {
	if f == nil {
		return fmt.Errorf("form is nil")
	}
	if f.Closed() {
		return ErrFormClosed
	}
	logger := componentLogger(ctx, f.logger, "Form", "Submit", "form", f.rules.kind, "mode", f.mode.String())

	draft := f.Draft()
	if vErr := f.rules.validate(f.mode, draft); vErr.HasErrors() {
		messages := vErr.Messages(f.rules.order...)
		logger.InfoContext(ctx, "draft rejected", "error_kind", ErrorKind(vErr), "fields", len(vErr.FieldErrors))
		notify(ctx, f.opts.Notifier, NoticeError, messages[0])
		return vErr
	}

	f.submitting.Store(true)
	defer f.submitting.Store(false)

	if err := f.rules.submit(ctx, f.mode, draft); err != nil {
		logger.ErrorContext(ctx, "submit failed", "error", err, "error_kind", ErrorKind(err))
		notify(ctx, f.opts.Notifier, NoticeError, f.rules.failure(f.mode, err))
		return err
	}

	logger.InfoContext(ctx, "draft submitted")
	notify(ctx, f.opts.Notifier, NoticeSuccess, f.rules.success(f.mode))
	f.overlay.Close()

	if f.opts.OnSaved == nil {
		return nil
	}
	return f.opts.OnSaved(ctx)
}

// Meeting form messages.
const (
	MsgMeetingUsernameSpaces = "Spaces are not allowed in the meeting username."
	MsgMeetingPasswordSpaces = "Spaces are not allowed in the meeting password."
	MsgEndBeforeStart        = "End time must be greater than start time."
	MsgAccessDenied          = "Access denied. Invalid token."
)

var meetingFieldOrder = []string{"meeting_username", "meeting_password", "room_name", "authority_name"}

// NewMeetingForm opens a meeting form. In edit mode id names the record and
// an empty password means the password is unchanged.
func NewMeetingForm(api MeetingAPI, token string, mode FormMode, id string, draft MeetingDraft, opts FormOptions) *MeetingForm {
	if mode == FormEdit {
		draft.MeetingID = id
	}
	rules := formRules[MeetingDraft]{
		kind:     "meeting",
		order:    meetingFieldOrder,
		validate: validateMeetingDraft,
		submit: func(ctx context.Context, mode FormMode, d MeetingDraft) error {
			if api == nil {
				return fmt.Errorf("meeting api is not configured")
			}
			d.Username = strings.TrimSpace(d.Username)
			if mode == FormEdit {
				return api.UpdateMeeting(ctx, token, id, d)
			}
			return api.CreateMeeting(ctx, token, d)
		},
		failure: meetingSubmitFailure,
		success: func(mode FormMode) string {
			if mode == FormEdit {
				return "Meeting details updated successfully."
			}
			return "Meeting created successfully."
		},
	}
	return newForm(mode, draft, rules, opts)
}

func validateMeetingDraft(mode FormMode, d MeetingDraft) *ValidationError {
	vErr := &ValidationError{}
	if strings.Contains(d.Username, " ") {
		vErr.add("meeting_username", MsgMeetingUsernameSpaces)
	}
	if strings.Contains(d.Password, " ") {
		vErr.add("meeting_password", MsgMeetingPasswordSpaces)
	}
	if mode == FormCreate {
		if strings.TrimSpace(d.RoomName) == "" {
			vErr.add("room_name", "Room name is required.")
		}
		if strings.TrimSpace(d.AuthorityName) == "" {
			vErr.add("authority_name", "Approver name is required.")
		}
		if strings.TrimSpace(d.Username) == "" {
			vErr.add("meeting_username", "Meeting username is required.")
		}
		if d.Password == "" {
			vErr.add("meeting_password", "Meeting password is required.")
		}
	}
	return vErr
}

func meetingSubmitFailure(mode FormMode, err error) string {
	if sErr, ok := AsStatusError(err); ok {
		switch sErr.StatusCode() {
		case http.StatusBadRequest:
			msg := strings.TrimSpace(sErr.ServerMessage())
			if strings.TrimSuffix(msg, ".") == strings.TrimSuffix(MsgEndBeforeStart, ".") {
				return MsgEndBeforeStart
			}
			if msg != "" {
				return msg
			}
		case http.StatusUnauthorized:
			return MsgAccessDenied
		}
		if mode == FormEdit {
			return "An error occurred while updating meeting details."
		}
		return "An error occurred while creating the meeting."
	}
	if mode == FormEdit {
		return "Error updating meeting details."
	}
	return "Error creating meeting."
}

// User form messages.
const (
	MsgNameRequired  = "Name is required."
	MsgEmailRequired = "Email is required."
	MsgEmailInvalid  = "Email is invalid."
	MsgEmailSpaces   = "Spaces are not allowed in the email."
)

var userFieldOrder = []string{"user_name", "user_email"}

// NewUserForm opens a user form. In edit mode id names the record.
func NewUserForm(api UserAPI, token string, mode FormMode, id string, draft UserDraft, opts FormOptions) *UserForm {
	rules := formRules[UserDraft]{
		kind:     "user",
		order:    userFieldOrder,
		validate: validateUserDraft,
		submit: func(ctx context.Context, mode FormMode, d UserDraft) error {
			if api == nil {
				return fmt.Errorf("user api is not configured")
			}
			d = normalizeUserDraft(d)
			if mode == FormEdit {
				return api.UpdateUser(ctx, token, id, d)
			}
			return api.CreateUser(ctx, token, d)
		},
		failure: userSubmitFailure,
		success: func(mode FormMode) string {
			if mode == FormEdit {
				return "User details updated successfully."
			}
			return "User created successfully."
		},
	}
	return newForm(mode, draft, rules, opts)
}

func normalizeUserDraft(d UserDraft) UserDraft {
	return UserDraft{
		Name:        strings.TrimSpace(d.Name),
		Division:    strings.TrimSpace(d.Division),
		Designation: strings.TrimSpace(d.Designation),
		Email:       strings.ToLower(strings.TrimSpace(d.Email)),
	}
}

func validateUserDraft(_ FormMode, d UserDraft) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(d.Name) == "" {
		vErr.add("user_name", MsgNameRequired)
	}

	email := strings.TrimSpace(d.Email)
	switch {
	case email == "":
		vErr.add("user_email", MsgEmailRequired)
	case strings.Contains(email, " "):
		vErr.add("user_email", MsgEmailSpaces)
	default:
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email {
			vErr.add("user_email", MsgEmailInvalid)
		}
	}
	return vErr
}

func userSubmitFailure(mode FormMode, err error) string {
	if sErr, ok := AsStatusError(err); ok {
		switch sErr.StatusCode() {
		case http.StatusBadRequest:
			if msg := strings.TrimSpace(sErr.ServerMessage()); msg != "" {
				return msg
			}
		case http.StatusUnauthorized:
			return MsgAccessDenied
		}
		if mode == FormEdit {
			return "An error occurred while updating user details."
		}
		return "An error occurred while creating the user."
	}
	if mode == FormEdit {
		return "Error updating user details."
	}
	return "Error creating user."
}
