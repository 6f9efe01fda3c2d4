package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Page size options offered by the admin screens.
var (
	MeetingPageSizes = []int{5, 10, 20, 30, 50}
	UserPageSizes    = []int{10, 20, 30, 50}
)

// MeetingInitialPageSize is the meetings screen's page size until the first
// reset or a remembered preference replaces it.
const MeetingInitialPageSize = 5

// ScreenOptions configures an admin screen.
type ScreenOptions struct {
	// DefaultPageSize is restored on reset. Zero means DefaultPageSize.
	DefaultPageSize int
	// InitialPageSize overrides the page size before the first reset, e.g.
	// with a remembered preference.
	InitialPageSize int
	Notifier        Notifier
	Logger          *slog.Logger
}

// adminScreen is the session gated shell shared by the admin list screens.
type adminScreen[T any] struct {
	guard    *SessionGuard
	admin    AdminAPI
	notifier Notifier
	logger   *slog.Logger
	list     *ListController[T]

	mu      sync.Mutex
	session Session
	profile AdminProfile
}

func (s *adminScreen[T]) token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Token
}

// Mount validates the session and performs the initial fetches. Only the
// redirect is returned; fetch failures have already been surfaced as notices.
func (s *adminScreen[T]) Mount(ctx context.Context) error {
	if s.guard == nil {
		return fmt.Errorf("screen has no session guard")
	}
	session, err := s.guard.Check(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	if s.admin != nil {
		profile, err := s.admin.AdminProfile(ctx, session.Token)
		if err != nil {
			componentLogger(ctx, s.logger, "AdminScreen", "Mount").ErrorContext(ctx, "admin profile failed", "error", err, "error_kind", ErrorKind(err))
		} else {
			s.mu.Lock()
			s.profile = profile
			s.mu.Unlock()
		}
	}

	_, _ = s.list.Fetch(ctx)
	return nil
}

// Session returns the session established by Mount.
func (s *adminScreen[T]) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Profile returns the administrator profile loaded by Mount.
func (s *adminScreen[T]) Profile() AdminProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// List exposes the screen's list controller.
func (s *adminScreen[T]) List() *ListController[T] {
	return s.list
}

// Delete removes a record and refetches.
func (s *adminScreen[T]) Delete(ctx context.Context, id string) error {
	return s.list.Delete(ctx, id)
}

// Export renders the current list as a spreadsheet.
func (s *adminScreen[T]) Export(ctx context.Context) (Artifact, error) {
	return s.list.Export(ctx)
}

func (s *adminScreen[T]) formOptions(opts FormOptions) FormOptions {
	if opts.OnSaved == nil {
		opts.OnSaved = s.list.Refetch
	}
	if opts.Notifier == nil {
		opts.Notifier = s.notifier
	}
	if opts.Logger == nil {
		opts.Logger = s.logger
	}
	return opts
}

// MeetingScreen is the admin meetings screen.
type MeetingScreen struct {
	adminScreen[Meeting]
	api    MeetingAPI
	toggle *StatusToggle
}

// NewMeetingScreen wires the meetings screen. The guard must protect RoleAdmin.
func NewMeetingScreen(guard *SessionGuard, admin AdminAPI, api MeetingAPI, opts ScreenOptions) *MeetingScreen {
	s := &MeetingScreen{api: api}
	s.guard = guard
	s.admin = admin
	s.notifier = opts.Notifier
	s.logger = defaultLogger(opts.Logger)
	initial := opts.InitialPageSize
	if initial <= 0 {
		initial = MeetingInitialPageSize
	}
	s.list = NewListController[Meeting](meetingSource{screen: s}, ListOptions[Meeting]{
		Name:               "meetings",
		DefaultPageSize:    opts.DefaultPageSize,
		InitialPageSize:    initial,
		PageSizes:          MeetingPageSizes,
		EmptyExportMessage: MsgNoMeetingData,
		Sheet:              MeetingSheet(),
		Clone:              cloneMeeting,
		Notifier:           opts.Notifier,
		Logger:             opts.Logger,
	})
	s.toggle = NewStatusToggle(func(ctx context.Context, id string, enable bool) error {
		return api.SetMeetingStatus(ctx, s.token(), id, enable)
	}, s.list.Refetch, ToggleOptions{
		Name:     "meeting",
		Notifier: opts.Notifier,
		Logger:   opts.Logger,
	})
	return s
}

// NewCreateForm opens an empty meeting form.
func (s *MeetingScreen) NewCreateForm(opts FormOptions) *MeetingForm {
	return NewMeetingForm(s.api, s.token(), FormCreate, "", MeetingDraft{}, s.formOptions(opts))
}

// NewEditForm opens a form seeded from m.
func (s *MeetingScreen) NewEditForm(m Meeting, opts FormOptions) *MeetingForm {
	return NewMeetingForm(s.api, s.token(), FormEdit, m.ID, DraftFromMeeting(m), s.formOptions(opts))
}

// Toggle flips a meeting's status based on its current value.
func (s *MeetingScreen) Toggle(ctx context.Context, id string, current Status) error {
	return s.toggle.Toggle(ctx, id, current)
}

// Find looks a meeting up in the current list.
func (s *MeetingScreen) Find(id string) (Meeting, bool) {
	for _, m := range s.list.Items() {
		if m.ID == id {
			return m, true
		}
	}
	return Meeting{}, false
}

type meetingSource struct {
	screen *MeetingScreen
}

func (m meetingSource) Fetch(ctx context.Context) ([]Meeting, error) {
	return m.screen.api.ListMeetings(ctx, m.screen.token())
}

func (m meetingSource) Search(ctx context.Context, filter Filter) ([]Meeting, error) {
	return m.screen.api.SearchMeetings(ctx, m.screen.token(), filter)
}

func (m meetingSource) Delete(ctx context.Context, id string) error {
	return m.screen.api.DeleteMeeting(ctx, m.screen.token(), id)
}

// UserScreen is the admin users screen.
type UserScreen struct {
	adminScreen[User]
	api    UserAPI
	toggle *StatusToggle
}

// NewUserScreen wires the users screen. The guard must protect RoleAdmin.
func NewUserScreen(guard *SessionGuard, admin AdminAPI, api UserAPI, opts ScreenOptions) *UserScreen {
	s := &UserScreen{api: api}
	s.guard = guard
	s.admin = admin
	s.notifier = opts.Notifier
	s.logger = defaultLogger(opts.Logger)
	s.list = NewListController[User](userSource{screen: s}, ListOptions[User]{
		Name:               "users",
		DefaultPageSize:    opts.DefaultPageSize,
		InitialPageSize:    opts.InitialPageSize,
		PageSizes:          UserPageSizes,
		NotFoundMessage:    MsgUserNotFound,
		EmptyExportMessage: MsgNoUserData,
		Sheet:              UserSheet(),
		Notifier:           opts.Notifier,
		Logger:             opts.Logger,
	})
	s.toggle = NewStatusToggle(func(ctx context.Context, id string, enable bool) error {
		return api.SetUserStatus(ctx, s.token(), id, enable)
	}, s.list.Refetch, ToggleOptions{
		Name:            "user",
		EnabledMessage:  MsgUserEnabled,
		DisabledMessage: MsgUserDisabled,
		FailureMessage:  MsgUserToggleFail,
		Notifier:        opts.Notifier,
		Logger:          opts.Logger,
	})
	return s
}

// NewCreateForm opens an empty user form.
func (s *UserScreen) NewCreateForm(opts FormOptions) *UserForm {
	return NewUserForm(s.api, s.token(), FormCreate, "", UserDraft{}, s.formOptions(opts))
}

// NewEditForm opens a form seeded from u.
func (s *UserScreen) NewEditForm(u User, opts FormOptions) *UserForm {
	return NewUserForm(s.api, s.token(), FormEdit, u.ID, DraftFromUser(u), s.formOptions(opts))
}

// Toggle flips a user's status based on its current value.
func (s *UserScreen) Toggle(ctx context.Context, id string, current Status) error {
	return s.toggle.Toggle(ctx, id, current)
}

// Find looks a user up in the current list.
func (s *UserScreen) Find(id string) (User, bool) {
	for _, u := range s.list.Items() {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

type userSource struct {
	screen *UserScreen
}

func (u userSource) Fetch(ctx context.Context) ([]User, error) {
	return u.screen.api.ListUsers(ctx, u.screen.token())
}

func (u userSource) Search(ctx context.Context, filter Filter) ([]User, error) {
	return u.screen.api.SearchUsers(ctx, u.screen.token(), filter.Text)
}

func (u userSource) Delete(ctx context.Context, id string) error {
	return u.screen.api.DeleteUser(ctx, u.screen.token(), id)
}
