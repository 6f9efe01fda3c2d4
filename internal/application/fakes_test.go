package application

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// statusErr stands in for a backend rejection carrying an HTTP status.
type statusErr struct {
	code int
	msg  string
}

func (e *statusErr) Error() string         { return fmt.Sprintf("status %d: %s", e.code, e.msg) }
func (e *statusErr) StatusCode() int       { return e.code }
func (e *statusErr) ServerMessage() string { return e.msg }
func (e *statusErr) Is(target error) bool {
	switch e.code {
	case http.StatusUnauthorized:
		return target == ErrUnauthorized
	case http.StatusNotFound:
		return target == ErrNotFound
	}
	return false
}

func rejected(code int, msg string) error { return &statusErr{code: code, msg: msg} }

var errUnreachable = fmt.Errorf("dial tcp 127.0.0.1:1: %w", ErrTransport)

type memoryStore struct {
	mu       sync.Mutex
	sessions map[Role]Session
	cleared  []Role
	loadErr  error
}

func newMemoryStore(sessions ...Session) *memoryStore {
	s := &memoryStore{sessions: make(map[Role]Session)}
	for _, session := range sessions {
		s.sessions[session.Role] = session
	}
	return s
}

func (s *memoryStore) LoadSession(_ context.Context, role Role) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return Session{}, s.loadErr
	}
	return s.sessions[role], nil
}

func (s *memoryStore) SaveSession(_ context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Role] = session
	return nil
}

func (s *memoryStore) ClearSession(_ context.Context, role Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, role)
	s.cleared = append(s.cleared, role)
	return nil
}

func (s *memoryStore) has(role Role) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[role]
	return ok
}

type stubValidator struct {
	mu    sync.Mutex
	valid bool
	err   error
	calls int
}

func (v *stubValidator) ValidateToken(_ context.Context, _ Role, _ string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	return v.valid, v.err
}

func (v *stubValidator) callCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

type stubAdmin struct{}

func (stubAdmin) AdminProfile(context.Context, string) (AdminProfile, error) {
	return AdminProfile{Username: "root"}, nil
}

// fakeMeetingAPI keeps meetings in server order and records every call.
type fakeMeetingAPI struct {
	mu       sync.Mutex
	meetings []Meeting
	search   []Meeting
	errs     map[string]error
	calls    []string
	created  []MeetingDraft
	updated  map[string]MeetingDraft
}

func newFakeMeetingAPI(meetings ...Meeting) *fakeMeetingAPI {
	return &fakeMeetingAPI{meetings: meetings, errs: map[string]error{}, updated: map[string]MeetingDraft{}}
}

func (f *fakeMeetingAPI) record(op string) error {
	f.calls = append(f.calls, op)
	return f.errs[op]
}

func (f *fakeMeetingAPI) fail(op string, err error) {
	f.mu.Lock()
	f.errs[op] = err
	f.mu.Unlock()
}

func (f *fakeMeetingAPI) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeMeetingAPI) ListMeetings(context.Context, string) ([]Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("list"); err != nil {
		return nil, err
	}
	return append([]Meeting(nil), f.meetings...), nil
}

func (f *fakeMeetingAPI) SearchMeetings(_ context.Context, _ string, filter Filter) ([]Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("search:" + filter.Category + ":" + filter.Text); err != nil {
		return nil, err
	}
	if f.errs["search"] != nil {
		return nil, f.errs["search"]
	}
	return append([]Meeting(nil), f.search...), nil
}

func (f *fakeMeetingAPI) CreateMeeting(_ context.Context, _ string, draft MeetingDraft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create"); err != nil {
		return err
	}
	f.created = append(f.created, draft)
	f.meetings = append(f.meetings, Meeting{
		ID:            fmt.Sprintf("m-%d", len(f.meetings)+1),
		RoomName:      draft.RoomName,
		AuthorityName: draft.AuthorityName,
		Username:      draft.Username,
		Status:        StatusEnabled,
	})
	return nil
}

func (f *fakeMeetingAPI) UpdateMeeting(_ context.Context, _ string, id string, draft MeetingDraft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("update:" + id); err != nil {
		return err
	}
	f.updated[id] = draft
	return nil
}

func (f *fakeMeetingAPI) DeleteMeeting(_ context.Context, _ string, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("delete:" + id); err != nil {
		return err
	}
	for i, m := range f.meetings {
		if m.ID == id {
			f.meetings = append(f.meetings[:i], f.meetings[i+1:]...)
			return nil
		}
	}
	return rejected(http.StatusNotFound, "Meeting not found")
}

func (f *fakeMeetingAPI) SetMeetingStatus(_ context.Context, _ string, id string, enable bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	op := "disable:" + id
	if enable {
		op = "enable:" + id
	}
	if err := f.record(op); err != nil {
		return err
	}
	for i := range f.meetings {
		if f.meetings[i].ID == id {
			if enable {
				f.meetings[i].Status = StatusEnabled
			} else {
				f.meetings[i].Status = StatusDisabled
			}
			return nil
		}
	}
	return rejected(http.StatusNotFound, "Meeting not found")
}

// fakeUserAPI mirrors fakeMeetingAPI for users.
type fakeUserAPI struct {
	mu    sync.Mutex
	users []User
	errs  map[string]error
	calls []string
}

func newFakeUserAPI(users ...User) *fakeUserAPI {
	return &fakeUserAPI{users: users, errs: map[string]error{}}
}

func (f *fakeUserAPI) record(op string) error {
	f.calls = append(f.calls, op)
	return f.errs[op]
}

func (f *fakeUserAPI) fail(op string, err error) {
	f.mu.Lock()
	f.errs[op] = err
	f.mu.Unlock()
}

func (f *fakeUserAPI) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeUserAPI) ListUsers(context.Context, string) ([]User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("list"); err != nil {
		return nil, err
	}
	return append([]User(nil), f.users...), nil
}

func (f *fakeUserAPI) SearchUsers(_ context.Context, _ string, email string) ([]User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("search:" + email); err != nil {
		return nil, err
	}
	var out []User
	for _, u := range f.users {
		if strings.Contains(u.Email, email) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserAPI) CreateUser(_ context.Context, _ string, draft UserDraft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create"); err != nil {
		return err
	}
	f.users = append(f.users, User{ID: fmt.Sprintf("u-%d", len(f.users)+1), Name: draft.Name, Email: draft.Email, Status: StatusEnabled})
	return nil
}

func (f *fakeUserAPI) UpdateUser(_ context.Context, _ string, id string, draft UserDraft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("update:" + id); err != nil {
		return err
	}
	for i := range f.users {
		if f.users[i].ID == id {
			f.users[i].Name = draft.Name
			f.users[i].Email = draft.Email
			return nil
		}
	}
	return rejected(http.StatusNotFound, "User not found")
}

func (f *fakeUserAPI) DeleteUser(_ context.Context, _ string, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("delete:" + id); err != nil {
		return err
	}
	for i, u := range f.users {
		if u.ID == id {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return rejected(http.StatusNotFound, "")
}

func (f *fakeUserAPI) SetUserStatus(_ context.Context, _ string, id string, enable bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	op := "disable:" + id
	if enable {
		op = "enable:" + id
	}
	if err := f.record(op); err != nil {
		return err
	}
	for i := range f.users {
		if f.users[i].ID == id {
			if enable {
				f.users[i].Status = StatusEnabled
			} else {
				f.users[i].Status = StatusDisabled
			}
			return nil
		}
	}
	return rejected(http.StatusNotFound, "")
}

func adminSession() Session {
	return Session{Token: "admin-token", Username: "root", Role: RoleAdmin}
}

func numberedMeetings(n int) []Meeting {
	out := make([]Meeting, n)
	for i := range out {
		out[i] = Meeting{
			ID:            fmt.Sprintf("m-%d", i+1),
			RoomName:      fmt.Sprintf("Room %d", i+1),
			AuthorityName: "Approver",
			Username:      fmt.Sprintf("room%d", i+1),
			Days:          []string{"Monday"},
			Status:        StatusEnabled,
		}
	}
	return out
}

func mountedMeetingScreen(api *fakeMeetingAPI, board *NoticeBoard) *MeetingScreen {
	guard := NewSessionGuard(RoleAdmin, newMemoryStore(adminSession()), &stubValidator{valid: true}, nil)
	screen := NewMeetingScreen(guard, stubAdmin{}, api, ScreenOptions{Notifier: board})
	if err := screen.Mount(context.Background()); err != nil {
		panic(err)
	}
	return screen
}

func mountedUserScreen(api *fakeUserAPI, board *NoticeBoard) *UserScreen {
	guard := NewSessionGuard(RoleAdmin, newMemoryStore(adminSession()), &stubValidator{valid: true}, nil)
	screen := NewUserScreen(guard, stubAdmin{}, api, ScreenOptions{Notifier: board})
	if err := screen.Mount(context.Background()); err != nil {
		panic(err)
	}
	return screen
}

func lastNotice(board *NoticeBoard) Notice {
	notices := board.Notices()
	if len(notices) == 0 {
		return Notice{}
	}
	return notices[len(notices)-1]
}

func bytesReader(data []byte) *bytes.Reader { return bytes.NewReader(data) }
