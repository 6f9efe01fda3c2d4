package testfixtures

import (
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/example/roombook-console/internal/application"
	"github.com/example/roombook-console/internal/persistence"
)

var (
	meetingCounter uint64
	userCounter    uint64
)

// referenceTime is a Wednesday noon, so weekday based previews have slots on
// both sides of it within one week.
var referenceTime = time.Date(2024, time.March, 6, 12, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Meeting fixtures -----------------------------

// MeetingFixture is a deterministic meeting account.
type MeetingFixture struct {
	ID            string
	RoomName      string
	AuthorityName string
	Username      string
	Password      string
	StartTime     string
	EndTime       string
	Days          []string
	Status        application.Status
}

// MeetingOption configures the generated meeting fixture.
type MeetingOption func(*MeetingFixture)

// NewMeetingFixture returns a meeting fixture with optional overrides. The
// id is left empty so a FakeBackend assigns one.
func NewMeetingFixture(opts ...MeetingOption) MeetingFixture {
	idx := atomic.AddUint64(&meetingCounter, 1)
	fixture := MeetingFixture{
		RoomName:      fmt.Sprintf("Room %03d", idx),
		AuthorityName: "Facilities Desk",
		Username:      fmt.Sprintf("room%03d", idx),
		Password:      "s3cret!",
		StartTime:     "09:00",
		EndTime:       "17:00",
		Days:          []string{"Monday", "Wednesday", "Friday"},
		Status:        application.StatusEnabled,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithMeetingID sets the meeting id.
func WithMeetingID(id string) MeetingOption {
	return func(f *MeetingFixture) { f.ID = id }
}

// WithRoomName overrides the room name.
func WithRoomName(name string) MeetingOption {
	return func(f *MeetingFixture) { f.RoomName = name }
}

// WithAuthorityName overrides the approver name.
func WithAuthorityName(name string) MeetingOption {
	return func(f *MeetingFixture) { f.AuthorityName = name }
}

// WithMeetingUsername overrides the meeting username.
func WithMeetingUsername(username string) MeetingOption {
	return func(f *MeetingFixture) { f.Username = username }
}

// WithMeetingWindow overrides the availability window.
func WithMeetingWindow(start, end string, days ...string) MeetingOption {
	return func(f *MeetingFixture) {
		f.StartTime, f.EndTime = start, end
		f.Days = slices.Clone(days)
	}
}

// WithMeetingStatus overrides the status flag.
func WithMeetingStatus(status application.Status) MeetingOption {
	return func(f *MeetingFixture) { f.Status = status }
}

// Application returns the fixture as listed by the admin screen.
func (f MeetingFixture) Application() application.Meeting {
	return application.Meeting{
		ID:            f.ID,
		RoomName:      f.RoomName,
		AuthorityName: f.AuthorityName,
		Username:      f.Username,
		StartTime:     f.StartTime,
		EndTime:       f.EndTime,
		Days:          slices.Clone(f.Days),
		Status:        f.Status,
	}
}

// Draft returns the fixture as a filled create form.
func (f MeetingFixture) Draft() application.MeetingDraft {
	return application.MeetingDraft{
		RoomName:      f.RoomName,
		AuthorityName: f.AuthorityName,
		Username:      f.Username,
		Password:      f.Password,
		StartTime:     f.StartTime,
		EndTime:       f.EndTime,
		Days:          slices.Clone(f.Days),
	}
}

// Meetings returns n fixtures named "Room 1" through "Room n" with ids "1"
// through "n" in server order.
func Meetings(n int) []application.Meeting {
	out := make([]application.Meeting, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, NewMeetingFixture(
			WithMeetingID(fmt.Sprint(i)),
			WithRoomName(fmt.Sprintf("Room %d", i)),
			WithMeetingUsername(fmt.Sprintf("room%d", i)),
		).Application())
	}
	return out
}

// ----------------------------- User fixtures -----------------------------

// UserFixture is a deterministic directory user.
type UserFixture struct {
	ID          string
	Name        string
	Division    string
	Designation string
	Email       string
	Status      application.Status
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	fixture := UserFixture{
		Name:        fmt.Sprintf("User %03d", idx),
		Division:    "Research",
		Designation: "Scientist",
		Email:       fmt.Sprintf("user%03d@example.com", idx),
		Status:      application.StatusEnabled,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID sets the user id.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) { f.ID = id }
}

// WithUserName overrides the display name.
func WithUserName(name string) UserOption {
	return func(f *UserFixture) { f.Name = name }
}

// WithUserEmail overrides the email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) { f.Email = email }
}

// WithUserDivision overrides the division.
func WithUserDivision(division string) UserOption {
	return func(f *UserFixture) { f.Division = division }
}

// WithUserStatus overrides the status flag.
func WithUserStatus(status application.Status) UserOption {
	return func(f *UserFixture) { f.Status = status }
}

// Application returns the fixture as listed by the admin screen.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:          f.ID,
		Name:        f.Name,
		Division:    f.Division,
		Designation: f.Designation,
		Email:       f.Email,
		Status:      f.Status,
	}
}

// Draft returns the fixture as a filled user form.
func (f UserFixture) Draft() application.UserDraft {
	return application.UserDraft{
		Name:        f.Name,
		Division:    f.Division,
		Designation: f.Designation,
		Email:       f.Email,
	}
}

// Users returns n fixtures with ids "1" through "n" and emails
// "user1@example.com" onwards in server order.
func Users(n int) []application.User {
	out := make([]application.User, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, NewUserFixture(
			WithUserID(fmt.Sprint(i)),
			WithUserName(fmt.Sprintf("User %d", i)),
			WithUserEmail(fmt.Sprintf("user%d@example.com", i)),
		).Application())
	}
	return out
}

// ----------------------------- Session fixtures -----------------------------

// SessionFixture is a stored credential.
type SessionFixture struct {
	Role        application.Role
	Username    string
	Token       string
	SealedToken []byte
	UpdatedAt   time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns an admin session fixture with optional overrides.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	fixture := SessionFixture{
		Role:        application.RoleAdmin,
		Username:    "root",
		Token:       "opaque-admin-token",
		SealedToken: []byte("sealed"),
		UpdatedAt:   referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionRole overrides the role.
func WithSessionRole(role application.Role) SessionOption {
	return func(f *SessionFixture) { f.Role = role }
}

// WithSessionUsername overrides the principal username.
func WithSessionUsername(username string) SessionOption {
	return func(f *SessionFixture) { f.Username = username }
}

// WithSessionToken overrides the clear text token.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) { f.Token = token }
}

// WithSealedToken overrides the stored token bytes.
func WithSealedToken(sealed []byte) SessionOption {
	return func(f *SessionFixture) { f.SealedToken = slices.Clone(sealed) }
}

// WithSessionUpdatedAt overrides the stored timestamp.
func WithSessionUpdatedAt(t time.Time) SessionOption {
	return func(f *SessionFixture) { f.UpdatedAt = t }
}

// Application returns the fixture as an application.Session.
func (f SessionFixture) Application() application.Session {
	return application.Session{Token: f.Token, Username: f.Username, Role: f.Role}
}

// Persistence returns the fixture as a stored record.
func (f SessionFixture) Persistence() persistence.SessionRecord {
	return persistence.SessionRecord{
		Role:        string(f.Role),
		Username:    f.Username,
		SealedToken: slices.Clone(f.SealedToken),
		UpdatedAt:   f.UpdatedAt,
	}
}

// ----------------------------- Preference fixtures -----------------------------

// NewPreference returns a remembered screen setting stamped at ReferenceTime.
func NewPreference(scope, name, value string) persistence.Preference {
	return persistence.Preference{
		Scope:     strings.TrimSpace(scope),
		Name:      strings.TrimSpace(name),
		Value:     value,
		UpdatedAt: referenceTime,
	}
}
