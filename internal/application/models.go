package application

import (
	"fmt"
	"strings"
)

// Role selects which half of the backend a session belongs to.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleMeeting Role = "meeting"
)

// ParseRole accepts the role names used on the wire and on the command line.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleMeeting:
		return RoleMeeting, nil
	default:
		return "", fmt.Errorf("unknown role %q", value)
	}
}

// UsernameKey is the name under which the role's principal is persisted
// alongside the token.
func (r Role) UsernameKey() string {
	return string(r) + "_username"
}

// Session is the locally stored credential presented to the backend.
type Session struct {
	Token    string
	Username string
	Role     Role
}

// Complete reports whether both halves of the credential are present.
func (s Session) Complete() bool {
	return strings.TrimSpace(s.Token) != "" && strings.TrimSpace(s.Username) != ""
}

// Status is the enabled/disabled flag carried by meetings and users.
type Status int

const (
	StatusDisabled Status = 0
	StatusEnabled  Status = 1
)

// Enabled reports whether the status is the enabled value.
func (s Status) Enabled() bool {
	return s == StatusEnabled
}

// String implements fmt.Stringer.
func (s Status) String() string {
	if s.Enabled() {
		return "enabled"
	}
	return "disabled"
}

// Meeting is a bookable meeting account as listed by the admin screens.
type Meeting struct {
	ID            string   `json:"meeting_id" yaml:"meeting_id"`
	RoomName      string   `json:"room_name" yaml:"room_name"`
	AuthorityName string   `json:"authority_name" yaml:"authority_name"`
	Username      string   `json:"meeting_username" yaml:"meeting_username"`
	StartTime     string   `json:"start_time,omitempty" yaml:"start_time,omitempty"`
	EndTime       string   `json:"end_time,omitempty" yaml:"end_time,omitempty"`
	Days          []string `json:"meeting_days" yaml:"meeting_days"`
	Status        Status   `json:"meeting_status" yaml:"meeting_status"`
}

// DaysLabel joins the meeting days the way the spreadsheet export shows them.
func (m Meeting) DaysLabel() string {
	return strings.Join(m.Days, ", ")
}

// User is a directory entry managed by the admin users screen.
type User struct {
	ID          string `json:"user_id" yaml:"user_id"`
	Name        string `json:"user_name" yaml:"user_name"`
	Division    string `json:"user_division" yaml:"user_division"`
	Designation string `json:"user_designation" yaml:"user_designation"`
	Email       string `json:"user_email" yaml:"user_email"`
	Status      Status `json:"user_status" yaml:"user_status"`
}

// AdminProfile is returned by the admin details endpoint.
type AdminProfile struct {
	Username string `json:"admin_username" yaml:"admin_username"`
}

// MeetingProfile is returned by the meeting details endpoint.
type MeetingProfile struct {
	ID                 string   `json:"meeting_id" yaml:"meeting_id"`
	Username           string   `json:"meeting_username" yaml:"meeting_username"`
	Days               []string `json:"meeting_days" yaml:"meeting_days"`
	FormattedStartTime string   `json:"formatted_start_time" yaml:"formatted_start_time"`
	FormattedEndTime   string   `json:"formatted_end_time" yaml:"formatted_end_time"`
}

// ScheduleSelection is the weekly window a meeting account has chosen.
type ScheduleSelection struct {
	Days      []string `json:"days" yaml:"days"`
	StartTime string   `json:"start_time" yaml:"start_time"`
	EndTime   string   `json:"end_time" yaml:"end_time"`
}

// Empty reports whether nothing has been selected yet.
func (s ScheduleSelection) Empty() bool {
	return len(s.Days) == 0 && s.StartTime == "" && s.EndTime == ""
}

// MeetingDraft mirrors the meeting form fields.
type MeetingDraft struct {
	MeetingID     string   `json:"meetingId,omitempty"`
	RoomName      string   `json:"roomName"`
	AuthorityName string   `json:"authorityName"`
	Username      string   `json:"meetingUsername"`
	Password      string   `json:"meetingPassword,omitempty"`
	StartTime     string   `json:"startTime,omitempty"`
	EndTime       string   `json:"endTime,omitempty"`
	Days          []string `json:"meetingDays,omitempty"`
}

// DraftFromMeeting seeds an edit form. The password is left empty, meaning unchanged.
func DraftFromMeeting(m Meeting) MeetingDraft {
	return MeetingDraft{
		MeetingID:     m.ID,
		RoomName:      m.RoomName,
		AuthorityName: m.AuthorityName,
		Username:      m.Username,
		StartTime:     m.StartTime,
		EndTime:       m.EndTime,
		Days:          append([]string(nil), m.Days...),
	}
}

// UserDraft mirrors the user form fields.
type UserDraft struct {
	Name        string `json:"userName"`
	Division    string `json:"userDivision"`
	Designation string `json:"userDesignation"`
	Email       string `json:"userEmail"`
}

// DraftFromUser seeds an edit form.
func DraftFromUser(u User) UserDraft {
	return UserDraft{
		Name:        u.Name,
		Division:    u.Division,
		Designation: u.Designation,
		Email:       u.Email,
	}
}

// ScheduleRequest is the body sent when a meeting account adds or updates its
// weekly schedule.
type ScheduleRequest struct {
	MeetingID         string   `json:"meetingId"`
	SelectedDays      []string `json:"selectedDays"`
	StartTime         string   `json:"startTime"`
	EndTime           string   `json:"endTime"`
	PreviousStartTime string   `json:"previousStartTime,omitempty"`
	PreviousEndTime   string   `json:"previousEndTime,omitempty"`
}

// Filter is the search input of a list screen. Users only use Text.
type Filter struct {
	Category string `json:"category" yaml:"category"`
	Text     string `json:"text" yaml:"text"`
}

// Meeting search categories offered by the meetings screen.
const (
	CategoryNone            = ""
	CategoryRoomName        = "Room Name"
	CategoryApproverName    = "Approver Name"
	CategoryMeetingUsername = "Meeting Username"
)

// MeetingCategories lists the selectable search categories in display order.
func MeetingCategories() []string {
	return []string{CategoryRoomName, CategoryApproverName, CategoryMeetingUsername}
}

// Weekdays lists the day names accepted by the schedule dashboard.
func Weekdays() []string {
	return []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
}

func cloneMeeting(m Meeting) Meeting {
	m.Days = append([]string(nil), m.Days...)
	return m
}
