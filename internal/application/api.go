package application

import "context"

// MeetingAPI is the admin side of the booking backend for meeting accounts.
type MeetingAPI interface {
	ListMeetings(ctx context.Context, token string) ([]Meeting, error)
	SearchMeetings(ctx context.Context, token string, filter Filter) ([]Meeting, error)
	CreateMeeting(ctx context.Context, token string, draft MeetingDraft) error
	UpdateMeeting(ctx context.Context, token, id string, draft MeetingDraft) error
	DeleteMeeting(ctx context.Context, token, id string) error
	SetMeetingStatus(ctx context.Context, token, id string, enable bool) error
}

// UserAPI is the admin side of the booking backend for directory users.
type UserAPI interface {
	ListUsers(ctx context.Context, token string) ([]User, error)
	SearchUsers(ctx context.Context, token, email string) ([]User, error)
	CreateUser(ctx context.Context, token string, draft UserDraft) error
	UpdateUser(ctx context.Context, token, id string, draft UserDraft) error
	DeleteUser(ctx context.Context, token, id string) error
	SetUserStatus(ctx context.Context, token, id string, enable bool) error
}

// AdminAPI returns the signed in administrator's profile.
type AdminAPI interface {
	AdminProfile(ctx context.Context, token string) (AdminProfile, error)
}

// ScheduleAPI is the meeting side of the backend used by the schedule dashboard.
type ScheduleAPI interface {
	MeetingProfile(ctx context.Context, token string) (MeetingProfile, error)
	SelectedSchedule(ctx context.Context, token string) (ScheduleSelection, error)
	PendingCount(ctx context.Context, token string) (int, error)
	AddSchedule(ctx context.Context, token string, req ScheduleRequest) error
	UpdateSchedule(ctx context.Context, token string, req ScheduleRequest) error
}
