package application

import "github.com/example/roombook-console/internal/export"

// MeetingSheet is the spreadsheet layout of the meetings export.
func MeetingSheet() export.Sheet[Meeting] {
	return export.Sheet[Meeting]{
		Name: "Meetings",
		File: "Meetings_CSIR_Data.xlsx",
		Columns: []export.Column[Meeting]{
			{Header: "Room Name", Width: 20, Value: func(m Meeting) any { return m.RoomName }},
			{Header: "Approver Name", Width: 25, Value: func(m Meeting) any { return m.AuthorityName }},
			{Header: "Meeting Username", Width: 30, Value: func(m Meeting) any { return m.Username }},
			{Header: "Meeting Available Days", Width: 50, Value: func(m Meeting) any { return m.DaysLabel() }},
		},
	}
}

// UserSheet is the spreadsheet layout of the users export.
func UserSheet() export.Sheet[User] {
	return export.Sheet[User]{
		Name: "Users",
		File: "Users_CSIR_Data.xlsx",
		Columns: []export.Column[User]{
			{Header: "Name", Width: 25, Value: func(u User) any { return u.Name }},
			{Header: "Division", Width: 25, Value: func(u User) any { return u.Division }},
			{Header: "Designation", Width: 25, Value: func(u User) any { return u.Designation }},
			{Header: "Email", Width: 35, Value: func(u User) any { return u.Email }},
		},
	}
}
