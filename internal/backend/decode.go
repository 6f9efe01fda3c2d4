package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/roombook-console/internal/application"
)

// flexString accepts a JSON string or number. Database ids arrive as either
// depending on the endpoint.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}

// dayList accepts a comma joined string or an array of day names.
type dayList []string

func (d *dayList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = nil
		return nil
	}
	var raw []string
	if data[0] == '[' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		var joined string
		if err := json.Unmarshal(data, &joined); err != nil {
			return fmt.Errorf("expected day list, got %s", data)
		}
		raw = strings.Split(joined, ",")
	}
	out := make([]string, 0, len(raw))
	for _, day := range raw {
		if day = strings.TrimSpace(day); day != "" {
			out = append(out, day)
		}
	}
	*d = out
	return nil
}

// wireStatus accepts 0/1 as numbers, strings, or booleans.
type wireStatus application.Status

func (s *wireStatus) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", "false", "0", `"0"`, `""`:
		*s = wireStatus(application.StatusDisabled)
		return nil
	case "true", "1", `"1"`:
		*s = wireStatus(application.StatusEnabled)
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		switch strings.ToLower(strings.TrimSpace(text)) {
		case "enabled", "active":
			*s = wireStatus(application.StatusEnabled)
			return nil
		case "disabled", "inactive":
			*s = wireStatus(application.StatusDisabled)
			return nil
		}
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("unexpected status %s", data)
	}
	if n != 0 {
		*s = wireStatus(application.StatusEnabled)
	} else {
		*s = wireStatus(application.StatusDisabled)
	}
	return nil
}

type wireMeeting struct {
	ID            flexString `json:"meeting_id"`
	RoomName      string     `json:"room_name"`
	AuthorityName string     `json:"authority_name"`
	Username      string     `json:"meeting_username"`
	StartTime     string     `json:"start_time"`
	EndTime       string     `json:"end_time"`
	Days          dayList    `json:"meeting_days"`
	Status        wireStatus `json:"meeting_status"`
}

func (w wireMeeting) record() (application.Meeting, error) {
	m := application.Meeting{
		ID:            string(w.ID),
		RoomName:      strings.TrimSpace(w.RoomName),
		AuthorityName: strings.TrimSpace(w.AuthorityName),
		Username:      strings.TrimSpace(w.Username),
		StartTime:     w.StartTime,
		EndTime:       w.EndTime,
		Days:          []string(w.Days),
		Status:        application.Status(w.Status),
	}
	if missing := missingFields(map[string]string{
		"meeting_id":       m.ID,
		"room_name":        m.RoomName,
		"meeting_username": m.Username,
	}, "meeting_id", "room_name", "meeting_username"); len(missing) > 0 {
		return application.Meeting{}, fmt.Errorf("meeting %q missing %s: %w", m.ID, strings.Join(missing, ", "), ErrMalformedRecord)
	}
	return m, nil
}

type wireUser struct {
	ID          flexString `json:"user_id"`
	Name        string     `json:"user_name"`
	Division    string     `json:"user_division"`
	Designation string     `json:"user_designation"`
	Email       string     `json:"user_email"`
	Status      wireStatus `json:"user_status"`
}

func (w wireUser) record() (application.User, error) {
	u := application.User{
		ID:          string(w.ID),
		Name:        strings.TrimSpace(w.Name),
		Division:    strings.TrimSpace(w.Division),
		Designation: strings.TrimSpace(w.Designation),
		Email:       strings.TrimSpace(w.Email),
		Status:      application.Status(w.Status),
	}
	if missing := missingFields(map[string]string{
		"user_id":    u.ID,
		"user_email": u.Email,
	}, "user_id", "user_email"); len(missing) > 0 {
		return application.User{}, fmt.Errorf("user %q missing %s: %w", u.ID, strings.Join(missing, ", "), ErrMalformedRecord)
	}
	return u, nil
}

type wireMeetingProfile struct {
	ID                 flexString `json:"meeting_id"`
	Username           string     `json:"meeting_username"`
	Days               dayList    `json:"meeting_days"`
	FormattedStartTime string     `json:"formatted_start_time"`
	FormattedEndTime   string     `json:"formatted_end_time"`
}

func (w wireMeetingProfile) record() (application.MeetingProfile, error) {
	p := application.MeetingProfile{
		ID:                 string(w.ID),
		Username:           strings.TrimSpace(w.Username),
		Days:               []string(w.Days),
		FormattedStartTime: w.FormattedStartTime,
		FormattedEndTime:   w.FormattedEndTime,
	}
	if p.ID == "" {
		return application.MeetingProfile{}, fmt.Errorf("meeting profile missing meeting_id: %w", ErrMalformedRecord)
	}
	return p, nil
}

type wireSelection struct {
	Days      dayList `json:"meeting_days"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
}

type wireSelectedDays struct {
	SelectedDays []wireSelection `json:"selectedDays"`
}

func (w wireSelectedDays) record() application.ScheduleSelection {
	if len(w.SelectedDays) == 0 {
		return application.ScheduleSelection{}
	}
	first := w.SelectedDays[0]
	return application.ScheduleSelection{
		Days:      []string(first.Days),
		StartTime: first.StartTime,
		EndTime:   first.EndTime,
	}
}

func missingFields(values map[string]string, order ...string) []string {
	var missing []string
	for _, field := range order {
		if strings.TrimSpace(values[field]) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

func decodeMeetings(data []byte) ([]application.Meeting, error) {
	var wire []wireMeeting
	if err := decodeList(data, &wire); err != nil {
		return nil, err
	}
	out := make([]application.Meeting, 0, len(wire))
	for _, w := range wire {
		m, err := w.record()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func decodeUsers(data []byte) ([]application.User, error) {
	var wire []wireUser
	if err := decodeList(data, &wire); err != nil {
		return nil, err
	}
	out := make([]application.User, 0, len(wire))
	for _, w := range wire {
		u, err := w.record()
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// decodeList treats an empty body or null as an empty list.
func decodeList(data []byte, out any) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode list: %v: %w", err, ErrMalformedRecord)
	}
	return nil
}

// errorMessage reads the server's explanation from an error body, preferring
// "error" over "message".
func errorMessage(data []byte) string {
	var body struct {
		Error   any `json:"error"`
		Message any `json:"message"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(data), &body); err != nil {
		return ""
	}
	if text := messageText(body.Error); text != "" {
		return text
	}
	return messageText(body.Message)
}

func messageText(v any) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case map[string]any:
		if msg, ok := value["message"].(string); ok {
			return strings.TrimSpace(msg)
		}
	}
	return ""
}
