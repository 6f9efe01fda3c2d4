package backend

import (
	"context"
	"net/http"

	"github.com/example/roombook-console/internal/application"
)

// MeetingProfile implements application.ScheduleAPI.
func (c *Client) MeetingProfile(ctx context.Context, token string) (application.MeetingProfile, error) {
	data, err := c.do(ctx, call{operation: "MeetingProfile", method: http.MethodGet, path: "/meeting/details", token: token})
	if err != nil {
		return application.MeetingProfile{}, err
	}
	var wire wireMeetingProfile
	if err := decodeInto("MeetingProfile", data, &wire); err != nil {
		return application.MeetingProfile{}, err
	}
	return wire.record()
}

// SelectedSchedule implements application.ScheduleAPI. Only the first saved
// selection is used.
func (c *Client) SelectedSchedule(ctx context.Context, token string) (application.ScheduleSelection, error) {
	data, err := c.do(ctx, call{operation: "SelectedSchedule", method: http.MethodGet, path: "/meeting/selectedDays", token: token})
	if err != nil {
		return application.ScheduleSelection{}, err
	}
	var wire wireSelectedDays
	if err := decodeInto("SelectedSchedule", data, &wire); err != nil {
		return application.ScheduleSelection{}, err
	}
	return wire.record(), nil
}

// PendingCount implements application.ScheduleAPI.
func (c *Client) PendingCount(ctx context.Context, token string) (int, error) {
	data, err := c.do(ctx, call{operation: "PendingCount", method: http.MethodGet, path: "/meeting/schedule/count", token: token})
	if err != nil {
		return 0, err
	}
	var body struct {
		Count int `json:"request_count"`
	}
	if err := decodeInto("PendingCount", data, &body); err != nil {
		return 0, err
	}
	return body.Count, nil
}

// AddSchedule implements application.ScheduleAPI.
func (c *Client) AddSchedule(ctx context.Context, token string, req application.ScheduleRequest) error {
	req.PreviousStartTime = ""
	req.PreviousEndTime = ""
	_, err := c.do(ctx, call{operation: "AddSchedule", method: http.MethodPost, path: "/meeting/add-schedule", token: token, body: req})
	return err
}

// UpdateSchedule implements application.ScheduleAPI.
func (c *Client) UpdateSchedule(ctx context.Context, token string, req application.ScheduleRequest) error {
	_, err := c.do(ctx, call{operation: "UpdateSchedule", method: http.MethodPut, path: "/meeting/update-schedule", token: token, body: req})
	return err
}

var (
	_ application.TokenValidator = (*Client)(nil)
	_ application.AdminAPI       = (*Client)(nil)
	_ application.MeetingAPI     = (*Client)(nil)
	_ application.UserAPI        = (*Client)(nil)
	_ application.ScheduleAPI    = (*Client)(nil)
)
