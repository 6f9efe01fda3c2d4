package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/example/roombook-console/internal/application"
)

// ValidateToken implements application.TokenValidator.
func (c *Client) ValidateToken(ctx context.Context, role application.Role, token string) (bool, error) {
	if role != application.RoleAdmin && role != application.RoleMeeting {
		return false, fmt.Errorf("backend: unknown role %q", role)
	}
	data, err := c.do(ctx, call{
		operation: "ValidateToken",
		method:    http.MethodPost,
		path:      "/" + string(role) + "/validateToken",
		token:     token,
		body:      map[string]string{"token": token},
	})
	if err != nil {
		return false, err
	}
	var body struct {
		Valid bool `json:"valid"`
	}
	if err := decodeInto("ValidateToken", data, &body); err != nil {
		return false, err
	}
	return body.Valid, nil
}

// AdminProfile implements application.AdminAPI.
func (c *Client) AdminProfile(ctx context.Context, token string) (application.AdminProfile, error) {
	data, err := c.do(ctx, call{operation: "AdminProfile", method: http.MethodGet, path: "/admin/details", token: token})
	if err != nil {
		return application.AdminProfile{}, err
	}
	var profile application.AdminProfile
	if err := decodeInto("AdminProfile", data, &profile); err != nil {
		return application.AdminProfile{}, err
	}
	return profile, nil
}

// ListMeetings implements application.MeetingAPI.
func (c *Client) ListMeetings(ctx context.Context, token string) ([]application.Meeting, error) {
	data, err := c.do(ctx, call{operation: "ListMeetings", method: http.MethodGet, path: "/admin/meetings/details", token: token})
	if err != nil {
		return nil, err
	}
	return decodeMeetings(data)
}

// SearchMeetings implements application.MeetingAPI.
func (c *Client) SearchMeetings(ctx context.Context, token string, filter application.Filter) ([]application.Meeting, error) {
	data, err := c.do(ctx, call{
		operation: "SearchMeetings",
		method:    http.MethodPost,
		path:      "/admin/meetings/search",
		token:     token,
		body:      filter,
	})
	if err != nil {
		return nil, err
	}
	return decodeMeetings(data)
}

// CreateMeeting implements application.MeetingAPI.
func (c *Client) CreateMeeting(ctx context.Context, token string, draft application.MeetingDraft) error {
	draft.MeetingID = ""
	_, err := c.do(ctx, call{operation: "CreateMeeting", method: http.MethodPost, path: "/admin/meetings/create", token: token, body: draft})
	return err
}

// UpdateMeeting implements application.MeetingAPI.
func (c *Client) UpdateMeeting(ctx context.Context, token, id string, draft application.MeetingDraft) error {
	id, err := requireID("UpdateMeeting", id)
	if err != nil {
		return err
	}
	draft.MeetingID = id
	_, err = c.do(ctx, call{
		operation: "UpdateMeeting",
		method:    http.MethodPut,
		path:      "/admin/meetings/update/" + url.PathEscape(id),
		token:     token,
		body:      draft,
	})
	return err
}

// DeleteMeeting implements application.MeetingAPI.
func (c *Client) DeleteMeeting(ctx context.Context, token, id string) error {
	id, err := requireID("DeleteMeeting", id)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, call{operation: "DeleteMeeting", method: http.MethodDelete, path: "/admin/meetings/delete/" + url.PathEscape(id), token: token})
	return err
}

// SetMeetingStatus implements application.MeetingAPI. Only a 200 answer
// counts as success.
func (c *Client) SetMeetingStatus(ctx context.Context, token, id string, enable bool) error {
	id, err := requireID("SetMeetingStatus", id)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, call{
		operation: "SetMeetingStatus",
		method:    http.MethodPut,
		path:      statusPath("/admin/meetings/status", id, enable),
		token:     token,
		exactOK:   true,
	})
	return err
}

// ListUsers implements application.UserAPI.
func (c *Client) ListUsers(ctx context.Context, token string) ([]application.User, error) {
	data, err := c.do(ctx, call{operation: "ListUsers", method: http.MethodGet, path: "/admin/users/details", token: token})
	if err != nil {
		return nil, err
	}
	return decodeUsers(data)
}

// SearchUsers implements application.UserAPI.
func (c *Client) SearchUsers(ctx context.Context, token, email string) ([]application.User, error) {
	data, err := c.do(ctx, call{
		operation: "SearchUsers",
		method:    http.MethodPost,
		path:      "/admin/users/search",
		token:     token,
		body:      map[string]string{"email": strings.TrimSpace(email)},
	})
	if err != nil {
		return nil, err
	}
	return decodeUsers(data)
}

// CreateUser implements application.UserAPI.
func (c *Client) CreateUser(ctx context.Context, token string, draft application.UserDraft) error {
	_, err := c.do(ctx, call{operation: "CreateUser", method: http.MethodPost, path: "/admin/users/create", token: token, body: draft})
	return err
}

// UpdateUser implements application.UserAPI.
func (c *Client) UpdateUser(ctx context.Context, token, id string, draft application.UserDraft) error {
	id, err := requireID("UpdateUser", id)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, call{
		operation: "UpdateUser",
		method:    http.MethodPut,
		path:      "/admin/users/update/" + url.PathEscape(id),
		token:     token,
		body:      draft,
	})
	return err
}

// DeleteUser implements application.UserAPI.
func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	id, err := requireID("DeleteUser", id)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, call{operation: "DeleteUser", method: http.MethodDelete, path: "/admin/users/delete/" + url.PathEscape(id), token: token})
	return err
}

// SetUserStatus implements application.UserAPI. Only a 200 answer counts as
// success.
func (c *Client) SetUserStatus(ctx context.Context, token, id string, enable bool) error {
	id, err := requireID("SetUserStatus", id)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, call{
		operation: "SetUserStatus",
		method:    http.MethodPut,
		path:      statusPath("/admin/user/status", id, enable),
		token:     token,
		exactOK:   true,
	})
	return err
}
