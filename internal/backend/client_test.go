package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/example/roombook-console/internal/application"
	"github.com/example/roombook-console/internal/backend"
	"github.com/example/roombook-console/internal/testfixtures"
)

func TestClientSendsCredentials(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	factory := testfixtures.NewServiceFactory(t)
	session := factory.SignIn(t, application.RoleAdmin, "root")
	client := factory.Client(t)

	profile, err := client.AdminProfile(ctx, session.Token)
	if err != nil {
		t.Fatalf("AdminProfile returned error: %v", err)
	}
	if profile.Username != "root" {
		t.Fatalf("unexpected profile %+v", profile)
	}

	reqs := factory.Backend.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected one request, got %d", len(reqs))
	}
	req := reqs[0]
	if req.Authorization != "Bearer "+session.Token || req.TokenCookie != session.Token {
		t.Fatalf("credentials not forwarded: %+v", req)
	}
	if req.RequestID != "req-1" {
		t.Fatalf("expected request id req-1, got %q", req.RequestID)
	}
}

func TestClientValidateToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	factory := testfixtures.NewServiceFactory(t)
	factory.Backend.AcceptToken(application.RoleMeeting, "meeting-token")
	client := factory.Client(t)

	cases := []struct {
		role  application.Role
		token string
		want  bool
	}{
		{role: application.RoleMeeting, token: "meeting-token", want: true},
		{role: application.RoleAdmin, token: "meeting-token", want: false},
		{role: application.RoleMeeting, token: "unknown", want: false},
	}
	for _, tc := range cases {
		got, err := client.ValidateToken(ctx, tc.role, tc.token)
		if err != nil {
			t.Fatalf("ValidateToken(%s, %s) returned error: %v", tc.role, tc.token, err)
		}
		if got != tc.want {
			t.Fatalf("ValidateToken(%s, %s) = %v, want %v", tc.role, tc.token, got, tc.want)
		}
	}

	var body map[string]string
	if err := json.Unmarshal(factory.Backend.Requests()[0].Body, &body); err != nil || body["token"] != "meeting-token" {
		t.Fatalf("expected {token} body, got %s", factory.Backend.Requests()[0].Body)
	}
	if _, err := client.ValidateToken(ctx, "auditor", "x"); err == nil {
		t.Fatalf("expected an error for an unknown role")
	}
}

func TestClientMapsRejections(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	factory := testfixtures.NewServiceFactory(t)
	session := factory.SignIn(t, application.RoleAdmin, "root")
	client := factory.Client(t)

	err := client.DeleteMeeting(ctx, session.Token, "404")
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T %v", err, err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Message != "Meeting not found" {
		t.Fatalf("unexpected APIError %+v", apiErr)
	}
	if !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("404 must match application.ErrNotFound")
	}
	if got := application.ErrorKind(err); got != "not_found" {
		t.Fatalf("expected error kind not_found, got %q", got)
	}

	_, err = client.ListMeetings(ctx, "not-a-token")
	if !errors.Is(err, application.ErrUnauthorized) {
		t.Fatalf("401 must match application.ErrUnauthorized, got %v", err)
	}
	if sErr, ok := application.AsStatusError(err); !ok || sErr.ServerMessage() != "Access denied. Invalid token." {
		t.Fatalf("expected server message from error body, got %v", err)
	}
}

func TestClientRejectsMalformedList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	factory := testfixtures.NewServiceFactory(t)
	session := factory.SignIn(t, application.RoleAdmin, "root")
	factory.Backend.SeedUsers(testfixtures.NewUserFixture(testfixtures.WithUserEmail("")).Application())
	factory.Backend.SeedUsers(testfixtures.Users(2)...)

	users, err := factory.Client(t).ListUsers(ctx, session.Token)
	if !errors.Is(err, backend.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
	if users != nil {
		t.Fatalf("a malformed response must be rejected as a whole, got %+v", users)
	}
}

func TestClientStatusRequiresExactlyOK(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var (
		mu       sync.Mutex
		lastPath string
	)
	path := func() string {
		mu.Lock()
		defer mu.Unlock()
		return lastPath
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		lastPath = r.URL.Path
		mu.Unlock()
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	client, err := backend.New(server.URL, backend.Options{})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	err = client.SetMeetingStatus(ctx, "token", "12", false)
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNoContent {
		t.Fatalf("a 204 must not count as a confirmed status change, got %v", err)
	}
	if got := path(); got != "/admin/meetings/status/disable/12" {
		t.Fatalf("unexpected path %q", got)
	}

	_ = client.SetUserStatus(ctx, "token", "5", true)
	if got := path(); got != "/admin/user/status/enable/5" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestClientStatusRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	factory := testfixtures.NewServiceFactory(t)
	session := factory.SignIn(t, application.RoleAdmin, "root")
	factory.Backend.SeedUsers(testfixtures.Users(1)...)
	client := factory.Client(t)

	if err := client.SetUserStatus(ctx, session.Token, "1", false); err != nil {
		t.Fatalf("disable returned error: %v", err)
	}
	if factory.Backend.Users()[0].Status.Enabled() {
		t.Fatalf("expected user disabled")
	}
	if err := client.SetUserStatus(ctx, session.Token, "1", true); err != nil {
		t.Fatalf("enable returned error: %v", err)
	}
	if !factory.Backend.Users()[0].Status.Enabled() {
		t.Fatalf("expected user enabled again")
	}
}

func TestClientTransportFailure(t *testing.T) {
	t.Parallel()

	factory := testfixtures.NewServiceFactory(t)
	client := factory.Client(t)
	factory.Backend.Close()

	_, err := client.ListUsers(context.Background(), "token")
	var tErr *backend.TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected *TransportError, got %T %v", err, err)
	}
	if !errors.Is(err, backend.ErrTransport) || application.ErrorKind(err) != "transport" {
		t.Fatalf("transport failures must match ErrTransport, got %v", err)
	}
}

func TestClientSearchBodies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	factory := testfixtures.NewServiceFactory(t)
	session := factory.SignIn(t, application.RoleAdmin, "root")
	factory.Backend.SeedMeetings(testfixtures.Meetings(3)...)
	factory.Backend.SeedUsers(testfixtures.Users(3)...)
	client := factory.Client(t)

	meetings, err := client.SearchMeetings(ctx, session.Token, application.Filter{Category: application.CategoryRoomName, Text: "room 2"})
	if err != nil {
		t.Fatalf("SearchMeetings returned error: %v", err)
	}
	if len(meetings) != 1 || meetings[0].ID != "2" {
		t.Fatalf("unexpected meetings %+v", meetings)
	}

	users, err := client.SearchUsers(ctx, session.Token, "  user3@ ")
	if err != nil {
		t.Fatalf("SearchUsers returned error: %v", err)
	}
	if len(users) != 1 || users[0].Email != "user3@example.com" {
		t.Fatalf("unexpected users %+v", users)
	}

	reqs := factory.Backend.Requests()
	last := reqs[len(reqs)-1]
	if !strings.Contains(string(last.Body), `"email":"user3@"`) {
		t.Fatalf("expected trimmed email body, got %s", last.Body)
	}
}

func TestNewValidatesBaseURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "ftp://example.com", "://bad"} {
		if _, err := backend.New(raw, backend.Options{}); err == nil {
			t.Fatalf("New(%q) accepted an invalid base url", raw)
		}
	}
}
