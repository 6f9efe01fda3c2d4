package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/roombook-console/internal/application"
	"github.com/example/roombook-console/internal/config"
	"github.com/example/roombook-console/internal/testfixtures"
)

type harness struct {
	t       *testing.T
	backend *testfixtures.FakeBackend
	cfg     config.Config
	dir     string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fb := testfixtures.NewFakeBackend(t)
	dir := t.TempDir()
	return &harness{
		t:       t,
		backend: fb,
		dir:     dir,
		cfg: config.Config{
			BackendURL:      fb.URL(),
			StateDSN:        filepath.Join(dir, "state.db"),
			StateSecret:     testfixtures.TestStateSecret,
			DefaultPageSize: 10,
			LogLevel:        slog.LevelError + 4,
		},
	}
}

type result struct {
	code   int
	stdout string
	stderr string
}

func (h *harness) run(args ...string) result {
	h.t.Helper()
	return h.runWithInput("", args...)
}

func (h *harness) runWithInput(input string, args ...string) result {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, environment{
		stdin:      strings.NewReader(input),
		stdout:     &stdout,
		stderr:     &stderr,
		loadConfig: func() (config.Config, error) { return h.cfg, nil },
		location:   time.UTC,
	})
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func (h *harness) mustRun(args ...string) result {
	h.t.Helper()
	res := h.run(args...)
	if res.code != 0 {
		h.t.Fatalf("roomctl %s: exit %d\nstdout: %s\nstderr: %s", strings.Join(args, " "), res.code, res.stdout, res.stderr)
	}
	return res
}

func (h *harness) login(role application.Role, username string) string {
	h.t.Helper()
	token := testfixtures.MintToken(username, role, time.Now().Add(time.Hour))
	h.backend.AcceptToken(role, token)
	h.mustRun("login", "--role", string(role), "--username", username, "--token", token)
	return token
}

func decodeJSON[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	return v
}

func TestLoginWhoamiLogout(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	token := testfixtures.MintToken("root", application.RoleAdmin, time.Now().Add(time.Hour))
	h.backend.AcceptToken(application.RoleAdmin, token)

	res := h.runWithInput(token+"\n", "login", "--role", "admin", "--username", "root", "--token-stdin")
	if res.code != 0 || !strings.Contains(res.stdout, "root") {
		t.Fatalf("login: %+v", res)
	}

	who := decodeJSON[sessionOutput](t, h.mustRun("whoami", "-o", "json").stdout)
	if who.Role != application.RoleAdmin || who.Username != "root" {
		t.Fatalf("unexpected whoami %+v", who)
	}

	h.mustRun("logout")
	res = h.run("whoami")
	if res.code != 1 || !strings.Contains(res.stderr, "roomctl login") {
		t.Fatalf("expected whoami to ask for login after logout, got %+v", res)
	}
}

func TestLoginRejectedTokenIsNotKept(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	forged := testfixtures.MintToken("root", application.RoleAdmin, time.Now().Add(time.Hour))

	res := h.run("login", "--username", "root", "--token", forged)
	if res.code != 1 {
		t.Fatalf("expected login to fail, got %+v", res)
	}
	if got := h.backend.Count(testfixtures.RouteValidateToken); got != 1 {
		t.Fatalf("expected one validation, got %d", got)
	}

	h.backend.AcceptToken(application.RoleAdmin, forged)
	if res := h.run("whoami"); res.code != 1 {
		t.Fatalf("a refused token must not be stored, got %+v", res)
	}
	if got := h.backend.Count(testfixtures.RouteValidateToken); got != 1 {
		t.Fatalf("whoami without a stored session must not call the backend, got %d", got)
	}
}

func TestMeetingsListRemembersPageSize(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.login(application.RoleAdmin, "root")
	h.backend.SeedMeetings(testfixtures.Meetings(12)...)

	start := decodeJSON[pageOutput[application.Meeting]](t, h.mustRun("meetings", "list", "-o", "json").stdout)
	if start.PageSize != application.MeetingInitialPageSize || start.TotalPages != 3 {
		t.Fatalf("expected the meetings screen to start at five rows, got %+v", start)
	}
	if start.Items[0].ID != "12" || start.AdminUsername != "root" {
		t.Fatalf("expected newest meeting first and the admin profile, got %+v", start)
	}

	first := decodeJSON[pageOutput[application.Meeting]](t, h.mustRun("meetings", "list", "--size", "10", "-o", "json").stdout)
	if first.PageSize != 10 || len(first.Items) != 10 || first.TotalPages != 2 {
		t.Fatalf("unexpected first page %+v", first)
	}

	again := decodeJSON[pageOutput[application.Meeting]](t, h.mustRun("meetings", "list", "-o", "json").stdout)
	if again.PageSize != 10 {
		t.Fatalf("expected the page size remembered, got %d", again.PageSize)
	}

	last := decodeJSON[pageOutput[application.Meeting]](t, h.mustRun("-o", "json", "meetings", "list", "--page", "2").stdout)
	if last.Page != 2 || len(last.Items) != 2 {
		t.Fatalf("unexpected last page %+v", last)
	}

	both := decodeJSON[pageOutput[application.Meeting]](t, h.mustRun("meetings", "list", "--size", "5", "--page", "3", "-o", "json").stdout)
	if both.Page != 3 || both.PageSize != 5 || len(both.Items) != 2 {
		t.Fatalf("expected page 3 at five rows, got %+v", both)
	}

	if res := h.run("meetings", "list", "--size", "7"); res.code != 1 {
		t.Fatalf("expected an unlisted page size to fail, got %+v", res)
	}

	reset := decodeJSON[pageOutput[application.Meeting]](t, h.mustRun("meetings", "reset", "-o", "json").stdout)
	if reset.PageSize != 10 || len(reset.Items) != 10 {
		t.Fatalf("expected reset to restore the default page size, got %+v", reset)
	}
	after := decodeJSON[pageOutput[application.Meeting]](t, h.mustRun("meetings", "list", "-o", "json").stdout)
	if after.PageSize != 10 {
		t.Fatalf("expected the restored page size to carry over, got %d", after.PageSize)
	}
}

func TestMeetingsSearchIsRemembered(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.login(application.RoleAdmin, "root")
	h.backend.SeedMeetings(testfixtures.Meetings(3)...)

	res := h.mustRun("meetings", "search", "--category", "room name", "--text", "room 2", "-o", "json")
	found := decodeJSON[pageOutput[application.Meeting]](t, res.stdout)
	if len(found.Items) != 1 || found.Filter.Category != application.CategoryRoomName {
		t.Fatalf("unexpected search result %+v", found)
	}
	if !strings.Contains(res.stderr, application.MsgSearchFetched) {
		t.Fatalf("expected the search notice, got %q", res.stderr)
	}

	res = h.mustRun("meetings", "list", "-o", "json")
	listed := decodeJSON[pageOutput[application.Meeting]](t, res.stdout)
	if len(listed.Items) != 1 || listed.Filter.Text != "room 2" {
		t.Fatalf("expected the filter replayed, got %+v", listed)
	}
	if strings.Contains(res.stderr, application.MsgSearchFetched) {
		t.Fatalf("the replayed search must stay quiet, got %q", res.stderr)
	}

	if res := h.run("meetings", "search", "--category", "floor", "--text", "x"); res.code != 2 {
		t.Fatalf("expected a usage error for an unknown category, got %+v", res)
	}

	reset := decodeJSON[pageOutput[application.Meeting]](t, h.mustRun("meetings", "reset", "-o", "json").stdout)
	if len(reset.Items) != 3 || reset.Filter.Text != "" {
		t.Fatalf("expected reset to clear the filter, got %+v", reset)
	}
}

func TestMeetingsCreateAndEdit(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.login(application.RoleAdmin, "root")

	res := h.run("meetings", "create", "--room", "Atrium", "--approver", "Desk", "--username", "bob smith", "--password", "pw")
	if res.code != 1 || !strings.Contains(res.stderr, application.MsgMeetingUsernameSpaces) {
		t.Fatalf("expected a validation failure, got %+v", res)
	}
	if h.backend.Count(testfixtures.RouteCreateMeeting) != 0 {
		t.Fatalf("an invalid draft must not reach the backend")
	}

	h.mustRun("meetings", "create", "--room", "Atrium", "--approver", "Desk", "--username", "atrium", "--password", "pw",
		"--start", "09:00", "--end", "17:00", "--days", "Monday,Friday")
	meetings := h.backend.Meetings()
	if len(meetings) != 1 || meetings[0].Username != "atrium" || len(meetings[0].Days) != 2 {
		t.Fatalf("unexpected meetings %+v", meetings)
	}

	h.mustRun("meetings", "edit", meetings[0].ID, "--room", "Garden")
	got := h.backend.Meetings()[0]
	if got.RoomName != "Garden" || got.Username != "atrium" || got.StartTime != "09:00" {
		t.Fatalf("edit must only change the given fields, got %+v", got)
	}

	if res := h.run("meetings", "edit", "999", "--room", "x"); res.code != 1 {
		t.Fatalf("expected editing an unknown meeting to fail, got %+v", res)
	}
}

func TestMeetingsTableOutput(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.login(application.RoleAdmin, "root")
	h.backend.SeedMeetings(testfixtures.Meetings(2)...)

	out := h.mustRun("meetings", "list").stdout
	for _, want := range []string{"ROOM", "APPROVER", "Room 1", "room2", "enabled", "page 1 of 1, 2 items, 5 per page"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table output:\n%s", want, out)
		}
	}
}

func TestUsersToggleAndDelete(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.login(application.RoleAdmin, "root")
	h.backend.SeedUsers(testfixtures.Users(2)...)

	res := h.mustRun("users", "toggle", "1")
	if !strings.Contains(res.stderr, application.MsgUserDisabled) {
		t.Fatalf("expected the disabled notice, got %q", res.stderr)
	}
	if h.backend.Users()[0].Status.Enabled() {
		t.Fatalf("expected user 1 disabled")
	}

	res = h.run("users", "delete", "77")
	if res.code != 1 || !strings.Contains(res.stderr, application.MsgUserNotFound) {
		t.Fatalf("expected user not found, got %+v", res)
	}
	if res := h.run("users", "delete"); res.code != 2 {
		t.Fatalf("expected a usage error without an id, got %+v", res)
	}

	h.mustRun("users", "delete", "2")
	if users := h.backend.Users(); len(users) != 1 {
		t.Fatalf("expected one user left, got %+v", users)
	}
}

func TestExportWritesWorkbook(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.login(application.RoleAdmin, "root")
	path := filepath.Join(h.dir, "meetings.xlsx")

	res := h.mustRun("meetings", "export", "--file", path)
	if !strings.Contains(res.stderr, application.MsgNoMeetingData) {
		t.Fatalf("expected the empty export notice, got %q", res.stderr)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("an empty export must not write a file")
	}

	h.backend.SeedMeetings(testfixtures.Meetings(3)...)
	res = h.mustRun("meetings", "export", "--file", path)
	if !strings.Contains(res.stdout, "meetings.xlsx") {
		t.Fatalf("expected the path printed, got %q", res.stdout)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read workbook: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatalf("expected an xlsx (zip) file")
	}
}

func TestScheduleSetAndShow(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.login(application.RoleMeeting, "boardroom")
	h.backend.SetPendingCount(1)

	res := h.mustRun("schedule", "set", "--days", "mon,fri", "--start", "09:00", "--end", "10:00", "-o", "yaml")
	if !strings.Contains(res.stdout, "update_mode: true") {
		t.Fatalf("expected update mode after the first save:\n%s", res.stdout)
	}
	for _, want := range []string{application.PendingNotice(1), application.MsgScheduleAdded} {
		if !strings.Contains(res.stderr, want) {
			t.Fatalf("expected %q in notices, got %q", want, res.stderr)
		}
	}

	shown := decodeJSON[scheduleOutput](t, h.mustRun("schedule", "show", "--upcoming", "3", "-o", "json").stdout)
	if len(shown.Saved.Days) != 2 || len(shown.Upcoming) != 3 {
		t.Fatalf("unexpected schedule %+v", shown)
	}
	for _, slot := range shown.Upcoming {
		if slot.Day != time.Monday && slot.Day != time.Friday {
			t.Fatalf("unexpected slot day %v", slot.Day)
		}
	}

	res = h.mustRun("schedule", "set", "--days", "tue", "--start", "14:00", "--end", "15:00")
	if !strings.Contains(res.stderr, application.MsgScheduleUpdated) {
		t.Fatalf("expected the update notice, got %q", res.stderr)
	}

	if res := h.run("schedule", "set", "--days", "someday", "--start", "09:00", "--end", "10:00"); res.code != 1 {
		t.Fatalf("expected an unknown day to fail, got %+v", res)
	}
}

func TestAdminCommandsRequireAdminSession(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.login(application.RoleMeeting, "boardroom")

	res := h.run("meetings", "list")
	if res.code != 1 || !strings.Contains(res.stderr, "missing_credentials") {
		t.Fatalf("expected a missing admin session, got %+v", res)
	}
	if h.backend.Count(testfixtures.RouteListMeetings) != 0 {
		t.Fatalf("the list must not be fetched without a session")
	}
}

func TestUsageErrors(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "help", args: []string{"--help"}, want: 0},
		{name: "group help", args: []string{"meetings", "--help"}, want: 0},
		{name: "unknown command", args: []string{"rooms"}, want: 2},
		{name: "missing subcommand", args: []string{"users"}, want: 2},
		{name: "unknown flag", args: []string{"meetings", "list", "--colour"}, want: 2},
		{name: "unknown output", args: []string{"-o", "xml", "whoami"}, want: 2},
		{name: "login without token", args: []string{"login", "--username", "root"}, want: 2},
		{name: "bad role", args: []string{"logout", "--role", "auditor"}, want: 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if res := h.run(tc.args...); res.code != tc.want {
				t.Fatalf("expected exit %d, got %+v", tc.want, res)
			}
		})
	}
	if _, err := os.Stat(h.cfg.StateDSN); !os.IsNotExist(err) {
		t.Fatalf("usage errors must not create the state file")
	}
}

func TestSuggestCommand(t *testing.T) {
	t.Parallel()

	cmds := []*command{{name: "meetings"}, {name: "users"}, {name: "schedule"}}
	if got := suggestCommand("meet", cmds); got != "meetings" {
		t.Fatalf("expected meetings, got %q", got)
	}
	if got := suggestCommand("x", cmds); got != "" {
		t.Fatalf("expected no suggestion, got %q", got)
	}
}
