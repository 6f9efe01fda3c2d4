package testfixtures

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/example/roombook-console/internal/application"
)

// RecordedRequest is one call received by a FakeBackend.
type RecordedRequest struct {
	Route         string
	Method        string
	Path          string
	RequestID     string
	Authorization string
	TokenCookie   string
	Body          []byte
}

// Failure forces a route to answer with a fixed status and error text.
type Failure struct {
	Status  int
	Message string
}

// FakeBackend is an in-memory booking API served over httptest. It keeps
// meetings, users, and one meeting account's schedule, and records every
// request it receives.
type FakeBackend struct {
	server *httptest.Server
	ids    *IDGenerator

	mu            sync.Mutex
	tokens        map[application.Role]map[string]bool
	adminUsername string
	meetings      []application.Meeting
	users         []application.User
	profile       application.MeetingProfile
	selection     application.ScheduleSelection
	pending       int
	failures      map[string]Failure
	requests      []RecordedRequest
}

// NewFakeBackend starts a backend that is closed when the test ends.
func NewFakeBackend(tb testing.TB) *FakeBackend {
	tb.Helper()
	b := &FakeBackend{
		ids: NewIDGenerator(""),
		tokens: map[application.Role]map[string]bool{
			application.RoleAdmin:   {},
			application.RoleMeeting: {},
		},
		adminUsername: "root",
		profile: application.MeetingProfile{
			ID:       "1",
			Username: "boardroom",
		},
		failures: make(map[string]Failure),
	}
	b.server = httptest.NewServer(b.router())
	tb.Cleanup(b.server.Close)
	return b
}

// URL is the base URL to hand to backend.New.
func (b *FakeBackend) URL() string {
	return b.server.URL
}

// Close stops the server early, e.g. to simulate an unreachable backend.
func (b *FakeBackend) Close() {
	b.server.Close()
}

// AcceptToken makes token valid for role.
func (b *FakeBackend) AcceptToken(role application.Role, token string) {
	b.mu.Lock()
	b.tokens[role][token] = true
	b.mu.Unlock()
}

// RevokeToken makes token invalid for role.
func (b *FakeBackend) RevokeToken(role application.Role, token string) {
	b.mu.Lock()
	delete(b.tokens[role], token)
	b.mu.Unlock()
}

// SetAdminUsername changes the profile returned by /admin/details.
func (b *FakeBackend) SetAdminUsername(name string) {
	b.mu.Lock()
	b.adminUsername = name
	b.mu.Unlock()
}

// SeedMeetings appends meetings in server order. Missing ids are generated.
func (b *FakeBackend) SeedMeetings(meetings ...application.Meeting) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, m := range meetings {
		if m.ID == "" {
			m.ID = b.ids.Next()
		}
		b.ids.Observe(m.ID)
		m.Days = slices.Clone(m.Days)
		b.meetings = append(b.meetings, m)
	}
}

// SeedUsers appends users in server order. Missing ids are generated.
func (b *FakeBackend) SeedUsers(users ...application.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range users {
		if u.ID == "" {
			u.ID = b.ids.Next()
		}
		b.ids.Observe(u.ID)
		b.users = append(b.users, u)
	}
}

// SetMeetingProfile replaces the profile returned by /meeting/details.
func (b *FakeBackend) SetMeetingProfile(p application.MeetingProfile) {
	b.mu.Lock()
	b.profile = p
	b.mu.Unlock()
}

// SetSelection replaces the saved schedule of the meeting account.
func (b *FakeBackend) SetSelection(s application.ScheduleSelection) {
	b.mu.Lock()
	b.selection = application.ScheduleSelection{Days: slices.Clone(s.Days), StartTime: s.StartTime, EndTime: s.EndTime}
	b.mu.Unlock()
}

// SetPendingCount sets the value of /meeting/schedule/count.
func (b *FakeBackend) SetPendingCount(n int) {
	b.mu.Lock()
	b.pending = n
	b.mu.Unlock()
}

// Fail makes every later call to route answer with f until ClearFailures.
// Route names are listed in router.
func (b *FakeBackend) Fail(route string, f Failure) {
	b.mu.Lock()
	b.failures[route] = f
	b.mu.Unlock()
}

// ClearFailures removes every forced failure.
func (b *FakeBackend) ClearFailures() {
	b.mu.Lock()
	clear(b.failures)
	b.mu.Unlock()
}

// Meetings returns the stored meetings in server order.
func (b *FakeBackend) Meetings() []application.Meeting {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]application.Meeting, len(b.meetings))
	for i, m := range b.meetings {
		m.Days = slices.Clone(m.Days)
		out[i] = m
	}
	return out
}

// Users returns the stored users in server order.
func (b *FakeBackend) Users() []application.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.users)
}

// Selection returns the saved schedule of the meeting account.
func (b *FakeBackend) Selection() application.ScheduleSelection {
	b.mu.Lock()
	defer b.mu.Unlock()
	return application.ScheduleSelection{Days: slices.Clone(b.selection.Days), StartTime: b.selection.StartTime, EndTime: b.selection.EndTime}
}

// Requests returns every recorded request in arrival order.
func (b *FakeBackend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.requests)
}

// Count returns how many recorded requests hit route.
func (b *FakeBackend) Count(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.requests {
		if r.Route == route {
			n++
		}
	}
	return n
}

// ResetRequests forgets recorded requests.
func (b *FakeBackend) ResetRequests() {
	b.mu.Lock()
	b.requests = nil
	b.mu.Unlock()
}

// Route names accepted by Fail and Count.
const (
	RouteValidateToken  = "validateToken"
	RouteAdminDetails   = "adminDetails"
	RouteListMeetings   = "listMeetings"
	RouteSearchMeetings = "searchMeetings"
	RouteCreateMeeting  = "createMeeting"
	RouteUpdateMeeting  = "updateMeeting"
	RouteDeleteMeeting  = "deleteMeeting"
	RouteMeetingStatus  = "meetingStatus"
	RouteListUsers      = "listUsers"
	RouteSearchUsers    = "searchUsers"
	RouteCreateUser     = "createUser"
	RouteUpdateUser     = "updateUser"
	RouteDeleteUser     = "deleteUser"
	RouteUserStatus     = "userStatus"
	RouteMeetingDetails = "meetingDetails"
	RouteSelectedDays   = "selectedDays"
	RouteAddSchedule    = "addSchedule"
	RouteUpdateSchedule = "updateSchedule"
	RoutePendingCount   = "pendingCount"
)

func (b *FakeBackend) router() http.Handler {
	r := mux.NewRouter()
	r.Use(b.record, b.injectFailures)

	r.HandleFunc("/{role:admin|meeting}/validateToken", b.validateToken).Methods(http.MethodPost).Name(RouteValidateToken)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(b.requireToken(application.RoleAdmin))
	admin.HandleFunc("/details", b.adminDetails).Methods(http.MethodGet).Name(RouteAdminDetails)
	admin.HandleFunc("/meetings/details", b.listMeetings).Methods(http.MethodGet).Name(RouteListMeetings)
	admin.HandleFunc("/meetings/search", b.searchMeetings).Methods(http.MethodPost).Name(RouteSearchMeetings)
	admin.HandleFunc("/meetings/create", b.createMeeting).Methods(http.MethodPost).Name(RouteCreateMeeting)
	admin.HandleFunc("/meetings/update/{id}", b.updateMeeting).Methods(http.MethodPut).Name(RouteUpdateMeeting)
	admin.HandleFunc("/meetings/delete/{id}", b.deleteMeeting).Methods(http.MethodDelete).Name(RouteDeleteMeeting)
	admin.HandleFunc("/meetings/status/{action:enable|disable}/{id}", b.meetingStatus).Methods(http.MethodPut).Name(RouteMeetingStatus)
	admin.HandleFunc("/users/details", b.listUsers).Methods(http.MethodGet).Name(RouteListUsers)
	admin.HandleFunc("/users/search", b.searchUsers).Methods(http.MethodPost).Name(RouteSearchUsers)
	admin.HandleFunc("/users/create", b.createUser).Methods(http.MethodPost).Name(RouteCreateUser)
	admin.HandleFunc("/users/update/{id}", b.updateUser).Methods(http.MethodPut).Name(RouteUpdateUser)
	admin.HandleFunc("/users/delete/{id}", b.deleteUser).Methods(http.MethodDelete).Name(RouteDeleteUser)
	admin.HandleFunc("/user/status/{action:enable|disable}/{id}", b.userStatus).Methods(http.MethodPut).Name(RouteUserStatus)

	meeting := r.PathPrefix("/meeting").Subrouter()
	meeting.Use(b.requireToken(application.RoleMeeting))
	meeting.HandleFunc("/details", b.meetingDetails).Methods(http.MethodGet).Name(RouteMeetingDetails)
	meeting.HandleFunc("/selectedDays", b.selectedDays).Methods(http.MethodGet).Name(RouteSelectedDays)
	meeting.HandleFunc("/add-schedule", b.addSchedule).Methods(http.MethodPost).Name(RouteAddSchedule)
	meeting.HandleFunc("/update-schedule", b.updateSchedule).Methods(http.MethodPut).Name(RouteUpdateSchedule)
	meeting.HandleFunc("/schedule/count", b.pendingCount).Methods(http.MethodGet).Name(RoutePendingCount)

	return r
}

func (b *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		entry := RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			RequestID:     r.Header.Get("X-Request-ID"),
			Authorization: r.Header.Get("Authorization"),
			Body:          body,
		}
		if route := mux.CurrentRoute(r); route != nil {
			entry.Route = route.GetName()
		}
		if cookie, err := r.Cookie("token"); err == nil {
			entry.TokenCookie = cookie.Value
		}

		b.mu.Lock()
		b.requests = append(b.requests, entry)
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}
		b.mu.Lock()
		failure, forced := b.failures[name]
		b.mu.Unlock()
		if forced {
			if failure.Message == "" {
				w.WriteHeader(failure.Status)
				return
			}
			writeError(w, failure.Status, failure.Message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) requireToken(role application.Role) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token == "" {
				if cookie, err := r.Cookie("token"); err == nil {
					token = cookie.Value
				}
			}
			b.mu.Lock()
			ok := b.tokens[role][token]
			b.mu.Unlock()
			if !ok {
				writeError(w, http.StatusUnauthorized, "Access denied. Invalid token.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (b *FakeBackend) validateToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Token is required")
		return
	}
	role := application.Role(mux.Vars(r)["role"])
	b.mu.Lock()
	valid := b.tokens[role][body.Token]
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

func (b *FakeBackend) adminDetails(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	name := b.adminUsername
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"admin_username": name})
}

// wireMeeting renders a meeting the way the booking API does: numeric ids as
// numbers and days as one comma joined string.
func wireMeeting(m application.Meeting) map[string]any {
	return map[string]any{
		"meeting_id":       wireID(m.ID),
		"room_name":        m.RoomName,
		"authority_name":   m.AuthorityName,
		"meeting_username": m.Username,
		"start_time":       m.StartTime,
		"end_time":         m.EndTime,
		"meeting_days":     strings.Join(m.Days, ","),
		"meeting_status":   int(m.Status),
	}
}

func wireUser(u application.User) map[string]any {
	return map[string]any{
		"user_id":          wireID(u.ID),
		"user_name":        u.Name,
		"user_division":    u.Division,
		"user_designation": u.Designation,
		"user_email":       u.Email,
		"user_status":      int(u.Status),
	}
}

func wireID(id string) any {
	if n, err := strconv.Atoi(id); err == nil {
		return n
	}
	return id
}

func (b *FakeBackend) listMeetings(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	out := make([]map[string]any, 0, len(b.meetings))
	for _, m := range b.meetings {
		out = append(out, wireMeeting(m))
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *FakeBackend) searchMeetings(w http.ResponseWriter, r *http.Request) {
	var filter application.Filter
	if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid search request")
		return
	}
	text := strings.ToLower(strings.TrimSpace(filter.Text))

	b.mu.Lock()
	out := make([]map[string]any, 0)
	for _, m := range b.meetings {
		var fields []string
		switch filter.Category {
		case application.CategoryRoomName:
			fields = []string{m.RoomName}
		case application.CategoryApproverName:
			fields = []string{m.AuthorityName}
		case application.CategoryMeetingUsername:
			fields = []string{m.Username}
		default:
			fields = []string{m.RoomName, m.AuthorityName, m.Username}
		}
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field), text) {
				out = append(out, wireMeeting(m))
				break
			}
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *FakeBackend) createMeeting(w http.ResponseWriter, r *http.Request) {
	var draft application.MeetingDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid meeting details")
		return
	}
	if draft.StartTime != "" && draft.EndTime != "" && draft.EndTime <= draft.StartTime {
		writeError(w, http.StatusBadRequest, "End time must be greater than start time")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.meetingUsernameTakenLocked(draft.Username, "") {
		writeError(w, http.StatusBadRequest, "Meeting username already exists for another meeting.")
		return
	}
	b.meetings = append(b.meetings, application.Meeting{
		ID:            b.ids.Next(),
		RoomName:      draft.RoomName,
		AuthorityName: draft.AuthorityName,
		Username:      draft.Username,
		StartTime:     draft.StartTime,
		EndTime:       draft.EndTime,
		Days:          slices.Clone(draft.Days),
		Status:        application.StatusEnabled,
	})
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Meeting created successfully"})
}

func (b *FakeBackend) updateMeeting(w http.ResponseWriter, r *http.Request) {
	var draft application.MeetingDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid meeting details")
		return
	}
	id := mux.Vars(r)["id"]

	b.mu.Lock()
	defer b.mu.Unlock()
	idx := slices.IndexFunc(b.meetings, func(m application.Meeting) bool { return m.ID == id })
	if idx < 0 {
		writeError(w, http.StatusNotFound, "Meeting not found")
		return
	}
	current := b.meetings[idx]
	start, end := firstNonEmpty(draft.StartTime, current.StartTime), firstNonEmpty(draft.EndTime, current.EndTime)
	if start != "" && end != "" && end <= start {
		writeError(w, http.StatusBadRequest, "End time must be greater than start time")
		return
	}
	if b.meetingUsernameTakenLocked(draft.Username, id) {
		writeError(w, http.StatusBadRequest, "Meeting username already exists for another meeting.")
		return
	}

	updated := current
	updated.RoomName = firstNonEmpty(draft.RoomName, current.RoomName)
	updated.AuthorityName = firstNonEmpty(draft.AuthorityName, current.AuthorityName)
	updated.Username = firstNonEmpty(draft.Username, current.Username)
	updated.StartTime, updated.EndTime = start, end
	if len(draft.Days) > 0 {
		updated.Days = slices.Clone(draft.Days)
	}
	if updated.RoomName == current.RoomName && updated.AuthorityName == current.AuthorityName &&
		updated.Username == current.Username && start == current.StartTime && end == current.EndTime &&
		slices.Equal(updated.Days, current.Days) && draft.Password == "" {
		writeError(w, http.StatusBadRequest, "No fields to update.")
		return
	}
	b.meetings[idx] = updated
	writeJSON(w, http.StatusOK, map[string]string{"message": "Meeting updated successfully"})
}

func (b *FakeBackend) meetingUsernameTakenLocked(username, exceptID string) bool {
	for _, m := range b.meetings {
		if m.ID != exceptID && username != "" && strings.EqualFold(m.Username, username) {
			return true
		}
	}
	return false
}

func (b *FakeBackend) deleteMeeting(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := slices.IndexFunc(b.meetings, func(m application.Meeting) bool { return m.ID == id })
	if idx < 0 {
		writeError(w, http.StatusNotFound, "Meeting not found")
		return
	}
	b.meetings = slices.Delete(b.meetings, idx, idx+1)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Meeting deleted successfully"})
}

func (b *FakeBackend) meetingStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := slices.IndexFunc(b.meetings, func(m application.Meeting) bool { return m.ID == vars["id"] })
	if idx < 0 {
		writeError(w, http.StatusNotFound, "Meeting not found")
		return
	}
	b.meetings[idx].Status = statusFromAction(vars["action"])
	writeJSON(w, http.StatusOK, map[string]string{"message": "Meeting status updated"})
}

func (b *FakeBackend) listUsers(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	out := make([]map[string]any, 0, len(b.users))
	for _, u := range b.users {
		out = append(out, wireUser(u))
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *FakeBackend) searchUsers(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid search request")
		return
	}
	needle := strings.ToLower(strings.TrimSpace(body.Email))
	b.mu.Lock()
	out := make([]map[string]any, 0)
	for _, u := range b.users {
		if strings.Contains(strings.ToLower(u.Email), needle) {
			out = append(out, wireUser(u))
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *FakeBackend) createUser(w http.ResponseWriter, r *http.Request) {
	var draft application.UserDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user details")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.userEmailTakenLocked(draft.Email, "") {
		writeError(w, http.StatusBadRequest, "Email already exists")
		return
	}
	b.users = append(b.users, application.User{
		ID:          b.ids.Next(),
		Name:        draft.Name,
		Division:    draft.Division,
		Designation: draft.Designation,
		Email:       draft.Email,
		Status:      application.StatusEnabled,
	})
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User created successfully"})
}

func (b *FakeBackend) updateUser(w http.ResponseWriter, r *http.Request) {
	var draft application.UserDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user details")
		return
	}
	id := mux.Vars(r)["id"]
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := slices.IndexFunc(b.users, func(u application.User) bool { return u.ID == id })
	if idx < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
		return
	}
	if b.userEmailTakenLocked(draft.Email, id) {
		writeError(w, http.StatusBadRequest, "Email already exists")
		return
	}
	u := &b.users[idx]
	u.Name = firstNonEmpty(draft.Name, u.Name)
	u.Division = firstNonEmpty(draft.Division, u.Division)
	u.Designation = firstNonEmpty(draft.Designation, u.Designation)
	u.Email = firstNonEmpty(draft.Email, u.Email)
	writeJSON(w, http.StatusOK, map[string]string{"message": "User updated successfully"})
}

func (b *FakeBackend) userEmailTakenLocked(email, exceptID string) bool {
	for _, u := range b.users {
		if u.ID != exceptID && email != "" && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (b *FakeBackend) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := slices.IndexFunc(b.users, func(u application.User) bool { return u.ID == id })
	if idx < 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	b.users = slices.Delete(b.users, idx, idx+1)
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

func (b *FakeBackend) userStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := slices.IndexFunc(b.users, func(u application.User) bool { return u.ID == vars["id"] })
	if idx < 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	b.users[idx].Status = statusFromAction(vars["action"])
	writeJSON(w, http.StatusOK, map[string]string{"message": "User status updated"})
}

func (b *FakeBackend) meetingDetails(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	p := b.profile
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"meeting_id":           wireID(p.ID),
		"meeting_username":     p.Username,
		"meeting_days":         strings.Join(p.Days, ","),
		"formatted_start_time": p.FormattedStartTime,
		"formatted_end_time":   p.FormattedEndTime,
	})
}

func (b *FakeBackend) selectedDays(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	s := b.selection
	b.mu.Unlock()
	selected := make([]map[string]string, 0, 1)
	if len(s.Days) > 0 {
		selected = append(selected, map[string]string{
			"meeting_days": strings.Join(s.Days, ","),
			"start_time":   s.StartTime,
			"end_time":     s.EndTime,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"selectedDays": selected})
}

func (b *FakeBackend) addSchedule(w http.ResponseWriter, r *http.Request) {
	b.saveSchedule(w, r, false)
}

func (b *FakeBackend) updateSchedule(w http.ResponseWriter, r *http.Request) {
	b.saveSchedule(w, r, true)
}

func (b *FakeBackend) saveSchedule(w http.ResponseWriter, r *http.Request, update bool) {
	var req application.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid schedule request")
		return
	}
	if req.EndTime <= req.StartTime {
		writeError(w, http.StatusBadRequest, "End time must be greater than start time")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if req.MeetingID != "" && req.MeetingID != b.profile.ID {
		writeError(w, http.StatusNotFound, "Meeting not found")
		return
	}
	if update && len(b.selection.Days) == 0 {
		writeError(w, http.StatusNotFound, "Meeting not found")
		return
	}
	b.selection = application.ScheduleSelection{Days: slices.Clone(req.SelectedDays), StartTime: req.StartTime, EndTime: req.EndTime}
	b.pending++
	writeJSON(w, http.StatusOK, map[string]string{"message": "Schedule saved"})
}

func (b *FakeBackend) pendingCount(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	n := b.pending
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]int{"request_count": n})
}

func statusFromAction(action string) application.Status {
	if action == "enable" {
		return application.StatusEnabled
	}
	return application.StatusDisabled
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
