package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/roombook-console/internal/application"
	consolehttp "github.com/example/roombook-console/internal/http"
	"github.com/example/roombook-console/internal/testfixtures"
)

type response struct {
	Data    json.RawMessage      `json:"data"`
	Notices []application.Notice `json:"notices"`
	Error   string               `json:"error"`
	Errors  map[string]string    `json:"errors"`
}

type requestOption func(*http.Request)

func asBrowser(session application.Session) requestOption {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: consolehttp.TokenCookie, Value: session.Token})
		r.AddCookie(&http.Cookie{Name: session.Role.UsernameKey(), Value: session.Username})
	}
}

func asClient(session application.Session) requestOption {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+session.Token)
		r.Header.Set(consolehttp.UsernameHeader, session.Username)
	}
}

func withHeader(name, value string) requestOption {
	return func(r *http.Request) { r.Header.Set(name, value) }
}

func serve(t *testing.T, handler http.Handler, method, path string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	var out response
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func hasNotice(notices []application.Notice, level application.NoticeLevel, text string) bool {
	for _, n := range notices {
		if n.Level == level && n.Text == text {
			return true
		}
	}
	return false
}

func expiredCookies(rec *httptest.ResponseRecorder) map[string]bool {
	out := make(map[string]bool)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			out[c.Name] = true
		}
	}
	return out
}

func TestRequireSessionRedirects(t *testing.T) {
	t.Parallel()

	factory := testfixtures.NewServiceFactory(t)
	console := factory.Console(t)
	revoked := factory.SignIn(t, application.RoleAdmin, "root")
	factory.Backend.RevokeToken(application.RoleAdmin, revoked.Token)

	tests := []struct {
		name         string
		opts         []requestOption
		wantStatus   int
		wantValidate bool
	}{
		{
			name:       "missing credentials answer json clients with 401",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "html clients are sent to the entry route",
			opts:       []requestOption{withHeader("Accept", "text/html,application/xhtml+xml")},
			wantStatus: http.StatusSeeOther,
		},
		{
			name:       "token without username is incomplete",
			opts:       []requestOption{withHeader("Authorization", "Bearer "+revoked.Token)},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:         "revoked token is rejected by the backend",
			opts:         []requestOption{asBrowser(revoked)},
			wantStatus:   http.StatusUnauthorized,
			wantValidate: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			factory.Backend.ResetRequests()
			rec := serve(t, console.Handler, http.MethodGet, "/console/meetings", nil, tc.opts...)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			switch tc.wantStatus {
			case http.StatusSeeOther:
				if loc := rec.Header().Get("Location"); loc != "/" {
					t.Fatalf("expected redirect to /, got %q", loc)
				}
			case http.StatusUnauthorized:
				var body map[string]string
				if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["redirect"] != "/" {
					t.Fatalf(`expected {"redirect":"/"}, got %s`, rec.Body.String())
				}
			}
			if got := factory.Backend.Count(testfixtures.RouteValidateToken) > 0; got != tc.wantValidate {
				t.Fatalf("validate call made = %v, want %v", got, tc.wantValidate)
			}
			if factory.Backend.Count(testfixtures.RouteListMeetings) != 0 {
				t.Fatalf("guarded screen must not fetch")
			}
			expired := expiredCookies(rec)
			if !expired[consolehttp.TokenCookie] || !expired["admin_username"] {
				t.Fatalf("expected console cookies expired, got %v", expired)
			}
		})
	}
}

func TestRequireSessionAcceptsCookiesAndHeaders(t *testing.T) {
	t.Parallel()

	factory := testfixtures.NewServiceFactory(t)
	console := factory.Console(t)
	session := factory.SignIn(t, application.RoleAdmin, "root")

	for name, opt := range map[string]requestOption{
		"cookies": asBrowser(session),
		"headers": asClient(session),
	} {
		rec := serve(t, console.Handler, http.MethodGet, "/console/meetings", nil, opt)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", name, rec.Code, rec.Body.String())
		}
		if rec.Header().Get(consolehttp.RequestIDHeader) == "" {
			t.Fatalf("%s: expected a request id on the response", name)
		}
	}
}

func TestRequireSessionChecksRole(t *testing.T) {
	t.Parallel()

	factory := testfixtures.NewServiceFactory(t)
	console := factory.Console(t)
	meeting := factory.SignIn(t, application.RoleMeeting, "boardroom")

	rec := serve(t, console.Handler, http.MethodGet, "/console/users", nil, asClient(meeting))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("a meeting token must not open admin screens, got %d", rec.Code)
	}
}

func TestRequestLoggerKeepsIncomingRequestID(t *testing.T) {
	t.Parallel()

	factory := testfixtures.NewServiceFactory(t)
	console := factory.Console(t)

	rec := serve(t, console.Handler, http.MethodGet, "/console/meetings", nil, withHeader(consolehttp.RequestIDHeader, "trace-42"))
	if got := rec.Header().Get(consolehttp.RequestIDHeader); got != "trace-42" {
		t.Fatalf("expected incoming request id echoed, got %q", got)
	}
}

func TestHealthzBypassesSession(t *testing.T) {
	t.Parallel()

	factory := testfixtures.NewServiceFactory(t)
	console := factory.Console(t)

	rec := serve(t, console.Handler, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Fatalf("unexpected healthz answer %d %q", rec.Code, rec.Body.String())
	}
	if len(factory.Backend.Requests()) != 0 {
		t.Fatalf("healthz must not reach the backend")
	}
	if rec := serve(t, console.Handler, http.MethodPost, "/healthz", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for POST /healthz, got %d", rec.Code)
	}
}
