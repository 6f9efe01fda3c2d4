package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/roombook-console/internal/application"
	"github.com/example/roombook-console/internal/config"
	httptransport "github.com/example/roombook-console/internal/http"
	"github.com/example/roombook-console/internal/logging"
	"github.com/example/roombook-console/internal/testfixtures"
)

func newTestHandler(t *testing.T, fb *testfixtures.FakeBackend) http.Handler {
	t.Helper()
	cfg := config.Config{BackendURL: fb.URL(), HTTPPort: 8081, DefaultPageSize: 10, LogLevel: slog.LevelDebug}
	handler, err := newHandler(cfg, logging.New(io.Discard, cfg.LogLevel), time.Now)
	if err != nil {
		t.Fatalf("newHandler: %v", err)
	}
	return handler
}

func TestNewHandlerRejectsBadBackendURL(t *testing.T) {
	t.Parallel()

	_, err := newHandler(config.Config{BackendURL: "ftp://booking"}, logging.New(io.Discard, slog.LevelInfo), time.Now)
	if err == nil {
		t.Fatalf("expected an error for a non-http backend url")
	}
}

func TestConsoleValidatesOnSignInAndEveryMount(t *testing.T) {
	t.Parallel()

	fb := testfixtures.NewFakeBackend(t)
	fb.SeedMeetings(testfixtures.Meetings(3)...)
	token := testfixtures.MintToken("root", application.RoleAdmin, time.Now().Add(time.Hour))
	fb.AcceptToken(application.RoleAdmin, token)
	handler := newTestHandler(t, fb)

	body, _ := json.Marshal(map[string]string{"role": "admin", "username": "root", "token": token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/console/session", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected sign in to succeed, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := fb.Count(testfixtures.RouteValidateToken); got != 1 {
		t.Fatalf("expected sign in to validate once, got %d", got)
	}

	get := func(path string) {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set(httptransport.UsernameHeader, "root")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d: %s", path, rec.Code, rec.Body.String())
		}
	}

	for i := 0; i < 3; i++ {
		get("/console/meetings")
	}
	if got := fb.Count(testfixtures.RouteValidateToken); got != 2 {
		t.Fatalf("expected the meetings mount to revalidate and later requests to use the cache, got %d", got)
	}
	if got := fb.Count(testfixtures.RouteListMeetings); got != 1 {
		t.Fatalf("expected the meetings screen mounted once, got %d fetches", got)
	}

	get("/console/users")
	get("/console/users")
	if got := fb.Count(testfixtures.RouteValidateToken); got != 3 {
		t.Fatalf("expected the users mount to revalidate once, got %d", got)
	}
}

func TestNewServerUsesConfiguredPort(t *testing.T) {
	t.Parallel()

	server := newServer(config.Config{HTTPPort: 9090}, http.NotFoundHandler())
	if server.Addr != ":9090" {
		t.Fatalf("unexpected addr %q", server.Addr)
	}
	if server.ReadHeaderTimeout == 0 || server.WriteTimeout == 0 {
		t.Fatalf("expected server timeouts to be set")
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	fb := testfixtures.NewFakeBackend(t)
	server := newServer(config.Config{}, newTestHandler(t, fb))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	logger := logging.New(io.Discard, slog.LevelInfo)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- serve(ctx, server, ln, logger) }()

	resp, err := waitForHealthz("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		cancel()
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from healthz, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("serve did not return after cancel")
	}
}

func waitForHealthz(url string) (*http.Response, error) {
	var lastErr error
	for i := 0; i < 50; i++ {
		resp, err := http.Get(url)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		time.Sleep(20 * time.Millisecond)
	}
	return nil, lastErr
}
