// Package backend is the HTTP client for the meeting-room booking API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/roombook-console/internal/application"
	"github.com/example/roombook-console/internal/logging"
)

const (
	// RequestIDHeader carries a fresh id on every outgoing call.
	RequestIDHeader = "X-Request-ID"
	// TokenCookie is the cookie the booking API reads the credential from.
	TokenCookie = "token"

	maxResponseBytes = 8 << 20
)

// Options tunes a Client.
type Options struct {
	// HTTPClient overrides the transport. Nil means a dedicated client.
	HTTPClient *http.Client
	// Timeout bounds each call. Zero keeps the transport default.
	Timeout time.Duration
	Logger  *slog.Logger
	// RequestID generates X-Request-ID values. Nil means uuid v4.
	RequestID func() string
}

// Client talks to the booking API on behalf of one console process. The
// credential is passed per call; the client holds no session state.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	logger    *slog.Logger
	requestID func() string
}

// New builds a client rooted at baseURL.
func New(baseURL string, opts Options) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("backend: base url is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("backend: parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("backend: base url %q must be http or https", baseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if opts.Timeout > 0 {
		clone := *httpClient
		clone.Timeout = opts.Timeout
		httpClient = &clone
	}
	requestID := opts.RequestID
	if requestID == nil {
		requestID = func() string { return uuid.NewString() }
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{baseURL: parsed, http: httpClient, logger: logger, requestID: requestID}, nil
}

func (c *Client) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = c.logger
	}
	pairs := append([]any{"component", "backend.Client", "operation", operation}, attrs...)
	return logger.With(pairs...)
}

type call struct {
	operation string
	method    string
	path      string
	token     string
	body      any
	// exactOK rejects every status other than 200.
	exactOK bool
}

// do performs one call and returns the raw success body.
func (c *Client) do(ctx context.Context, cl call) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("backend: client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var reader io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("backend: encode %s body: %w", cl.operation, err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL.JoinPath(cl.path)
	req, err := http.NewRequestWithContext(ctx, cl.method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("backend: build %s request: %w", cl.operation, err)
	}
	requestID := c.requestID()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
		req.AddCookie(&http.Cookie{Name: TokenCookie, Value: cl.token})
	}

	logger := c.log(ctx, cl.operation, "method", cl.method, "path", cl.path, "request_id", requestID)
	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		tErr := &TransportError{Method: cl.method, Path: cl.path, Err: err}
		logger.ErrorContext(ctx, "backend unreachable", "error", err, "error_kind", application.ErrorKind(tErr))
		return nil, tErr
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Method: cl.method, Path: cl.path, Err: fmt.Errorf("read body: %w", err)}
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if cl.exactOK {
		ok = resp.StatusCode == http.StatusOK
	}
	if !ok {
		apiErr := &APIError{Method: cl.method, Path: cl.path, Status: resp.StatusCode, Message: errorMessage(data)}
		logger.WarnContext(ctx, "backend rejected call",
			"status", resp.StatusCode,
			"error", apiErr,
			"error_kind", application.ErrorKind(apiErr),
			"duration_ms", time.Since(started).Milliseconds(),
		)
		return nil, apiErr
	}

	logger.DebugContext(ctx, "backend call completed", "status", resp.StatusCode, "duration_ms", time.Since(started).Milliseconds())
	return data, nil
}

func decodeInto(operation string, data []byte, out any) error {
	if err := json.Unmarshal(bytes.TrimSpace(data), out); err != nil {
		return fmt.Errorf("backend: decode %s: %v: %w", operation, err, ErrMalformedRecord)
	}
	return nil
}

func statusPath(base, id string, enable bool) string {
	action := "disable"
	if enable {
		action = "enable"
	}
	return base + "/" + action + "/" + url.PathEscape(id)
}

func requireID(operation, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("backend: %s requires an id", operation)
	}
	return id, nil
}
