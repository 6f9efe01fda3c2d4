package http

import (
	"context"

	"github.com/example/roombook-console/internal/application"
)

type contextKey string

const (
	credentialsContextKey contextKey = "credentials"
	sessionContextKey     contextKey = "session"
	noticesContextKey     contextKey = "notices"
	recordIDContextKey    contextKey = "record_id"
)

// credentials are the raw cookie or header values presented with a request.
type credentials struct {
	Token    string
	Username string
}

func contextWithCredentials(ctx context.Context, creds credentials) context.Context {
	return context.WithValue(ctx, credentialsContextKey, creds)
}

func credentialsFromContext(ctx context.Context) (credentials, bool) {
	creds, ok := ctx.Value(credentialsContextKey).(credentials)
	return creds, ok
}

// ContextWithSession returns a derived context carrying the validated session.
func ContextWithSession(ctx context.Context, session application.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext extracts the session RequireSession validated.
func SessionFromContext(ctx context.Context) (application.Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(application.Session)
	return session, ok
}

// ContextWithRecordID injects the record identifier resolved from the request path.
func ContextWithRecordID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, recordIDContextKey, id)
}

// RecordIDFromContext extracts a record identifier previously associated with the context.
func RecordIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(recordIDContextKey).(string)
	return id, ok
}

// contextWithNotices routes every notice raised while serving ctx to board.
func contextWithNotices(ctx context.Context, board *application.NoticeBoard) context.Context {
	ctx = context.WithValue(ctx, noticesContextKey, board)
	return application.WithNotifier(ctx, board)
}

func noticesFromContext(ctx context.Context) *application.NoticeBoard {
	board, _ := ctx.Value(noticesContextKey).(*application.NoticeBoard)
	return board
}

// requestSessionStore exposes the request's credentials to a SessionGuard.
// The console keeps no session of its own: the browser's cookies are the
// store, and a redirect response expires them.
type requestSessionStore struct{}

func (requestSessionStore) LoadSession(ctx context.Context, role application.Role) (application.Session, error) {
	creds, _ := credentialsFromContext(ctx)
	return application.Session{Token: creds.Token, Username: creds.Username, Role: role}, nil
}

func (requestSessionStore) SaveSession(context.Context, application.Session) error {
	return nil
}

func (requestSessionStore) ClearSession(context.Context, application.Role) error {
	return nil
}
