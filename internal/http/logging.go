package http

import (
	"context"
	"log/slog"

	"github.com/example/roombook-console/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// handlerLogger prefers the request logger installed by RequestLogger and
// tags it with the handler, the operation, and the signed in account.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = defaultLogger(fallback)
	}

	pairs := make([]any, 0, 6+len(attrs))
	pairs = append(pairs, "handler", handlerName)
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if session, ok := SessionFromContext(ctx); ok {
		pairs = append(pairs, "role", session.Role, "username", session.Username)
	}
	return logger.With(append(pairs, attrs...)...)
}
