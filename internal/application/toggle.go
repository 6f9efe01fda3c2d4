package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// StatusSetter flips one record's status remotely. Implementations report
// success only for an HTTP 200 answer.
type StatusSetter func(ctx context.Context, id string, enable bool) error

// ToggleOptions configures a StatusToggle.
type ToggleOptions struct {
	Name string
	// EnabledMessage and DisabledMessage are shown after a confirmed flip.
	EnabledMessage  string
	DisabledMessage string
	// FailureMessage replaces the status based failure text when set.
	FailureMessage string
	Notifier       Notifier
	Logger         *slog.Logger
}

// StatusToggle switches a record between enabled and disabled. It never
// flips local state; a confirmed change is followed by a refetch.
type StatusToggle struct {
	set     StatusSetter
	refetch func(ctx context.Context) error
	opts    ToggleOptions
	logger  *slog.Logger
}

// NewStatusToggle wires a toggle that calls set and then refetch.
func NewStatusToggle(set StatusSetter, refetch func(ctx context.Context) error, opts ToggleOptions) *StatusToggle {
	if opts.Name == "" {
		opts.Name = "status"
	}
	return &StatusToggle{set: set, refetch: refetch, opts: opts, logger: defaultLogger(opts.Logger)}
}

// Toggle requests the opposite of current for the record id.
func (t *StatusToggle) Toggle(ctx context.Context, id string, current Status) error {
	if t == nil || t.set == nil {
		return fmt.Errorf("StatusToggle is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		vErr := &ValidationError{}
		vErr.add("id", "id is required")
		return vErr
	}

	enable := !current.Enabled()
	logger := componentLogger(ctx, t.logger, "StatusToggle", "Toggle", "target", t.opts.Name, "id", id, "enable", enable)

	if err := t.set(ctx, id, enable); err != nil {
		logger.ErrorContext(ctx, "status change failed", "error", err, "error_kind", ErrorKind(err))
		text := t.opts.FailureMessage
		if text == "" {
			text = failureNotice(err)
		}
		notify(ctx, t.opts.Notifier, NoticeError, text)
		return err
	}

	logger.InfoContext(ctx, "status changed")
	if enable {
		notify(ctx, t.opts.Notifier, NoticeSuccess, t.opts.EnabledMessage)
	} else {
		notify(ctx, t.opts.Notifier, NoticeWarning, t.opts.DisabledMessage)
	}

	if t.refetch == nil {
		return nil
	}
	return t.refetch(ctx)
}
