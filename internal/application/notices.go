package application

import (
	"context"
	"sync"
)

// NoticeLevel mirrors the toast severities shown by the console.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a short user facing message produced by a console action.
type Notice struct {
	Level NoticeLevel `json:"level" yaml:"level"`
	Text  string      `json:"text" yaml:"text"`
}

// Notifier receives notices as they are produced.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Notice)

// Notify implements Notifier.
func (f NotifierFunc) Notify(n Notice) {
	if f != nil {
		f(n)
	}
}

// NoticeBoard collects notices until they are drained.
type NoticeBoard struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify implements Notifier.
func (b *NoticeBoard) Notify(n Notice) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.notices = append(b.notices, n)
	b.mu.Unlock()
}

// Notices returns a copy of the collected notices.
func (b *NoticeBoard) Notices() []Notice {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Notice(nil), b.notices...)
}

// Drain returns the collected notices and empties the board.
func (b *NoticeBoard) Drain() []Notice {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	return out
}

type notifierKey struct{}

// WithNotifier routes notices produced while serving ctx to n instead of the
// component's own notifier.
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, notifierKey{}, n)
}

// NotifierFromContext extracts a notifier previously attached with WithNotifier.
func NotifierFromContext(ctx context.Context) Notifier {
	if ctx == nil {
		return nil
	}
	n, _ := ctx.Value(notifierKey{}).(Notifier)
	return n
}

func notify(ctx context.Context, fallback Notifier, level NoticeLevel, text string) {
	if text == "" {
		return
	}
	n := NotifierFromContext(ctx)
	if n == nil {
		n = fallback
	}
	if n == nil {
		return
	}
	n.Notify(Notice{Level: level, Text: text})
}
