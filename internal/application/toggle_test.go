package application

import (
	"context"
	"net/http"
	"testing"
)

func TestMeetingToggleRoundTrip(t *testing.T) {
	t.Parallel()

	api := newFakeMeetingAPI(numberedMeetings(1)...)
	screen := mountedMeetingScreen(api, &NoticeBoard{})
	ctx := context.Background()

	if err := screen.Toggle(ctx, "m-1", StatusEnabled); err != nil {
		t.Fatalf("disable: %v", err)
	}
	m, _ := screen.Find("m-1")
	if m.Status != StatusDisabled {
		t.Fatalf("expected disabled after first toggle, got %v", m.Status)
	}

	if err := screen.Toggle(ctx, "m-1", m.Status); err != nil {
		t.Fatalf("enable: %v", err)
	}
	m, _ = screen.Find("m-1")
	if m.Status != StatusEnabled {
		t.Fatalf("expected enabled after second toggle, got %v", m.Status)
	}

	calls := api.callLog()
	if calls[len(calls)-4] != "disable:m-1" || calls[len(calls)-2] != "enable:m-1" {
		t.Fatalf("expected disable then enable each followed by a refetch, got %v", calls)
	}
}

func TestUserToggleNotices(t *testing.T) {
	t.Parallel()

	api := newFakeUserAPI(User{ID: "u-1", Name: "Asha", Email: "asha@example.org", Status: StatusEnabled})
	board := &NoticeBoard{}
	screen := mountedUserScreen(api, board)
	ctx := context.Background()

	if err := screen.Toggle(ctx, "u-1", StatusEnabled); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := lastNotice(board); got.Level != NoticeWarning || got.Text != MsgUserDisabled {
		t.Fatalf("expected disabled warning, got %+v", got)
	}

	if err := screen.Toggle(ctx, "u-1", StatusDisabled); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := lastNotice(board); got.Level != NoticeSuccess || got.Text != MsgUserEnabled {
		t.Fatalf("expected enabled success, got %+v", got)
	}
}

func TestToggleFailureKeepsState(t *testing.T) {
	t.Parallel()

	api := newFakeUserAPI(User{ID: "u-1", Name: "Asha", Email: "asha@example.org", Status: StatusEnabled})
	board := &NoticeBoard{}
	screen := mountedUserScreen(api, board)
	api.fail("disable:u-1", rejected(http.StatusInternalServerError, "boom"))
	before := len(api.callLog())

	if err := screen.Toggle(context.Background(), "u-1", StatusEnabled); err == nil {
		t.Fatalf("expected toggle error")
	}
	if got := lastNotice(board); got.Level != NoticeError || got.Text != MsgUserToggleFail {
		t.Fatalf("expected toggle failure notice, got %+v", got)
	}
	u, _ := screen.Find("u-1")
	if u.Status != StatusEnabled {
		t.Fatalf("expected status to be unchanged")
	}
	if calls := api.callLog(); len(calls) != before+1 {
		t.Fatalf("expected no refetch after a failure, got %v", calls[before:])
	}
}

func TestToggleRequiresID(t *testing.T) {
	t.Parallel()

	called := false
	toggle := NewStatusToggle(func(context.Context, string, bool) error {
		called = true
		return nil
	}, nil, ToggleOptions{})

	if err := toggle.Toggle(context.Background(), "  ", StatusEnabled); err == nil {
		t.Fatalf("expected validation error")
	}
	if called {
		t.Fatalf("expected no request for a blank id")
	}
}
