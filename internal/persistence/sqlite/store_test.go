package sqlite_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/example/roombook-console/internal/application"
	"github.com/example/roombook-console/internal/persistence"
	"github.com/example/roombook-console/internal/persistence/sqlite"
	"github.com/example/roombook-console/internal/testfixtures"
)

func TestStoreSessionRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)

	session := testfixtures.NewSessionFixture(testfixtures.WithSessionToken("header.payload.signature")).Application()
	if err := harness.Store.SaveSession(ctx, session); err != nil {
		t.Fatalf("SaveSession returned error: %v", err)
	}

	record, err := harness.Sessions.GetSession(ctx, string(session.Role))
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	if bytes.Contains(record.SealedToken, []byte(session.Token)) {
		t.Fatalf("token stored in clear text")
	}

	loaded, err := harness.Store.LoadSession(ctx, session.Role)
	if err != nil {
		t.Fatalf("LoadSession returned error: %v", err)
	}
	if loaded != session {
		t.Fatalf("expected %+v, got %+v", session, loaded)
	}

	if err := harness.Store.ClearSession(ctx, session.Role); err != nil {
		t.Fatalf("ClearSession returned error: %v", err)
	}
	empty, err := harness.Store.LoadSession(ctx, session.Role)
	if err != nil {
		t.Fatalf("LoadSession after clear returned error: %v", err)
	}
	if empty.Complete() {
		t.Fatalf("expected no session after clear, got %+v", empty)
	}
}

func TestStoreRejectsTokenSealedElsewhere(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)

	other, err := sqlite.NewTokenSealer("a different secret")
	if err != nil {
		t.Fatalf("NewTokenSealer returned error: %v", err)
	}
	sealed, err := other.Seal(string(application.RoleAdmin), "stolen")
	if err != nil {
		t.Fatalf("Seal returned error: %v", err)
	}
	record := testfixtures.NewSessionFixture(testfixtures.WithSealedToken(sealed)).Persistence()
	if err := harness.Sessions.UpsertSession(ctx, record); err != nil {
		t.Fatalf("UpsertSession returned error: %v", err)
	}

	if _, err := harness.Store.LoadSession(ctx, application.RoleAdmin); !errors.Is(err, persistence.ErrSealed) {
		t.Fatalf("expected ErrSealed, got %v", err)
	}
}

func TestStoreSessionFeedsGuard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)
	factory := testfixtures.NewServiceFactory(t)

	session := factory.SignIn(t, application.RoleMeeting, "boardroom")
	if err := harness.Store.SaveSession(ctx, session); err != nil {
		t.Fatalf("SaveSession returned error: %v", err)
	}
	guard := application.NewSessionGuard(application.RoleMeeting, harness.Store, factory.Client(t), factory.Clock.NowFunc())

	if _, err := guard.Check(ctx); err != nil {
		t.Fatalf("Check returned error: %v", err)
	}

	factory.Backend.RevokeToken(application.RoleMeeting, session.Token)
	if _, err := guard.Check(ctx); !errors.Is(err, application.ErrSessionRequired) {
		t.Fatalf("expected a redirect once the backend rejects the token, got %v", err)
	}
	if _, err := harness.Sessions.GetSession(ctx, string(application.RoleMeeting)); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected the stored session to be destroyed, got %v", err)
	}
}

func TestStoreScreenState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)

	state, err := harness.Store.ScreenState(ctx, "meetings")
	if err != nil {
		t.Fatalf("ScreenState returned error: %v", err)
	}
	if state.PageSize != 0 || state.Filtered() {
		t.Fatalf("expected empty state, got %+v", state)
	}

	if err := harness.Store.SavePageSize(ctx, "meetings", 20); err != nil {
		t.Fatalf("SavePageSize returned error: %v", err)
	}
	filter := application.Filter{Category: application.CategoryRoomName, Text: "board"}
	if err := harness.Store.SaveFilter(ctx, "meetings", filter); err != nil {
		t.Fatalf("SaveFilter returned error: %v", err)
	}
	if err := harness.Store.SavePageSize(ctx, "users", 30); err != nil {
		t.Fatalf("SavePageSize returned error: %v", err)
	}
	if err := harness.Store.SavePageSize(ctx, "users", 0); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation for size 0, got %v", err)
	}

	state, err = harness.Store.ScreenState(ctx, "meetings")
	if err != nil {
		t.Fatalf("ScreenState returned error: %v", err)
	}
	if state.PageSize != 20 || state.Filter != filter {
		t.Fatalf("unexpected state %+v", state)
	}

	if err := harness.Store.ForgetScreen(ctx, "meetings"); err != nil {
		t.Fatalf("ForgetScreen returned error: %v", err)
	}
	state, _ = harness.Store.ScreenState(ctx, "meetings")
	if state.PageSize != 0 || state.Filtered() {
		t.Fatalf("expected forgotten state, got %+v", state)
	}
	users, _ := harness.Store.ScreenState(ctx, "users")
	if users.PageSize != 30 {
		t.Fatalf("users state must survive, got %+v", users)
	}
}
