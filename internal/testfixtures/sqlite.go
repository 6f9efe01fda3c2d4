package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/roombook-console/internal/persistence"
	"github.com/example/roombook-console/internal/persistence/sqlite"
	"github.com/example/roombook-console/internal/persistence/sqlite/migration"
)

// TestStateSecret seals tokens in harness databases.
const TestStateSecret = "correct horse battery staple"

// SQLiteHarness provides a migrated state database in a temporary directory
// together with the Store built on it.
type SQLiteHarness struct {
	Sessions    persistence.SessionRepository
	Preferences persistence.PreferenceRepository
	Storage     *sqlite.Storage
	Store       *sqlite.Store
	Path        string

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens and migrates a state file under tb.TempDir. Close is
// also registered with tb.Cleanup.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "console-state.db")
	ctx := context.Background()
	clock := NewClock(ReferenceTime())

	storage, err := sqlite.Open(ctx, migration.DefaultSQLiteConfig(path), clock.NowFunc(), nil)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	if err := storage.Migrate(ctx); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}
	sealer, err := sqlite.NewTokenSealer(TestStateSecret)
	if err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to build sealer: %v", err)
	}

	harness := &SQLiteHarness{
		Sessions:    storage.SessionRepository,
		Preferences: storage.PreferenceRepository,
		Storage:     storage,
		Store:       sqlite.NewStoreFromStorage(storage, sealer, nil),
		Path:        path,
		cleanup: func() {
			_ = storage.Close()
		},
	}
	tb.Cleanup(harness.Close)
	return harness
}
