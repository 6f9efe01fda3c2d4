// Package sqlite persists the console's local state, the stored credentials
// and remembered screen settings, in a SQLite file.
package sqlite

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/roombook-console/internal/persistence/sqlite/migration"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Storage bundles the connection pool with the repositories built on it.
type Storage struct {
	*SessionRepository
	*PreferenceRepository

	pool   *ConnectionPool
	logger *slog.Logger
}

// Open opens the state database at cfg.DSN. Call Migrate before use.
func Open(ctx context.Context, cfg migration.SQLiteConfig, now func() time.Time, logger *slog.Logger) (*Storage, error) {
	pool, err := NewConnectionPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Storage{
		SessionRepository:    NewSessionRepository(pool, now),
		PreferenceRepository: NewPreferenceRepository(pool, now),
		pool:                 pool,
		logger:               logger,
	}, nil
}

// Migrate applies the embedded schema.
func (s *Storage) Migrate(ctx context.Context) error {
	manager := migration.NewManager(
		migration.NewScanner(schemaFS, "schema"),
		migration.NewSQLiteExecutor(s.pool.DB()),
		s.logger,
	)
	if err := manager.Run(ctx); err != nil {
		return fmt.Errorf("migrate state database: %w", err)
	}
	return nil
}

// Pool exposes the underlying connection pool.
func (s *Storage) Pool() *ConnectionPool {
	return s.pool
}

// Close releases the database handle.
func (s *Storage) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	return s.pool.Close()
}
