package migration

import (
	"context"
	"fmt"
	"log/slog"
)

// Manager runs pending migrations in version order.
type Manager struct {
	scanner  *Scanner
	executor *SQLiteExecutor
	logger   *slog.Logger
}

// NewManager wires a manager. A nil logger uses slog.Default.
func NewManager(scanner *Scanner, executor *SQLiteExecutor, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{scanner: scanner, executor: executor, logger: logger.With("component", "migration.Manager")}
}

// Run applies every pending migration and stops at the first failure.
func (m *Manager) Run(ctx context.Context) error {
	status, err := m.Status(ctx)
	if err != nil {
		return err
	}
	logger := m.logger.With("operation", "Run")
	if len(status.Pending) == 0 {
		logger.DebugContext(ctx, "schema up to date", "version", status.CurrentVersion)
		return nil
	}

	logger.InfoContext(ctx, "applying migrations", "from_version", status.CurrentVersion, "pending", len(status.Pending))
	for _, pending := range status.Pending {
		elapsed, err := m.executor.Apply(ctx, pending)
		if err != nil {
			logger.ErrorContext(ctx, "migration failed", "version", pending.Version, "file", pending.FilePath, "error", err)
			return NewMigrationError(pending.Version, pending.FilePath, "execute migration", fmt.Errorf("%w: %w", ErrMigrationFailed, err))
		}
		logger.InfoContext(ctx, "migration applied",
			"version", pending.Version,
			"description", pending.Description,
			"duration_ms", elapsed.Milliseconds(),
		)
	}
	return nil
}

// Status compares the files on disk with schema_migrations. Applied files
// must still exist with the same checksum and versions must be contiguous.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return Status{}, err
	}
	available, err := m.scanner.Scan()
	if err != nil {
		return Status{}, err
	}
	applied, err := m.executor.AppliedVersions(ctx)
	if err != nil {
		return Status{}, err
	}

	if err := validateSequence(available); err != nil {
		return Status{}, err
	}

	byVersion := make(map[int]Migration, len(available))
	for _, mig := range available {
		byVersion[versionNumber(mig.Version)] = mig
	}
	done := make(map[int]bool, len(applied))
	status := Status{Applied: applied}
	for _, a := range applied {
		n := versionNumber(a.Version)
		file, ok := byVersion[n]
		if !ok {
			return Status{}, fmt.Errorf("%w: applied migration %s not found in available migrations", ErrVersionConflict, a.Version)
		}
		if a.Checksum != "" && a.Checksum != file.Checksum {
			return Status{}, NewMigrationError(a.Version, file.FilePath, "verify checksum", ErrChecksumMismatch)
		}
		done[n] = true
		status.CurrentVersion = a.Version
	}
	for _, mig := range available {
		if !done[versionNumber(mig.Version)] {
			status.Pending = append(status.Pending, mig)
		}
	}
	return status, nil
}

func validateSequence(available []Migration) error {
	for i := 1; i < len(available); i++ {
		prev, next := versionNumber(available[i-1].Version), versionNumber(available[i].Version)
		if next != prev+1 {
			return fmt.Errorf("%w: missing migration version %03d in sequence", ErrVersionConflict, prev+1)
		}
	}
	return nil
}
