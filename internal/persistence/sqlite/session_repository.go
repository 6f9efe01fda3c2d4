package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/roombook-console/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite
type SessionRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
	now    func() time.Time
}

// NewSessionRepository creates a new SQLite session repository
func NewSessionRepository(pool *ConnectionPool, now func() time.Time) *SessionRepository {
	if now == nil {
		now = time.Now
	}
	return &SessionRepository{pool: pool, mapper: NewErrorMapper(), now: now}
}

// UpsertSession replaces the stored credential of record.Role.
func (r *SessionRepository) UpsertSession(ctx context.Context, record persistence.SessionRecord) error {
	role := strings.TrimSpace(record.Role)
	username := strings.TrimSpace(record.Username)
	if role == "" || username == "" || len(record.SealedToken) == 0 {
		return persistence.ErrConstraintViolation
	}

	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = r.now()
	}

	query := `
		INSERT INTO sessions (role, username, sealed_token, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (role) DO UPDATE SET
			username = excluded.username,
			sealed_token = excluded.sealed_token,
			updated_at = excluded.updated_at
	`
	if _, err := r.pool.DB().ExecContext(ctx, query, role, username, record.SealedToken, formatTime(updatedAt)); err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetSession returns the credential stored for role.
func (r *SessionRepository) GetSession(ctx context.Context, role string) (persistence.SessionRecord, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return persistence.SessionRecord{}, persistence.ErrNotFound
	}

	query := `
		SELECT role, username, sealed_token, updated_at
		FROM sessions
		WHERE role = ?
	`
	var (
		record    persistence.SessionRecord
		updatedAt string
	)
	err := r.pool.DB().QueryRowContext(ctx, query, role).Scan(
		&record.Role,
		&record.Username,
		&record.SealedToken,
		&updatedAt,
	)
	if err != nil {
		return persistence.SessionRecord{}, r.mapper.MapError(err)
	}

	if record.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.SessionRecord{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return record, nil
}

// DeleteSession removes the credential of role. Deleting a missing session
// is not an error.
func (r *SessionRepository) DeleteSession(ctx context.Context, role string) error {
	if _, err := r.pool.DB().ExecContext(ctx, `DELETE FROM sessions WHERE role = ?`, strings.TrimSpace(role)); err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}
