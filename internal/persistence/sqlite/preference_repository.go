package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/roombook-console/internal/persistence"
)

// PreferenceRepository implements persistence.PreferenceRepository using SQLite
type PreferenceRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
	now    func() time.Time
}

// NewPreferenceRepository creates a new SQLite preference repository
func NewPreferenceRepository(pool *ConnectionPool, now func() time.Time) *PreferenceRepository {
	if now == nil {
		now = time.Now
	}
	return &PreferenceRepository{pool: pool, mapper: NewErrorMapper(), now: now}
}

// SetPreference inserts or replaces one setting.
func (r *PreferenceRepository) SetPreference(ctx context.Context, pref persistence.Preference) error {
	scope := strings.TrimSpace(pref.Scope)
	name := strings.TrimSpace(pref.Name)
	if scope == "" || name == "" {
		return persistence.ErrConstraintViolation
	}
	updatedAt := pref.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = r.now()
	}

	query := `
		INSERT INTO preferences (scope, name, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (scope, name) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	if _, err := r.pool.DB().ExecContext(ctx, query, scope, name, pref.Value, formatTime(updatedAt)); err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetPreference returns one setting or persistence.ErrNotFound.
func (r *PreferenceRepository) GetPreference(ctx context.Context, scope, name string) (persistence.Preference, error) {
	query := `
		SELECT scope, name, value, updated_at
		FROM preferences
		WHERE scope = ? AND name = ?
	`
	row := r.pool.DB().QueryRowContext(ctx, query, strings.TrimSpace(scope), strings.TrimSpace(name))
	pref, err := scanPreference(row)
	if err != nil {
		return persistence.Preference{}, r.mapper.MapError(err)
	}
	return pref, nil
}

// ListPreferences returns every setting of scope ordered by name.
func (r *PreferenceRepository) ListPreferences(ctx context.Context, scope string) ([]persistence.Preference, error) {
	query := `
		SELECT scope, name, value, updated_at
		FROM preferences
		WHERE scope = ?
		ORDER BY name
	`
	rows, err := r.pool.DB().QueryContext(ctx, query, strings.TrimSpace(scope))
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var prefs []persistence.Preference
	for rows.Next() {
		pref, err := scanPreference(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		prefs = append(prefs, pref)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return prefs, nil
}

// DeletePreferences removes every setting of scope.
func (r *PreferenceRepository) DeletePreferences(ctx context.Context, scope string) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM preferences WHERE scope = ?`, strings.TrimSpace(scope)); err != nil {
			return r.mapper.MapError(err)
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPreference(row rowScanner) (persistence.Preference, error) {
	var (
		pref      persistence.Preference
		updatedAt string
	)
	if err := row.Scan(&pref.Scope, &pref.Name, &pref.Value, &updatedAt); err != nil {
		return persistence.Preference{}, err
	}
	parsed, err := parseTime(updatedAt)
	if err != nil {
		return persistence.Preference{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	pref.UpdatedAt = parsed
	return pref, nil
}
