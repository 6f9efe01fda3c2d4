package persistence

import "context"

// SessionRepository stores at most one credential per role.
type SessionRepository interface {
	UpsertSession(ctx context.Context, record SessionRecord) error
	GetSession(ctx context.Context, role string) (SessionRecord, error)
	DeleteSession(ctx context.Context, role string) error
}

// PreferenceRepository stores remembered screen settings grouped by scope.
type PreferenceRepository interface {
	SetPreference(ctx context.Context, pref Preference) error
	GetPreference(ctx context.Context, scope, name string) (Preference, error)
	ListPreferences(ctx context.Context, scope string) ([]Preference, error)
	DeletePreferences(ctx context.Context, scope string) error
}
