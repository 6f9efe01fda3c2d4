package persistence

import "time"

// SessionRecord is the stored credential of one role. The token is kept
// sealed; only the store that sealed it can read it back.
type SessionRecord struct {
	Role        string
	Username    string
	SealedToken []byte
	UpdatedAt   time.Time
}

// Preference is one remembered setting of a console screen, for example its
// page size or the last search filter.
type Preference struct {
	Scope     string
	Name      string
	Value     string
	UpdatedAt time.Time
}
