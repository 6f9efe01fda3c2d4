package sqlite

import (
	"errors"
	"testing"

	"github.com/example/roombook-console/internal/persistence"
)

func TestTokenSealer(t *testing.T) {
	t.Parallel()

	sealer, err := NewTokenSealer("state secret")
	if err != nil {
		t.Fatalf("NewTokenSealer returned error: %v", err)
	}
	first, err := sealer.Seal("admin", "opaque-token")
	if err != nil {
		t.Fatalf("Seal returned error: %v", err)
	}
	second, _ := sealer.Seal("admin", "opaque-token")
	if string(first) == string(second) {
		t.Fatalf("sealing twice must use fresh nonces")
	}

	if got, err := sealer.Open("admin", first); err != nil || got != "opaque-token" {
		t.Fatalf("Open = %q, %v", got, err)
	}

	tampered := append([]byte(nil), first...)
	tampered[len(tampered)-1] ^= 0xff

	cases := []struct {
		name   string
		role   string
		sealed []byte
	}{
		{name: "other role", role: "meeting", sealed: first},
		{name: "tampered", role: "admin", sealed: tampered},
		{name: "truncated", role: "admin", sealed: first[:10]},
		{name: "wrong version", role: "admin", sealed: append([]byte{0x02}, first[1:]...)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := sealer.Open(tc.role, tc.sealed); !errors.Is(err, persistence.ErrSealed) {
				t.Fatalf("expected ErrSealed, got %v", err)
			}
		})
	}

	if _, err := NewTokenSealer("  "); err == nil {
		t.Fatalf("expected an error for a blank secret")
	}
}

func TestErrorMapper(t *testing.T) {
	t.Parallel()

	mapper := NewErrorMapper()
	cases := []struct {
		name string
		err  error
		want error
	}{
		{name: "unique", err: errors.New("constraint failed: UNIQUE constraint failed: sessions.role (1555)"), want: persistence.ErrConstraintViolation},
		{name: "check", err: errors.New("CHECK constraint failed: role"), want: persistence.ErrConstraintViolation},
		{name: "locked", err: errors.New("database is locked (5)"), want: errDatabaseLocked},
	}
	for _, tc := range cases {
		if got := mapper.MapError(tc.err); !errors.Is(got, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
