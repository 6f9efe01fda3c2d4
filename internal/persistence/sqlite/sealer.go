package sqlite

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/example/roombook-console/internal/persistence"
)

// sealedTokenVersion is the first byte of every sealed token and part of the
// authenticated data.
const sealedTokenVersion byte = 0x01

var hkdfInfoToken = []byte("roombook-console.session-token.v1")

// TokenSealer encrypts stored tokens with XChaCha20-Poly1305 under a key
// derived from the configured state secret.
//
// Sealed layout: [version: 1 byte] [nonce: 24 bytes] [ciphertext+tag].
// The role is bound as additional data, so a token sealed for one role does
// not open as another.
type TokenSealer struct {
	key []byte
}

// NewTokenSealer derives the sealing key from secret with HKDF-SHA256.
func NewTokenSealer(secret string) (*TokenSealer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("state secret is empty")
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, hkdfInfoToken), key); err != nil {
		return nil, fmt.Errorf("deriving token key: %w", err)
	}
	return &TokenSealer{key: key}, nil
}

// Seal encrypts token for role.
func (s *TokenSealer) Seal(role, token string) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}

	out := make([]byte, 1+chacha20poly1305.NonceSizeX, 1+chacha20poly1305.NonceSizeX+len(token)+chacha20poly1305.Overhead)
	out[0] = sealedTokenVersion
	if _, err := io.ReadFull(rand.Reader, out[1:]); err != nil {
		return nil, fmt.Errorf("generating random nonce: %w", err)
	}
	nonce := out[1 : 1+chacha20poly1305.NonceSizeX]
	return aead.Seal(out, nonce, []byte(token), tokenAAD(role)), nil
}

// Open decrypts a value produced by Seal for the same role. Any tampering, a
// different secret, or a different role yields persistence.ErrSealed.
func (s *TokenSealer) Open(role string, sealed []byte) (string, error) {
	if len(sealed) < 1+chacha20poly1305.NonceSizeX+chacha20poly1305.Overhead || sealed[0] != sealedTokenVersion {
		return "", persistence.ErrSealed
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}
	nonce := sealed[1 : 1+chacha20poly1305.NonceSizeX]
	plaintext, err := aead.Open(nil, nonce, sealed[1+chacha20poly1305.NonceSizeX:], tokenAAD(role))
	if err != nil {
		return "", persistence.ErrSealed
	}
	return string(plaintext), nil
}

func tokenAAD(role string) []byte {
	return append([]byte{sealedTokenVersion}, role...)
}
