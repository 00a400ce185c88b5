// Package id generates entity identifiers and opaque session tokens.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// New returns a ULID string, lexicographically sortable by creation time.
// Used for entity ids (users, calendars, events, grants).
func New() string {
	return ulid.Make().String()
}

// tokenBytes is the entropy of a session token (32 bytes, 64 hex chars).
const tokenBytes = 32

// NewToken returns an opaque random session token. The token carries no
// claims; all session state lives server-side.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
