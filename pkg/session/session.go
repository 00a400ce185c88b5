// Package session provides the server-side session store: opaque random
// tokens mapped to session records with TTL-based expiry.
//
// Two backends exist: an in-memory map with lazy expiry on access, and a
// Redis backend that delegates TTL handling to the server.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/kart-io/calshare/pkg/utils/id"
)

// ErrNotFound is returned when a token does not resolve to a live session.
// An expired session is indistinguishable from an absent one.
var ErrNotFound = errors.New("session not found")

// Session is a server-side session record.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry at the given
// instant.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Store is the session store contract consumed by the auth middleware.
type Store interface {
	// Create mints a new session for the user with the given TTL.
	Create(ctx context.Context, userID, username string, ttl time.Duration) (*Session, error)

	// Get resolves a token to a live session. Accessing an expired
	// session removes it and returns ErrNotFound.
	Get(ctx context.Context, token string) (*Session, error)

	// Delete removes a session. Deleting an absent token is not an error.
	Delete(ctx context.Context, token string) error
}

func newSession(userID, username string, ttl time.Duration, now time.Time) (*Session, error) {
	token, err := id.NewToken()
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     token,
		UserID:    userID,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}
