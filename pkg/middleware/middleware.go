// Package middleware provides the gin middleware chain: request id,
// logging, recovery, CORS, session authentication and the permission
// guard.
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/calshare/pkg/session"
)

// Context keys set by the middleware chain.
const (
	// IdentityKey holds the authenticated *session.Session.
	IdentityKey = "calshare/identity"

	// RequestIDKey holds the request id string.
	RequestIDKey = "calshare/request-id"
)

// IdentityFromContext returns the authenticated session, or nil when the
// request is anonymous.
func IdentityFromContext(c *gin.Context) *session.Session {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil
	}
	sess, ok := v.(*session.Session)
	if !ok {
		return nil
	}
	return sess
}

// UserIDFromContext returns the authenticated user id, or "" when the
// request is anonymous. Absence is signalled by the empty string and
// checked explicitly by consumers; ids are ULIDs and never empty for a
// real user.
func UserIDFromContext(c *gin.Context) string {
	if sess := IdentityFromContext(c); sess != nil {
		return sess.UserID
	}
	return ""
}

// RequestIDFromContext returns the request id, or "".
func RequestIDFromContext(c *gin.Context) string {
	v, ok := c.Get(RequestIDKey)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}
