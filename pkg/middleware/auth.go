package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	calerrors "github.com/kart-io/calshare/pkg/errors"
	"github.com/kart-io/calshare/pkg/response"
	"github.com/kart-io/calshare/pkg/session"
)

// AuthOptions configures the session authentication middleware.
type AuthOptions struct {
	// Store resolves tokens to sessions.
	Store session.Store

	// CookieName is the fallback session cookie. Default "calshare_session".
	CookieName string

	// Optional makes a missing or invalid token pass through as an
	// anonymous request instead of a 401. The permission guard then
	// produces the denial and its audit trail.
	Optional bool
}

// AuthOption is a functional option for the auth middleware.
type AuthOption func(*AuthOptions)

// AuthWithStore sets the session store.
func AuthWithStore(store session.Store) AuthOption {
	return func(o *AuthOptions) { o.Store = store }
}

// AuthWithCookieName sets the session cookie name.
func AuthWithCookieName(name string) AuthOption {
	return func(o *AuthOptions) { o.CookieName = name }
}

// AuthOptional makes authentication non-mandatory.
func AuthOptional() AuthOption {
	return func(o *AuthOptions) { o.Optional = true }
}

// Auth creates the session authentication middleware. It extracts the
// token from the Authorization header ("Bearer <token>") or the session
// cookie, resolves it against the store and attaches the session to the
// request context.
func Auth(opts ...AuthOption) gin.HandlerFunc {
	options := &AuthOptions{CookieName: "calshare_session"}
	for _, opt := range opts {
		opt(options)
	}

	return func(c *gin.Context) {
		token := extractToken(c, options.CookieName)
		if token == "" {
			if options.Optional {
				c.Next()
				return
			}
			abortUnauthorized(c, calerrors.ErrUnauthorized)
			return
		}

		sess, err := options.Store.Get(c.Request.Context(), token)
		if err != nil {
			if options.Optional {
				c.Next()
				return
			}
			if errors.Is(err, session.ErrNotFound) {
				abortUnauthorized(c, calerrors.ErrSessionExpired)
				return
			}
			response.Fail(c, calerrors.ErrSessionStore.WithCause(err))
			c.Abort()
			return
		}

		c.Set(IdentityKey, sess)
		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}

func abortUnauthorized(c *gin.Context, e *calerrors.Errno) {
	response.Fail(c, e)
	c.Abort()
}
