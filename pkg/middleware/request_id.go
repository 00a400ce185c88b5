package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/calshare/pkg/utils/id"
)

// HeaderRequestID is the request id header.
const HeaderRequestID = "X-Request-ID"

// RequestID attaches a request id to every request, honoring an incoming
// X-Request-ID header and echoing it back on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = id.New()
		}
		c.Set(RequestIDKey, rid)
		c.Writer.Header().Set(HeaderRequestID, rid)
		c.Next()
	}
}
