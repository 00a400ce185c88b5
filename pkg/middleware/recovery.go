package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	calerrors "github.com/kart-io/calshare/pkg/errors"
	"github.com/kart-io/calshare/pkg/response"
)

// Recovery converts panics into a 500 response and logs the stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorw("Recovered from panic",
					"panic", r,
					"path", c.Request.URL.Path,
					"request_id", RequestIDFromContext(c),
					"stack", string(debug.Stack()),
				)
				response.Fail(c, calerrors.ErrInternal)
				c.Abort()
			}
		}()
		c.Next()
	}
}
