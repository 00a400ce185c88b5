package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/calshare/pkg/errors"
	"github.com/kart-io/calshare/pkg/validator"
)

// OK writes a success envelope.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Success(data))
}

// PageOK writes a paginated success envelope.
func PageOK(c *gin.Context, items any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, Success(&Page{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Items:    items,
	}))
}

// Fail writes an error envelope from an Errno.
func Fail(c *gin.Context, e *errors.Errno) {
	c.JSON(e.HTTPStatus(), Err(e))
}

// FailWithError converts any error to an Errno and writes it.
func FailWithError(c *gin.Context, err error) {
	Fail(c, errors.FromError(err))
}

// FailWithValidation writes the 400 body for field validation failures:
// {"error": <first message>, "details": [...]}.
func FailWithValidation(c *gin.Context, verr *validator.ValidationErrors) {
	c.JSON(http.StatusBadRequest, &ErrorBody{
		Error:   verr.First(),
		Details: verr.Messages(),
	})
}

// FailWithBinding handles request binding or validation failures. A
// *validator.ValidationErrors gets the detailed body; anything else is a
// generic invalid-parameter envelope.
func FailWithBinding(c *gin.Context, err error) {
	if verr, ok := err.(*validator.ValidationErrors); ok {
		FailWithValidation(c, verr)
		return
	}
	Fail(c, errors.ErrInvalidParam.WithMessage("invalid request body: "+err.Error()))
}

// Denied writes the permission-denied boundary body and aborts the request
// pipeline: 403 {"error": "Permission denied"}. The body is deliberately
// generic; the reason lives only in the audit trail.
func Denied(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, &ErrorBody{Error: "Permission denied"})
}
