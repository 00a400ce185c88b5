// Package handler implements the HTTP handlers for the REST API.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/calshare/pkg/response"
	"github.com/kart-io/calshare/pkg/validator"
)

// bindJSON binds the request body and runs field validation, writing the
// failure response itself. Returns false when the request is rejected.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.FailWithBinding(c, err)
		return false
	}
	if verr := validator.Global().Struct(req); verr.HasErrors() {
		response.FailWithValidation(c, verr)
		return false
	}
	return true
}

// pagination parses page/page_size query parameters with sane bounds.
func pagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}
	return page, pageSize
}

func offsetLimit(page, pageSize int) (offset, limit int) {
	return (page - 1) * pageSize, pageSize
}
