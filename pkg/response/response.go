// Package response defines the JSON response envelope and gin helpers for
// writing it, including the bare error bodies used by the permission guard
// and validation failures.
package response

import (
	"net/http"

	"github.com/kart-io/calshare/pkg/errors"
)

// Response is the success/error envelope for API endpoints.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Page wraps a paginated list.
type Page struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Items    any   `json:"items"`
}

// CodeOK is the envelope code for successful responses.
const CodeOK = 0

// Success builds a success envelope.
func Success(data any) *Response {
	return &Response{Code: CodeOK, Message: "ok", Data: data}
}

// Err builds an error envelope from an Errno.
func Err(e *errors.Errno) *Response {
	return &Response{Code: e.Code, Message: e.Message}
}

// ErrorBody is the bare denial body surfaced at the HTTP boundary for
// permission denials and audit validation failures. Denials carry no
// detail beyond the generic message; validation failures list field
// messages.
type ErrorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// HTTPStatus maps the envelope to an HTTP status.
func (r *Response) HTTPStatus() int {
	if r.Code == CodeOK {
		return http.StatusOK
	}
	if e, ok := errors.Lookup(r.Code); ok {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}
