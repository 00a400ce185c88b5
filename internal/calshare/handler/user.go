package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/calshare/internal/calshare/biz"
	"github.com/kart-io/calshare/pkg/response"
)

// UserHandler handles user requests.
type UserHandler struct {
	svc *biz.UserService
}

// NewUserHandler creates the user handler.
func NewUserHandler(svc *biz.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Get returns one user.
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.svc.Get(c.Request.Context(), c.Param("user"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, user)
}

// List returns a page of users.
func (h *UserHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)
	offset, limit := offsetLimit(page, pageSize)

	total, items, err := h.svc.List(c.Request.Context(), offset, limit)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.PageOK(c, items, total, page, pageSize)
}

// UpdateUserRequest is the request body for profile updates.
type UpdateUserRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=128"`
	Email       *string `json:"email" validate:"omitempty,email"`
}

// Update modifies a user's profile fields.
func (h *UserHandler) Update(c *gin.Context) {
	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.svc.Update(c.Request.Context(), c.Param("user"), req.DisplayName, req.Email)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, user)
}

// Delete removes a user.
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("user")); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, nil)
}
