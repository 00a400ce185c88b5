package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/calshare/internal/calshare/biz"
	"github.com/kart-io/calshare/internal/model"
	"github.com/kart-io/calshare/pkg/errors"
	"github.com/kart-io/calshare/pkg/middleware"
	"github.com/kart-io/calshare/pkg/response"
)

// AuthHandler handles registration, login, logout and profile requests.
type AuthHandler struct {
	svc        *biz.AuthService
	cookieName string
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(svc *biz.AuthService, cookieName string) *AuthHandler {
	return &AuthHandler{svc: svc, cookieName: cookieName}
}

// RegisterRequest is the request body for registration.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=32"`
	Password    string `json:"password" validate:"required,min=8"`
	Email       string `json:"email" validate:"omitempty,email"`
	DisplayName string `json:"display_name" validate:"omitempty,max=128"`
}

// Register handles account creation.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user := &model.User{
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Status:      1,
	}
	if req.Email != "" {
		user.Email = &req.Email
	}

	if err := h.svc.Register(c.Request.Context(), user); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, user)
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login checks credentials and mints a session token, returned in the
// body and mirrored as a cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	sess, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	maxAge := int(sess.ExpiresAt.Sub(sess.CreatedAt).Seconds())
	c.SetCookie(h.cookieName, sess.Token, maxAge, "/", "", false, true)
	response.OK(c, sess)
}

// Logout invalidates the current session.
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := middleware.IdentityFromContext(c)
	if err := h.svc.Logout(c.Request.Context(), sess); err != nil {
		response.FailWithError(c, err)
		return
	}
	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	response.OK(c, nil)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	sess := middleware.IdentityFromContext(c)
	if sess == nil {
		response.Fail(c, errors.ErrUnauthorized)
		return
	}

	user, err := h.svc.Me(c.Request.Context(), sess)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, user)
}
