package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/calshare/internal/calshare/biz"
	"github.com/kart-io/calshare/internal/model"
	"github.com/kart-io/calshare/pkg/middleware"
	"github.com/kart-io/calshare/pkg/permission"
	"github.com/kart-io/calshare/pkg/response"
)

// CalendarHandler handles calendar and grant requests.
type CalendarHandler struct {
	svc   *biz.CalendarService
	perms *biz.PermissionService
}

// NewCalendarHandler creates the calendar handler.
func NewCalendarHandler(svc *biz.CalendarService, perms *biz.PermissionService) *CalendarHandler {
	return &CalendarHandler{svc: svc, perms: perms}
}

// CreateCalendarRequest is the request body for creating a calendar.
type CreateCalendarRequest struct {
	Name        string  `json:"name" validate:"required,max=128"`
	Description string  `json:"description" validate:"omitempty,max=512"`
	Color       string  `json:"color" validate:"omitempty,max=16"`
	OrgID       *string `json:"org_id" validate:"omitempty"`
}

// Create creates a calendar owned by the caller.
func (h *CalendarHandler) Create(c *gin.Context) {
	var req CreateCalendarRequest
	if !bindJSON(c, &req) {
		return
	}

	calendar := &model.Calendar{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		OwnerID:     middleware.UserIDFromContext(c),
		OrgID:       req.OrgID,
	}
	if err := h.svc.Create(c.Request.Context(), calendar); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, calendar)
}

// Get returns one calendar.
func (h *CalendarHandler) Get(c *gin.Context) {
	calendar, err := h.svc.Get(c.Request.Context(), c.Param("calendar"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, calendar)
}

// List returns a page of calendars.
func (h *CalendarHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)
	offset, limit := offsetLimit(page, pageSize)

	total, items, err := h.svc.List(c.Request.Context(), offset, limit)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.PageOK(c, items, total, page, pageSize)
}

// Mine lists the caller's own calendars.
func (h *CalendarHandler) Mine(c *gin.Context) {
	items, err := h.svc.ListByOwner(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, items)
}

// UpdateCalendarRequest is the request body for calendar updates.
type UpdateCalendarRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=128"`
	Description *string `json:"description" validate:"omitempty,max=512"`
	Color       *string `json:"color" validate:"omitempty,max=16"`
}

// Update modifies a calendar.
func (h *CalendarHandler) Update(c *gin.Context) {
	var req UpdateCalendarRequest
	if !bindJSON(c, &req) {
		return
	}

	calendar, err := h.svc.Get(c.Request.Context(), c.Param("calendar"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	if req.Name != nil {
		calendar.Name = *req.Name
	}
	if req.Description != nil {
		calendar.Description = *req.Description
	}
	if req.Color != nil {
		calendar.Color = *req.Color
	}

	if err := h.svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), calendar); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, calendar)
}

// Delete removes a calendar.
func (h *CalendarHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("calendar")); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, nil)
}

// UpsertGrantRequest is the request body for granting permissions.
type UpsertGrantRequest struct {
	UserID      string   `json:"user_id" validate:"required"`
	Permissions []string `json:"permissions" validate:"required,min=1"`
}

// UpsertGrant creates or replaces a user's grant on a calendar.
func (h *CalendarHandler) UpsertGrant(c *gin.Context) {
	var req UpsertGrantRequest
	if !bindJSON(c, &req) {
		return
	}

	perms := make([]permission.Permission, len(req.Permissions))
	for i, p := range req.Permissions {
		perms[i] = permission.Permission(p)
	}

	grant, err := h.svc.UpsertGrant(c.Request.Context(),
		middleware.UserIDFromContext(c), req.UserID, c.Param("calendar"), perms)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, grant)
}

// RevokeGrant removes a user's grant on a calendar.
func (h *CalendarHandler) RevokeGrant(c *gin.Context) {
	err := h.svc.RevokeGrant(c.Request.Context(),
		middleware.UserIDFromContext(c), c.Param("user"), c.Param("calendar"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, nil)
}

// ListGrants lists every grant on a calendar with access levels.
func (h *CalendarHandler) ListGrants(c *gin.Context) {
	grants, err := h.svc.ListGrants(c.Request.Context(), c.Param("calendar"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, grants)
}

// MyPermissions returns the caller's effective permission set and access
// level on a calendar.
func (h *CalendarHandler) MyPermissions(c *gin.Context) {
	perms, err := h.perms.ListPermissions(c.Request.Context(),
		middleware.UserIDFromContext(c), c.Param("calendar"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, gin.H{
		"permissions":  perms,
		"access_level": model.AccessLevelFor(perms),
	})
}
