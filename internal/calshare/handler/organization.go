package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/calshare/internal/calshare/biz"
	"github.com/kart-io/calshare/internal/model"
	"github.com/kart-io/calshare/pkg/middleware"
	"github.com/kart-io/calshare/pkg/response"
)

// OrganizationHandler handles organization requests.
type OrganizationHandler struct {
	svc *biz.OrganizationService
}

// NewOrganizationHandler creates the organization handler.
func NewOrganizationHandler(svc *biz.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{svc: svc}
}

// CreateOrgRequest is the request body for creating an organization.
type CreateOrgRequest struct {
	Name        string `json:"name" validate:"required,max=128"`
	Slug        string `json:"slug" validate:"required,max=64,lowercase"`
	Description string `json:"description" validate:"omitempty,max=512"`
}

// Create creates an organization owned by the caller.
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req CreateOrgRequest
	if !bindJSON(c, &req) {
		return
	}

	org := &model.Organization{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		OwnerID:     middleware.UserIDFromContext(c),
	}
	if err := h.svc.Create(c.Request.Context(), org); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, org)
}

// Get returns one organization.
func (h *OrganizationHandler) Get(c *gin.Context) {
	org, err := h.svc.Get(c.Request.Context(), c.Param("org"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, org)
}

// List returns a page of organizations.
func (h *OrganizationHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)
	offset, limit := offsetLimit(page, pageSize)

	total, items, err := h.svc.List(c.Request.Context(), offset, limit)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.PageOK(c, items, total, page, pageSize)
}

// UpdateOrgRequest is the request body for organization updates.
type UpdateOrgRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=128"`
	Description *string `json:"description" validate:"omitempty,max=512"`
}

// Update modifies an organization.
func (h *OrganizationHandler) Update(c *gin.Context) {
	var req UpdateOrgRequest
	if !bindJSON(c, &req) {
		return
	}

	org, err := h.svc.Get(c.Request.Context(), c.Param("org"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	if req.Name != nil {
		org.Name = *req.Name
	}
	if req.Description != nil {
		org.Description = *req.Description
	}

	if err := h.svc.Update(c.Request.Context(), org); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, org)
}

// Delete removes an organization.
func (h *OrganizationHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("org")); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, nil)
}

// AddMemberRequest is the request body for adding a member.
type AddMemberRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"omitempty,oneof=owner admin member"`
}

// AddMember enrolls a user in an organization.
func (h *OrganizationHandler) AddMember(c *gin.Context) {
	var req AddMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.svc.AddMember(c.Request.Context(), c.Param("org"), req.UserID, req.Role); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, nil)
}

// RemoveMember removes a user from an organization.
func (h *OrganizationHandler) RemoveMember(c *gin.Context) {
	if err := h.svc.RemoveMember(c.Request.Context(), c.Param("org"), c.Param("user")); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, nil)
}

// ListMembers lists an organization's members.
func (h *OrganizationHandler) ListMembers(c *gin.Context) {
	members, err := h.svc.ListMembers(c.Request.Context(), c.Param("org"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, members)
}
