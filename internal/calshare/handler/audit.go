package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/calshare/internal/calshare/biz"
	"github.com/kart-io/calshare/pkg/response"
)

// AuditHandler exposes the read-only audit history.
type AuditHandler struct {
	svc *biz.AuditService
}

// NewAuditHandler creates the audit handler.
func NewAuditHandler(svc *biz.AuditService) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// List returns a page of audit entries in insertion order, optionally
// filtered by actor_id, action and status query parameters.
func (h *AuditHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)
	offset, limit := offsetLimit(page, pageSize)

	filter := biz.AuditFilter{
		ActorID: c.Query("actor_id"),
		Action:  c.Query("action"),
		Status:  c.Query("status"),
	}

	total, entries := h.svc.List(c.Request.Context(), filter, offset, limit)
	response.PageOK(c, entries, total, page, pageSize)
}
