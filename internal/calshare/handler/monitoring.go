package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/calshare/internal/calshare/biz"
	"github.com/kart-io/calshare/pkg/response"
)

// MonitoringHandler exposes health and dependency status.
type MonitoringHandler struct {
	svc *biz.MonitoringService
}

// NewMonitoringHandler creates the monitoring handler.
func NewMonitoringHandler(svc *biz.MonitoringService) *MonitoringHandler {
	return &MonitoringHandler{svc: svc}
}

// Healthz is the liveness probe.
func (h *MonitoringHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Status reports dependency health behind the circuit breakers. A
// degraded system still answers 200; the payload carries the breaker
// snapshots and fallback details.
func (h *MonitoringHandler) Status(c *gin.Context) {
	response.OK(c, h.svc.Status(c.Request.Context()))
}
