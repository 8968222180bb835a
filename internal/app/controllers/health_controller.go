package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by the database handle.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports liveness and database reachability
type HealthController struct {
	db Pinger
}

// NewHealthController creates a new HealthController. db may be nil when the
// in-memory store is in use.
func NewHealthController(db Pinger) *HealthController {
	return &HealthController{db: db}
}

// Health reports service status
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	resp := dto.HealthResponse{Status: "ok", Database: "memory", Timestamp: time.Now()}
	status := http.StatusOK

	if c.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		if err := c.db.Ping(pingCtx); err != nil {
			resp.Status, resp.Database = "degraded", "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}

	ctx.JSON(status, resp)
}
