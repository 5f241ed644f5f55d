package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasamthapa/krisi/internal/interfaces/http/dto"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness
type HealthHandler struct {
	BaseHandler
	service string
	db      Pinger
}

// NewHealthHandler creates a HealthHandler; db may be nil for the in-memory driver
func NewHealthHandler(service string, db Pinger) *HealthHandler {
	return &HealthHandler{service: service, db: db}
}

// Health reports service status
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	status := gin.H{
		"status":  "healthy",
		"service": h.service,
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			status["status"] = "unhealthy"
			status["database"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: status})
			return
		}
		status["database"] = "ok"
	}

	h.Success(c, status)
}
