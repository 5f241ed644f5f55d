package handler

import (
	"github.com/gin-gonic/gin"
	analyticsapp "github.com/kasamthapa/krisi/internal/application/analytics"
)

// AnalyticsHandler serves the marketplace summary
type AnalyticsHandler struct {
	BaseHandler
	analyticsService *analyticsapp.Service
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService *analyticsapp.Service) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// Get recomputes the summary from current state
// GET /analytics
func (h *AnalyticsHandler) Get(c *gin.Context) {
	summary, err := h.analyticsService.GetAnalytics(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
