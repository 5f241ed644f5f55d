package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/kasamthapa/krisi/internal/interfaces/http/middleware"
)

// RegisterRoutes registers product routes. Mutations require an actor.
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	products.GET("", h.Query)
	products.GET("/:id", h.Get)

	mutating := products.Group("", middleware.RequireActor())
	mutating.POST("", h.List)
	mutating.PUT("/:id", h.Update)
	mutating.DELETE("/:id", h.Delete)
	mutating.POST("/:id/approve", h.Approve)
	mutating.POST("/:id/reject", h.Reject)
}

// RegisterRoutes registers order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	orders.GET("", h.Query)
	orders.GET("/:id", h.Get)

	mutating := orders.Group("", middleware.RequireActor())
	mutating.POST("", h.Create)
	mutating.POST("/:id/status", h.AdvanceStatus)
}

// RegisterRoutes registers payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	payments.GET("", h.Query)
	payments.GET("/:id/entries", h.Entries)
	payments.POST("", middleware.RequireActor(), h.Create)
}

// RegisterRoutes registers notification routes
func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	notifications := rg.Group("/notifications")
	notifications.GET("", h.Query)
	notifications.POST("/:id/resend", middleware.RequireActor(), h.Resend)
}

// RegisterRoutes registers the analytics route
func (h *AnalyticsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/analytics", h.Get)
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}
