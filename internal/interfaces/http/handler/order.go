package handler

import (
	"github.com/gin-gonic/gin"
	tradeapp "github.com/kasamthapa/krisi/internal/application/trade"
	"github.com/kasamthapa/krisi/internal/domain/trade"
	"github.com/kasamthapa/krisi/internal/interfaces/http/middleware"
)

// OrderHandler handles order ledger endpoints
type OrderHandler struct {
	BaseHandler
	orderService *tradeapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *tradeapp.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// Create places an order and reserves its stock
// POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req tradeapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), h.actor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// AdvanceStatus moves an order to the requested status
// POST /orders/:id/status
func (h *OrderHandler) AdvanceStatus(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req tradeapp.AdvanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	target, err := trade.ParseOrderStatus(req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	order, err := h.orderService.AdvanceStatus(c.Request.Context(), h.actor(c), id, target)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Query lists orders matching the filters, newest first
// GET /orders
func (h *OrderHandler) Query(c *gin.Context) {
	var query tradeapp.OrderQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if query.Status != "" {
		status, err := trade.ParseOrderStatus(query.Status)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		query.Status = string(status)
	}

	orders, err := h.orderService.Query(c.Request.Context(), query.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// Get returns one order
// GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
