package handler

import (
	"github.com/gin-gonic/gin"
	escrowapp "github.com/kasamthapa/krisi/internal/application/escrow"
	"github.com/kasamthapa/krisi/internal/interfaces/http/middleware"
)

// PaymentHandler handles escrow payment endpoints.
// Release and refund are driven by order transitions and have no route.
type PaymentHandler struct {
	BaseHandler
	paymentService *escrowapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *escrowapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// Create pays for an order into escrow
// POST /payments
func (h *PaymentHandler) Create(c *gin.Context) {
	var req escrowapp.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	payment, err := h.paymentService.Create(c.Request.Context(), h.actor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// Query lists payments matching the filters, newest first
// GET /payments
func (h *PaymentHandler) Query(c *gin.Context) {
	var query escrowapp.PaymentQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	payments, err := h.paymentService.Query(c.Request.Context(), query.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// Entries returns the payment's escrow audit chain
// GET /payments/:id/entries
func (h *PaymentHandler) Entries(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	entries, err := h.paymentService.Entries(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}
