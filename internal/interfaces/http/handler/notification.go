package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	notificationapp "github.com/kasamthapa/krisi/internal/application/notification"
	"github.com/kasamthapa/krisi/internal/interfaces/http/middleware"
)

// NotificationHandler handles notification endpoints
type NotificationHandler struct {
	BaseHandler
	dispatcher *notificationapp.Dispatcher
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(dispatcher *notificationapp.Dispatcher) *NotificationHandler {
	return &NotificationHandler{
		dispatcher: dispatcher,
	}
}

// Query lists a recipient's notifications, newest first
// GET /notifications?recipient_id=
func (h *NotificationHandler) Query(c *gin.Context) {
	var query notificationapp.NotificationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	recipientID, err := uuid.Parse(query.RecipientID)
	if err != nil {
		h.BadRequest(c, "Invalid recipient ID")
		return
	}

	items, err := h.dispatcher.QueryByRecipient(c.Request.Context(), recipientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Resend queues a new copy of a failed notification
// POST /notifications/:id/resend
func (h *NotificationHandler) Resend(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	n, err := h.dispatcher.Resend(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, n)
}
