package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"loadhitch/internal/payfast"
	"loadhitch/internal/service"
)

// PayFastHandler handles the gateway's browser redirects and the ITN
// webhook.
type PayFastHandler struct {
	processor *service.NotificationProcessor
	logger    *logrus.Logger
}

// NewPayFastHandler creates a new PayFastHandler.
func NewPayFastHandler(processor *service.NotificationProcessor, logger *logrus.Logger) *PayFastHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PayFastHandler{processor: processor, logger: logger}
}

// Notify handles POST /v1/payfast/notify
// Every rejection gets the same generic response so callers cannot probe
// which validation check failed.
func (h *PayFastHandler) Notify(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid notification"})
		return
	}

	n := payfast.ParseNotification(c.Request.PostForm)

	if err := h.processor.Process(c.Request.Context(), n); err != nil {
		if errors.Is(err, service.ErrAuthFailure) || errors.Is(err, service.ErrInvalidTransition) {
			h.logger.WithFields(logrus.Fields{
				"payment_id": n.MPaymentID,
				"error":      err,
			}).Warn("notification rejected")
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid notification"})
			return
		}

		// A transient failure must provoke a gateway retry; a 400 here
		// would permanently lose the notification.
		h.logger.WithFields(logrus.Fields{
			"payment_id": n.MPaymentID,
			"error":      err,
		}).Error("notification processing failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	c.Status(http.StatusOK)
}

// Return handles GET /v1/payfast/return
// The browser lands here after checkout; settlement is confirmed through
// the webhook, not this redirect.
func (h *PayFastHandler) Return(c *gin.Context) {
	respondJSON(c, http.StatusOK, gin.H{
		"status":  "received",
		"message": "Payment received. Your funds are held in escrow until delivery is confirmed.",
	})
}

// Cancel handles GET /v1/payfast/cancel
func (h *PayFastHandler) Cancel(c *gin.Context) {
	respondJSON(c, http.StatusOK, gin.H{
		"status":  "cancelled",
		"message": "Payment was cancelled. No funds were taken.",
	})
}
