package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jayedsikder/commerceflow-api/internal/adapter/http/middleware"
	"github.com/jayedsikder/commerceflow-api/internal/logging"
	"github.com/jayedsikder/commerceflow-api/internal/usecase"
)

type NotificationHandler struct {
	process *usecase.ProcessNotification
}

func NewNotificationHandler(process *usecase.ProcessNotification) *NotificationHandler {
	return &NotificationHandler{process: process}
}

type ipnPayload struct {
	TranID string `json:"tran_id" form:"tran_id"`
	ValID  string `json:"val_id" form:"val_id"`
	Status string `json:"status" form:"status"`
}

// Receive is the gateway's server-to-server IPN endpoint. The gateway
// posts form-encoded payloads; JSON is accepted too for manual replays.
// 5xx tells the gateway to redeliver, so only transient failures may
// return one.
func (h *NotificationHandler) Receive(c *gin.Context) {
	var p ipnPayload
	if err := c.ShouldBind(&p); err != nil {
		middleware.PaymentNotifications.WithLabelValues("malformed").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed_notification"})
		return
	}

	n := usecase.Notification{TranID: p.TranID, ValID: p.ValID, Status: p.Status}
	mapped, err := h.process.Execute(c.Request.Context(), n)
	if err == nil {
		middleware.PaymentNotifications.WithLabelValues("ok").Inc()
		c.JSON(http.StatusOK, gin.H{"success": true, "status": string(mapped)})
		return
	}

	switch {
	case errors.Is(err, usecase.ErrMalformedNotification):
		middleware.PaymentNotifications.WithLabelValues("malformed").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed_notification"})
	case errors.Is(err, usecase.ErrTransactionMismatch):
		middleware.PaymentNotifications.WithLabelValues("mismatch").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "transaction_mismatch"})
	case errors.Is(err, usecase.ErrValidationConnect):
		// Validator unreachable: ask the gateway to try again later.
		middleware.PaymentNotifications.WithLabelValues("connect_error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "validation_unavailable"})
	default:
		logging.From(c).Error("notification processing failed", "tran_id", p.TranID, "err", err)
		middleware.PaymentNotifications.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
