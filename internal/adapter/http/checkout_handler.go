package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jayedsikder/commerceflow-api/internal/adapter/http/middleware"
	"github.com/jayedsikder/commerceflow-api/internal/cart"
	domain "github.com/jayedsikder/commerceflow-api/internal/entity"
	"github.com/jayedsikder/commerceflow-api/internal/logging"
	"github.com/jayedsikder/commerceflow-api/internal/usecase"
)

type CheckoutHandler struct {
	carts    *cart.Service
	initiate *usecase.InitiatePayment
	guard    usecase.IdempotencyStore
}

func NewCheckoutHandler(carts *cart.Service, initiate *usecase.InitiatePayment, guard usecase.IdempotencyStore) *CheckoutHandler {
	return &CheckoutHandler{carts: carts, initiate: initiate, guard: guard}
}

type checkoutReq struct {
	Customer domain.CustomerInfo `json:"customerInfo" binding:"required"`
}

type checkoutResp struct {
	TransactionID string `json:"tranId"`
	RedirectURL   string `json:"redirectUrl"`
}

// Submit runs the whole checkout: assemble the session's cart into an
// order payload, create the gateway session, hand back the redirect.
// One submission per user may be in flight at a time.
func (h *CheckoutHandler) Submit(c *gin.Context) {
	var req checkoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx := c.Request.Context()
	user := middleware.SessionUser(c)

	// The submit guard: a second submission while one is in flight is
	// rejected server-side, not just by a disabled button.
	locked, err := h.guard.TryLock(ctx, "checkout", user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "service_unavailable"})
		return
	}
	if !locked {
		c.JSON(http.StatusConflict, gin.H{"error": "checkout_in_progress"})
		return
	}
	// Release with a fresh context: the request context dies when the
	// client disconnects, and a failed release would leave the lock to
	// sit out its full TTL.
	defer func() { _ = h.guard.Unlock(context.Background(), "checkout", user.ID) }()

	crt, err := h.carts.Get(ctx, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cart_unavailable"})
		return
	}

	payload, err := usecase.AssembleOrder(crt, req.Customer)
	if err != nil {
		var ve *usecase.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "field": ve.Field, "reason": ve.Reason})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	out, err := h.initiate.Execute(ctx, payload)
	if err != nil {
		h.renderInitiateError(c, err)
		return
	}

	middleware.PaymentsInitiated.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, checkoutResp{TransactionID: out.TransactionID, RedirectURL: out.RedirectURL})
}

func (h *CheckoutHandler) renderInitiateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrConfiguration):
		// Cause is already in the server log; nothing internal leaks out.
		middleware.PaymentsInitiated.WithLabelValues("config_error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "service_unavailable"})
	case errors.Is(err, usecase.ErrInvalidOrder):
		middleware.PaymentsInitiated.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_order"})
	default:
		var ge *usecase.GatewayError
		if errors.As(err, &ge) {
			middleware.PaymentsInitiated.WithLabelValues("gateway_error").Inc()
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment_unavailable", "details": ge.Reason})
			return
		}
		logging.From(c).Error("checkout failed", "err", err)
		middleware.PaymentsInitiated.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "service_unavailable"})
	}
}
