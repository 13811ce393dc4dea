package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jayedsikder/commerceflow-api/internal/adapter/http/middleware"
	"github.com/jayedsikder/commerceflow-api/internal/cart"
	"github.com/jayedsikder/commerceflow-api/internal/logging"
	"github.com/jayedsikder/commerceflow-api/internal/usecase"
)

type OrderHandler struct {
	repo  usecase.OrderRepo
	cache usecase.OrderCache
	carts *cart.Service
}

func NewOrderHandler(repo usecase.OrderRepo, cache usecase.OrderCache, carts *cart.Service) *OrderHandler {
	return &OrderHandler{repo: repo, cache: cache, carts: carts}
}

type orderStatusResp struct {
	TransactionID string `json:"tranId"`
	Status        string `json:"status"`
}

// GetStatus serves the authoritative order status by transaction id.
// Terminal statuses are served from cache when the reconciler has
// already written them there.
func (h *OrderHandler) GetStatus(c *gin.Context) {
	tranID := c.Param("tranId")
	if tranID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_tran_id"})
		return
	}
	ctx := c.Request.Context()

	if status, ok, err := h.cache.GetStatus(ctx, tranID); err == nil && ok {
		c.JSON(http.StatusOK, orderStatusResp{TransactionID: tranID, Status: status})
		return
	}

	o, err := h.repo.GetByTransactionID(ctx, tranID)
	if err != nil {
		logging.From(c).Error("order lookup failed", "tran_id", tranID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	if o == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
		return
	}
	c.JSON(http.StatusOK, orderStatusResp{TransactionID: o.TransactionID, Status: string(o.Status)})
}

type confirmationResp struct {
	TransactionID string `json:"tranId"`
	Outcome       string `json:"outcome"`
	Message       string `json:"message"`
}

// Confirmation is the browser-redirect landing endpoint the gateway
// sends the customer back to after the hosted payment page.
//
// The status query parameter comes from a redirect the customer's
// browser performed and is display-only. Settlement truth is the IPN
// path; clients that need the real status poll GET /orders/:tranId.
//
// TODO: look the order up here and serve the stored status instead of
// echoing the redirect parameter once the storefront drops its
// dependence on the raw query values.
func (h *OrderHandler) Confirmation(c *gin.Context) {
	tranID := c.Query("tran_id")
	status := c.Query("status")

	resp := confirmationResp{TransactionID: tranID}
	switch status {
	case "success":
		resp.Outcome = "success"
		resp.Message = "Payment received. Your order is being confirmed."
		// The purchase went through from the customer's point of view,
		// so their cart is done. Best effort only.
		if user := middleware.SessionUser(c); user != nil {
			if err := h.carts.Clear(c.Request.Context(), user.ID); err != nil {
				logging.From(c).Warn("cart clear after confirmation failed", "user", user.ID, "err", err)
			}
		}
	case "fail":
		resp.Outcome = "fail"
		resp.Message = "Payment failed. You have not been charged."
	case "cancel":
		resp.Outcome = "cancel"
		resp.Message = "Payment cancelled. Your cart is unchanged."
	default:
		resp.Outcome = "unknown"
		resp.Message = "Payment outcome pending. Check your order status."
	}
	c.JSON(http.StatusOK, resp)
}
