package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jayedsikder/commerceflow-api/internal/adapter/http/middleware"
	"github.com/jayedsikder/commerceflow-api/internal/cart"
	"github.com/jayedsikder/commerceflow-api/internal/catalog"
	domain "github.com/jayedsikder/commerceflow-api/internal/entity"
)

// CartHandler serves the session's server-side cart. The cart id is the
// authenticated user id; prices come from the catalog, never the client.
type CartHandler struct {
	carts   *cart.Service
	catalog catalog.Source
}

func NewCartHandler(carts *cart.Service, source catalog.Source) *CartHandler {
	return &CartHandler{carts: carts, catalog: source}
}

type cartResp struct {
	Items           []domain.LineItem `json:"items"`
	TotalItems      int               `json:"totalItems"`
	TotalPriceCents int64             `json:"totalPriceCents"`
}

func toCartResp(c *domain.Cart) cartResp {
	items := c.Snapshot()
	if items == nil {
		items = []domain.LineItem{}
	}
	return cartResp{
		Items:           items,
		TotalItems:      c.TotalItems(),
		TotalPriceCents: c.TotalPriceCents(),
	}
}

func (h *CartHandler) Get(c *gin.Context) {
	user := middleware.SessionUser(c)
	crt, err := h.carts.Get(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cart_unavailable"})
		return
	}
	c.JSON(http.StatusOK, toCartResp(crt))
}

type addItemReq struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req addItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	product, err := h.catalog.ProductByID(c.Request.Context(), req.ProductID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog_unavailable"})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown_product"})
		return
	}

	user := middleware.SessionUser(c)
	crt, err := h.carts.AddItem(c.Request.Context(), user.ID,
		product.ID, product.Name, product.PriceCents, req.Quantity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cart_unavailable"})
		return
	}
	c.JSON(http.StatusOK, toCartResp(crt))
}

type updateQuantityReq struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req updateQuantityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	user := middleware.SessionUser(c)
	crt, err := h.carts.UpdateQuantity(c.Request.Context(), user.ID, c.Param("productId"), req.Quantity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cart_unavailable"})
		return
	}
	c.JSON(http.StatusOK, toCartResp(crt))
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	user := middleware.SessionUser(c)
	crt, err := h.carts.RemoveItem(c.Request.Context(), user.ID, c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cart_unavailable"})
		return
	}
	c.JSON(http.StatusOK, toCartResp(crt))
}

func (h *CartHandler) Clear(c *gin.Context) {
	user := middleware.SessionUser(c)
	if err := h.carts.Clear(c.Request.Context(), user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cart_unavailable"})
		return
	}
	c.Status(http.StatusNoContent)
}
