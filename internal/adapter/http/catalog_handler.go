package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jayedsikder/commerceflow-api/internal/catalog"
)

type CatalogHandler struct {
	source catalog.Source
}

func NewCatalogHandler(source catalog.Source) *CatalogHandler {
	return &CatalogHandler{source: source}
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()

	if category := c.Query("category"); category != "" {
		products, err := h.source.ProductsByCategory(ctx, category)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog_unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
		return
	}

	products, err := h.source.AllProducts(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog_unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	p, err := h.source.ProductByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog_unavailable"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	cats, err := h.source.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog_unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}
