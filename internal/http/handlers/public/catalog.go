package public

import (
	"errors"

	"github.com/wallgreat218-lgtm/zenvora-store/internal/http/response"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/service"

	"github.com/gin-gonic/gin"
)

// ListProducts returns the catalog in display order.
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.CatalogService.List(c.Query("search"))
	if err != nil {
		respondError(c, response.CodeInternal, "product list failed", err)
		return
	}
	response.Success(c, gin.H{"items": products, "total": len(products)})
}

// GetProduct returns one product by slug.
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.CatalogService.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}
	response.Success(c, product)
}
