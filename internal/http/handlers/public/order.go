package public

import (
	"github.com/wallgreat218-lgtm/zenvora-store/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetOrder returns the confirmed order for a reference.
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.OrderService.GetByReference(c.Param("reference"))
	if err != nil {
		respondWithMappedError(c, err, orderErrorRules, response.CodeInternal, "order fetch failed")
		return
	}
	response.Success(c, order)
}
