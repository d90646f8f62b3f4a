package public

import (
	"io"

	"github.com/wallgreat218-lgtm/zenvora-store/internal/http/response"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/service"

	"github.com/gin-gonic/gin"
)

type addCartItemRequest struct {
	ProductKey string            `json:"product_key" binding:"required"`
	Quantity   int               `json:"quantity" binding:"required"`
	Variant    map[string]string `json:"variant"`
}

type setCartQuantityRequest struct {
	ProductKey string            `json:"product_key" binding:"required"`
	Quantity   int               `json:"quantity"`
	Variant    map[string]string `json:"variant"`
}

type removeCartItemRequest struct {
	ProductKey string            `json:"product_key" binding:"required"`
	Variant    map[string]string `json:"variant"`
}

// GetCart returns the resolved cart for the shopper's token.
func (h *Handler) GetCart(c *gin.Context) {
	view, err := h.CartService.View(cartToken(c))
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart fetch failed")
		return
	}
	response.Success(c, view)
}

// GetCartCount returns the badge count.
func (h *Handler) GetCartCount(c *gin.Context) {
	count, err := h.CartService.Count(cartToken(c))
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart fetch failed")
		return
	}
	response.Success(c, gin.H{"count": count})
}

// AddCartItem merges quantity into the matching line.
func (h *Handler) AddCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	view, err := h.CartService.Add(c.Request.Context(), service.AddCartItemInput{
		Token:      cartToken(c),
		ProductKey: req.ProductKey,
		Quantity:   req.Quantity,
		Variant:    req.Variant,
	})
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart update failed")
		return
	}
	response.Success(c, view)
}

// SetCartQuantity replaces a line's quantity; zero removes the line.
func (h *Handler) SetCartQuantity(c *gin.Context) {
	var req setCartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	view, err := h.CartService.SetQuantity(c.Request.Context(), service.SetCartQuantityInput{
		Token:      cartToken(c),
		ProductKey: req.ProductKey,
		Quantity:   req.Quantity,
		Variant:    req.Variant,
	})
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart update failed")
		return
	}
	response.Success(c, view)
}

// RemoveCartItem deletes the matching line.
func (h *Handler) RemoveCartItem(c *gin.Context) {
	var req removeCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	view, err := h.CartService.Remove(c.Request.Context(), cartToken(c), req.ProductKey, req.Variant)
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart update failed")
		return
	}
	response.Success(c, view)
}

// CartEvents streams cart change notifications for the shopper's token
// as server-sent events, so other open storefront views can refresh
// their badge without polling.
func (h *Handler) CartEvents(c *gin.Context) {
	token := cartToken(c)
	events, cancel := h.Broadcaster.Subscribe()
	defer cancel()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case event, ok := <-events:
			if !ok {
				return false
			}
			if event.Token != token {
				return true
			}
			c.SSEvent("cart", gin.H{"token": event.Token, "action": event.Action})
			return true
		}
	})
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(c *gin.Context) {
	token := cartToken(c)
	if err := h.CartService.Clear(c.Request.Context(), token); err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart update failed")
		return
	}
	view, err := h.CartService.View(token)
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart fetch failed")
		return
	}
	response.Success(c, view)
}
