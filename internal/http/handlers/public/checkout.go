package public

import (
	"errors"

	"github.com/wallgreat218-lgtm/zenvora-store/internal/checkout"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/http/response"

	"github.com/gin-gonic/gin"
)

type updateAddressRequest struct {
	Address checkout.Address `json:"address"`
	Touched []string         `json:"touched"`
}

type updateShippingRequest struct {
	Tier string `json:"tier" binding:"required"`
}

type updatePaymentRequest struct {
	Card    checkout.CardDetails `json:"card"`
	Touched []string             `json:"touched"`
}

type gotoStepRequest struct {
	Step string `json:"step" binding:"required"`
}

// BeginCheckout starts or resumes the wizard for the shopper's cart.
func (h *Handler) BeginCheckout(c *gin.Context) {
	state, err := h.CheckoutService.Begin(cartToken(c))
	if err != nil {
		respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "checkout failed")
		return
	}
	response.Success(c, state)
}

// GetCheckoutState returns the current wizard snapshot.
func (h *Handler) GetCheckoutState(c *gin.Context) {
	state, err := h.CheckoutService.State(cartToken(c))
	if err != nil {
		respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "checkout failed")
		return
	}
	response.Success(c, state)
}

// UpdateAddress replaces the address form state.
func (h *Handler) UpdateAddress(c *gin.Context) {
	var req updateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	state, err := h.CheckoutService.UpdateAddress(cartToken(c), req.Address, req.Touched)
	if err != nil {
		respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "checkout failed")
		return
	}
	response.Success(c, state)
}

// UpdateShipping selects the shipping tier.
func (h *Handler) UpdateShipping(c *gin.Context) {
	var req updateShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	state, err := h.CheckoutService.UpdateShipping(cartToken(c), req.Tier)
	if err != nil {
		respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "checkout failed")
		return
	}
	response.Success(c, state)
}

// UpdatePayment replaces the card form state.
func (h *Handler) UpdatePayment(c *gin.Context) {
	var req updatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	state, err := h.CheckoutService.UpdatePayment(cartToken(c), req.Card, req.Touched)
	if err != nil {
		respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "checkout failed")
		return
	}
	response.Success(c, state)
}

// NextStep advances the wizard. A validation failure still returns the
// refreshed state so the storefront can render the field errors.
func (h *Handler) NextStep(c *gin.Context) {
	state, err := h.CheckoutService.Next(cartToken(c))
	if err != nil {
		respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "checkout failed")
		return
	}
	response.Success(c, state)
}

// BackStep moves one step backward.
func (h *Handler) BackStep(c *gin.Context) {
	state, err := h.CheckoutService.Back(cartToken(c))
	if err != nil {
		respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "checkout failed")
		return
	}
	response.Success(c, state)
}

// GotoStep jumps to an already-reached step.
func (h *Handler) GotoStep(c *gin.Context) {
	var req gotoStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	state, err := h.CheckoutService.Goto(cartToken(c), req.Step)
	if err != nil {
		respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "checkout failed")
		return
	}
	response.Success(c, state)
}

// PlaceOrder finalizes the checkout. Validation failures return the
// refreshed state alongside the error so the client lands on the broken
// step.
func (h *Handler) PlaceOrder(c *gin.Context) {
	state, err := h.CheckoutService.PlaceOrder(c.Request.Context(), cartToken(c))
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrAddressInvalid), errors.Is(err, checkout.ErrPaymentInvalid):
			response.ErrorWithData(c, response.CodeBadRequest, "checkout has validation errors", state)
		default:
			respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "place order failed")
		}
		return
	}
	requestLog(c).Infow("checkout_completed", "order_ref", state.OrderRef)
	response.Success(c, state)
}
