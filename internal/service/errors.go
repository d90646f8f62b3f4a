package service

import "errors"

// Sentinel errors mapped to HTTP codes in the handler layer.
var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProductNotAvailable = errors.New("product not available")
	ErrInvalidCartItem     = errors.New("invalid cart item")
	ErrCartTokenRequired   = errors.New("cart token required")
	ErrSessionNotFound     = errors.New("checkout session not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrPaymentDeclined     = errors.New("payment declined")
	ErrPaymentUnavailable  = errors.New("payment gateway unavailable")
)
