package public

import (
	"errors"

	"github.com/wallgreat218-lgtm/zenvora-store/internal/checkout"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/http/response"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError maps a business error onto an envelope code and
// message.
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrCartTokenRequired, code: response.CodeBadRequest, msg: "cart token required"},
	{target: service.ErrInvalidCartItem, code: response.CodeBadRequest, msg: "invalid cart item"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, msg: "product not found"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, msg: "product not available"},
}

var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrCartTokenRequired, code: response.CodeBadRequest, msg: "cart token required"},
	{target: service.ErrSessionNotFound, code: response.CodeNotFound, msg: "checkout session not found"},
	{target: checkout.ErrUnknownStep, code: response.CodeBadRequest, msg: "unknown checkout step"},
	{target: checkout.ErrStepLocked, code: response.CodeBadRequest, msg: "step has not been reached yet"},
	{target: checkout.ErrNoNextStep, code: response.CodeBadRequest, msg: "no next step from here"},
	{target: checkout.ErrNotAtReview, code: response.CodeBadRequest, msg: "order can only be placed from the review step"},
	{target: checkout.ErrSessionComplete, code: response.CodeConflict, msg: "checkout already completed"},
	{target: checkout.ErrCartEmpty, code: response.CodeBadRequest, msg: "cart is empty"},
	{target: service.ErrPaymentDeclined, code: response.CodeBadRequest, msg: "payment declined"},
	{target: service.ErrPaymentUnavailable, code: response.CodeUnavailable, msg: "payment gateway unavailable"},
}

var orderErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
}
