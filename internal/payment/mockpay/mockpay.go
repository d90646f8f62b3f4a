package mockpay

import (
	"context"
	"strings"

	"github.com/wallgreat218-lgtm/zenvora-store/internal/constants"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/payment"

	"github.com/google/uuid"
)

// Gateway is a provider stand-in that authorizes every charge with a
// fresh reference. One card number can be configured to decline, which
// exercises the decline path end to end.
type Gateway struct {
	declineCard string
}

// New creates the mock gateway. declineCard may be empty.
func New(declineCard string) *Gateway {
	return &Gateway{declineCard: digits(declineCard)}
}

// Name identifies the provider.
func (g *Gateway) Name() string {
	return constants.PaymentProviderMock
}

// Submit authorizes the draft and mints an order reference.
func (g *Gateway) Submit(ctx context.Context, draft payment.Draft) (*payment.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, payment.ErrGatewayUnavailable
	}
	if g.declineCard != "" && digits(draft.CardNumber) == g.declineCard {
		return nil, payment.ErrCardDeclined
	}
	return &payment.Result{
		OrderRef: "ZV-" + strings.ToUpper(uuid.NewString()[:8]),
		Status:   constants.OrderStatusConfirmed,
	}, nil
}

func digits(v string) string {
	var b strings.Builder
	for _, r := range v {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
