package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrCardDeclined means the provider rejected the charge.
	ErrCardDeclined = errors.New("card declined")
	// ErrGatewayUnavailable means the provider could not be reached.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// DraftLine is one order line submitted for authorization.
type DraftLine struct {
	ProductKey string
	Name       string
	Quantity   int
	UnitPrice  decimal.Decimal
}

// Draft is a charge request. CardNumber is passed through to the
// provider and never retained.
type Draft struct {
	Lines          []DraftLine
	Total          decimal.Decimal
	Currency       string
	CardholderName string
	CardNumber     string
}

// Result is the provider's answer to an accepted charge.
type Result struct {
	OrderRef string
	Status   string
}

// Gateway authorizes charges. Implementations are swappable per the
// payment.provider config key.
type Gateway interface {
	Name() string
	Submit(ctx context.Context, draft Draft) (*Result, error)
}
