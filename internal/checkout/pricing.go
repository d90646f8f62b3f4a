package checkout

import (
	"github.com/wallgreat218-lgtm/zenvora-store/internal/constants"

	"github.com/shopspring/decimal"
)

// PricingRules are the static pricing constants for a storefront.
type PricingRules struct {
	Currency              string
	DiscountRate          decimal.Decimal
	ExpressFee            decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

// PricedLine is a cart line resolved against the catalog, priced at the
// discounted unit price.
type PricedLine struct {
	ProductKey string            `json:"product_key"`
	Name       string            `json:"name"`
	Quantity   int               `json:"quantity"`
	Variant    map[string]string `json:"variant,omitempty"`
	UnitPrice  decimal.Decimal   `json:"unit_price"`
	LineTotal  decimal.Decimal   `json:"line_total"`
}

// Totals are the derived order amounts, rounded to 2 decimal places.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

// DiscountedUnitPrice applies the flat promotional discount to a base
// price and rounds to 2 decimals.
func DiscountedUnitPrice(base decimal.Decimal, rules PricingRules) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(rules.DiscountRate)
	return base.Mul(factor).Round(2)
}

// ShippingCost returns the fee for a tier: standard is free, express is a
// flat fee waived at or above the free-shipping threshold (0 disables the
// threshold).
func ShippingCost(tier string, subtotal decimal.Decimal, rules PricingRules) decimal.Decimal {
	if tier != constants.ShippingTierExpress {
		return decimal.Zero
	}
	if rules.FreeShippingThreshold.IsPositive() && subtotal.GreaterThanOrEqual(rules.FreeShippingThreshold) {
		return decimal.Zero
	}
	return rules.ExpressFee.Round(2)
}

// ComputeTotals derives order totals from priced lines and a shipping
// tier. Tax is a placeholder, always zero.
func ComputeTotals(lines []PricedLine, tier string, rules PricingRules) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal)
	}
	subtotal = subtotal.Round(2)
	shipping := ShippingCost(tier, subtotal, rules)
	tax := decimal.Zero
	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax).Round(2),
		Currency: rules.Currency,
	}
}

// DeliveryEstimate returns the human delivery window for a tier.
func DeliveryEstimate(tier string) string {
	if tier == constants.ShippingTierExpress {
		return constants.DeliveryEstimateExpress
	}
	return constants.DeliveryEstimateStandard
}
