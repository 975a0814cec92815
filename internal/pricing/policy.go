// Package pricing is the single source for the storefront's order total
// policy: flat shipping under a free-shipping threshold plus flat-rate GST.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/sandookluxe/storefront/internal/config"
)

// Policy holds the shipping and tax constants. Every consumer quotes through
// one Policy value; the numbers are never duplicated at call sites.
type Policy struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	TaxRate               decimal.Decimal
}

// Quote is the derived breakdown for a given subtotal.
type Quote struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// DefaultPolicy is the production policy: free shipping strictly above 25000,
// otherwise a flat 500 fee, and 18% GST on the subtotal.
func DefaultPolicy() Policy {
	return Policy{
		FreeShippingThreshold: decimal.NewFromInt(25000),
		FlatShippingFee:       decimal.NewFromInt(500),
		TaxRate:               decimal.NewFromFloat(0.18),
	}
}

// FromConfig builds a Policy from configuration, falling back to the default
// constants for unset values. A configured zero is an override, not an unset
// field: free shipping for everyone and a zero tax rate are both valid
// policies.
func FromConfig(cfg config.Pricing) Policy {
	policy := DefaultPolicy()
	if cfg.FreeShippingThreshold != nil {
		policy.FreeShippingThreshold = decimal.NewFromFloat(*cfg.FreeShippingThreshold)
	}
	if cfg.FlatShippingFee != nil {
		policy.FlatShippingFee = decimal.NewFromFloat(*cfg.FlatShippingFee)
	}
	if cfg.TaxRate != nil {
		policy.TaxRate = decimal.NewFromFloat(*cfg.TaxRate)
	}
	return policy
}

// Quote derives shipping, tax and total from the subtotal. It is pure and
// recomputed on every call; shipping is free only when the subtotal is
// strictly greater than the threshold.
func (p Policy) Quote(subtotal decimal.Decimal) Quote {
	shipping := p.FlatShippingFee
	if subtotal.GreaterThan(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(p.TaxRate)
	return Quote{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}
