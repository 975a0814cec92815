package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/sandookluxe/storefront/internal/config"
)

func TestQuoteShippingBoundary(t *testing.T) {
	tests := []struct {
		name             string
		subtotal         int64
		expectedShipping string
	}{
		{
			name:             "subtotal at the threshold still pays flat shipping",
			subtotal:         25000,
			expectedShipping: "500",
		},
		{
			name:             "subtotal strictly above the threshold ships free",
			subtotal:         25001,
			expectedShipping: "0",
		},
		{
			name:             "small subtotal pays flat shipping",
			subtotal:         4350,
			expectedShipping: "500",
		},
	}

	policy := DefaultPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := policy.Quote(decimal.NewFromInt(tt.subtotal))
			assert.Equal(t, tt.expectedShipping, quote.Shipping.String())
		})
	}
}

func TestQuoteTaxAndTotal(t *testing.T) {
	policy := DefaultPolicy()

	quote := policy.Quote(decimal.NewFromInt(10000))

	assert.Equal(t, "10000", quote.Subtotal.String())
	assert.Equal(t, "500", quote.Shipping.String())
	assert.Equal(t, "1800", quote.Tax.String())
	assert.Equal(t, "12300", quote.Total.String())
}

func TestQuoteEmptySubtotal(t *testing.T) {
	quote := DefaultPolicy().Quote(decimal.Zero)

	assert.Equal(t, "500", quote.Shipping.String())
	assert.Equal(t, "0", quote.Tax.String())
	assert.Equal(t, "500", quote.Total.String())
}

func floatPtr(f float64) *float64 {
	return &f
}

func TestFromConfigFallsBackToDefaults(t *testing.T) {
	policy := FromConfig(config.Pricing{})

	assert.Equal(t, "25000", policy.FreeShippingThreshold.String())
	assert.Equal(t, "500", policy.FlatShippingFee.String())
	assert.Equal(t, "0.18", policy.TaxRate.String())
}

func TestFromConfigOverrides(t *testing.T) {
	policy := FromConfig(config.Pricing{
		FreeShippingThreshold: floatPtr(50000),
		FlatShippingFee:       floatPtr(250),
		TaxRate:               floatPtr(0.05),
	})

	assert.Equal(t, "50000", policy.FreeShippingThreshold.String())
	assert.Equal(t, "250", policy.FlatShippingFee.String())
	assert.Equal(t, "0.05", policy.TaxRate.String())
}

func TestFromConfigHonorsConfiguredZero(t *testing.T) {
	policy := FromConfig(config.Pricing{
		FreeShippingThreshold: floatPtr(0),
		FlatShippingFee:       floatPtr(0),
		TaxRate:               floatPtr(0),
	})

	assert.Equal(t, "0", policy.FreeShippingThreshold.String())
	assert.Equal(t, "0", policy.FlatShippingFee.String())
	assert.Equal(t, "0", policy.TaxRate.String())

	quote := policy.Quote(decimal.NewFromInt(4350))
	assert.Equal(t, "0", quote.Shipping.String())
	assert.Equal(t, "0", quote.Tax.String())
	assert.Equal(t, "4350", quote.Total.String())
}
