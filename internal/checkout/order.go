package checkout

import (
	"time"

	"github.com/google/uuid"

	"github.com/sandookluxe/storefront/internal/cart"
	"github.com/sandookluxe/storefront/internal/payment"
	"github.com/sandookluxe/storefront/internal/pricing"
)

// Order is the immutable confirmation snapshot produced by a successful
// checkout. It captures the line items and quote as they were at the moment
// of payment; later cart or catalog changes do not touch it.
type Order struct {
	ID        uuid.UUID       `json:"id"`
	Items     []cart.LineItem `json:"items"`
	Shipping  ShippingInfo    `json:"shipping"`
	Method    payment.Method  `json:"paymentMethod"`
	Payment   payment.Result  `json:"payment"`
	Quote     pricing.Quote   `json:"quote"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}
