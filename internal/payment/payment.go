// Package payment wraps the external payment gateways behind one Provider
// contract. The storefront only sees success, failure or cancellation.
package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Method identifies the customer-chosen payment capability. There is no
// default: the checkout flow requires an explicit selection.
type Method string

const (
	MethodCard Method = "card"
	MethodUPI  Method = "upi"
)

// ErrCancelled reports that the customer abandoned the gateway flow. It is
// distinct from a gateway failure but handled the same way by checkout.
var ErrCancelled = errors.New("payment cancelled by user")

type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type Request struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	OrderID  string          `json:"orderId,omitempty"`
	Customer Customer        `json:"customer"`
}

type Result struct {
	ProviderPaymentID string `json:"providerPaymentId"`
	Status            string `json:"status"`
}

// Provider charges the customer through an external gateway. Implementations
// must respect the context deadline and treat expiry as a failure.
type Provider interface {
	Charge(c context.Context, req Request) (Result, error)
}
