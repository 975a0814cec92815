// Package checkout drives the two-step checkout: shipping details, then
// payment through an explicitly chosen provider.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sandookluxe/storefront/internal/cart"
	"github.com/sandookluxe/storefront/internal/log"
	"github.com/sandookluxe/storefront/internal/otel"
	"github.com/sandookluxe/storefront/internal/payment"
	"github.com/sandookluxe/storefront/internal/pricing"
)

type Step string

const (
	StepShipping  Step = "shipping"
	StepPayment   Step = "payment"
	StepCompleted Step = "completed"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("invalid checkout transition")
	ErrUnsupportedMethod = errors.New("unsupported payment method")
)

// ShippingInfo carries the required delivery fields. All fields except the
// country must be non-empty before the flow advances to payment.
type ShippingInfo struct {
	FirstName  string `json:"firstName"  validate:"required"`
	LastName   string `json:"lastName"   validate:"required"`
	Email      string `json:"email"      validate:"required,email"`
	Phone      string `json:"phone"      validate:"required"`
	Address    string `json:"address"    validate:"required"`
	City       string `json:"city"       validate:"required"`
	State      string `json:"state"      validate:"required"`
	PostalCode string `json:"pincode"    validate:"required"`
	Country    string `json:"country"`
}

// PaymentDetails is the final submission. The method must be chosen
// explicitly; card submissions additionally require the card fields.
type PaymentDetails struct {
	Method     payment.Method `json:"method"     validate:"required,oneof=card upi"`
	NameOnCard string         `json:"nameOnCard" validate:"required_if=Method card"`
	CardNumber string         `json:"cardNumber" validate:"required_if=Method card"`
	ExpiryDate string         `json:"expiryDate" validate:"required_if=Method card"`
	CVV        string         `json:"cvv"        validate:"required_if=Method card"`
}

// Flow is one session's checkout state machine:
// shipping -> payment -> completed, with payment -> shipping as the only
// backward transition. Completion is reachable solely through a successful
// provider charge. The mutex serializes submissions, so a duplicate payment
// request observes the completed step instead of charging again.
type Flow struct {
	cartStore *cart.Store
	policy    pricing.Policy
	providers map[payment.Method]payment.Provider
	currency  string
	timeout   time.Duration
	validate  *validator.Validate

	mu       sync.Mutex
	step     Step
	shipping ShippingInfo
}

// NewFlow starts a checkout for the given cart. An empty cart is rejected, so
// the shipping step is unreachable with zero line items.
func NewFlow(
	c context.Context,
	cartStore *cart.Store,
	policy pricing.Policy,
	providers map[payment.Method]payment.Provider,
	currency string,
	timeout time.Duration,
) (*Flow, error) {
	c, span := otel.Tracer.Start(c, "CheckoutFlow NewFlow")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutFlow NewFlow").
		Logger()

	if cartStore.CartItemCount() == 0 {
		otel.RecordError(ErrEmptyCart, span)
		logger.Info().Err(ErrEmptyCart).Msg("rejected checkout for empty cart")
		return nil, ErrEmptyCart
	}

	logger.Info().Msg("started checkout flow")
	return &Flow{
		cartStore: cartStore,
		policy:    policy,
		providers: providers,
		currency:  currency,
		timeout:   timeout,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		step:      StepShipping,
	}, nil
}

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

func (f *Flow) Shipping() ShippingInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shipping
}

// Quote derives the current totals from the live cart subtotal. It is never
// cached; cart changes are reflected on the next call.
func (f *Flow) Quote() pricing.Quote {
	return f.policy.Quote(f.cartStore.CartTotal())
}

// SubmitShipping validates the shipping fields and advances to the payment
// step. A validation failure leaves the state unchanged.
func (f *Flow) SubmitShipping(c context.Context, info ShippingInfo) error {
	c, span := otel.Tracer.Start(c, "CheckoutFlow SubmitShipping")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutFlow SubmitShipping").
		Logger()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepShipping {
		otel.RecordError(ErrInvalidTransition, span)
		logger.Info().Err(ErrInvalidTransition).Msg(ErrInvalidTransition.Error())
		return ErrInvalidTransition
	}

	if err := f.validate.StructCtx(c, info); err != nil {
		err = fmt.Errorf("failed validating shipping info with error=%w", err)
		otel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return err
	}

	f.shipping = info
	f.step = StepPayment
	logger.Info().Msg("accepted shipping info, moved to payment step")
	return nil
}

// Back returns from the payment step to the shipping step so the customer can
// edit their address.
func (f *Flow) Back(c context.Context) error {
	_, span := otel.Tracer.Start(c, "CheckoutFlow Back")
	defer span.End()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepPayment {
		otel.RecordError(ErrInvalidTransition, span)
		return ErrInvalidTransition
	}
	f.step = StepShipping
	return nil
}

// SubmitPayment charges the chosen provider for the quoted total. Provider
// errors, cancellation and timeouts all keep the flow on the payment step
// with the cart untouched. A successful charge snapshots the order, clears
// the cart and completes the flow.
func (f *Flow) SubmitPayment(c context.Context, details PaymentDetails) (Order, error) {
	c, span := otel.Tracer.Start(c, "CheckoutFlow SubmitPayment")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutFlow SubmitPayment").
		Str(log.KeyMethod, string(details.Method)).
		Logger()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepPayment {
		otel.RecordError(ErrInvalidTransition, span)
		logger.Info().Err(ErrInvalidTransition).Msg(ErrInvalidTransition.Error())
		return Order{}, ErrInvalidTransition
	}

	if err := f.validate.StructCtx(c, details); err != nil {
		err = fmt.Errorf("failed validating payment details with error=%w", err)
		otel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return Order{}, err
	}

	provider, ok := f.providers[details.Method]
	if !ok {
		err := fmt.Errorf("method=%s with error=%w", details.Method, ErrUnsupportedMethod)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Order{}, err
	}

	quote := f.Quote()
	logger = logger.With().
		Str(log.KeySubtotal, quote.Subtotal.String()).
		Str(log.KeyTotal, quote.Total.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "charging provider").Logger()
	logger.Info().Msg("charging provider")
	chargeCtx, cancel := context.WithTimeout(c, f.timeout)
	defer cancel()
	result, err := provider.Charge(chargeCtx, payment.Request{
		Amount:   quote.Total,
		Currency: f.currency,
		Customer: payment.Customer{
			FirstName: f.shipping.FirstName,
			LastName:  f.shipping.LastName,
			Email:     f.shipping.Email,
			Phone:     f.shipping.Phone,
		},
	})
	if err != nil {
		err = fmt.Errorf("failed charging provider with error=%w", err)
		otel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return Order{}, err
	}
	logger.Info().Msg("charged provider")

	order := Order{
		ID:        uuid.New(),
		Items:     f.cartStore.Items(),
		Shipping:  f.shipping,
		Method:    details.Method,
		Payment:   result,
		Quote:     quote,
		Status:    "confirmed",
		CreatedAt: time.Now().UTC(),
	}
	logger = logger.With().Str(log.KeyOrderID, order.ID.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Info().Msg("clearing cart")
	if err := f.cartStore.ClearCart(c); err != nil {
		// The charge is already captured; the order stands even if the cart
		// payload could not be rewritten.
		err = fmt.Errorf("failed clearing cart after checkout with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	}

	f.step = StepCompleted
	logger.Info().Msg("completed checkout")
	return order, nil
}
