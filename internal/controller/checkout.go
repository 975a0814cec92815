package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/sandookluxe/storefront/internal/cart"
	"github.com/sandookluxe/storefront/internal/checkout"
	"github.com/sandookluxe/storefront/internal/httpx"
	"github.com/sandookluxe/storefront/internal/log"
	"github.com/sandookluxe/storefront/internal/otel"
	"github.com/sandookluxe/storefront/internal/payment"
)

type CheckoutController struct {
	carts *cart.Manager
	flows *checkout.Manager
}

func AttachCheckoutController(router *mux.Router, carts *cart.Manager, flows *checkout.Manager) {
	controller := CheckoutController{carts: carts, flows: flows}

	subrouter := router.PathPrefix("/checkout").Subrouter()
	subrouter.HandleFunc("", controller.StartCheckout).Methods(http.MethodPost)
	subrouter.HandleFunc("", controller.GetCheckout).Methods(http.MethodGet)
	subrouter.HandleFunc("/shipping", controller.SubmitShipping).Methods(http.MethodPost)
	subrouter.HandleFunc("/back", controller.Back).Methods(http.MethodPost)
	subrouter.HandleFunc("/payment", controller.SubmitPayment).Methods(http.MethodPost)
}

func (t CheckoutController) StartCheckout(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController StartCheckout")
	defer span.End()

	session := sessionID(w, r)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController StartCheckout").
		Str(log.KeySessionID, session).
		Str(log.KeyProcess, "starting checkout").
		Logger()

	logger.Info().Msg("starting checkout")
	c = logger.WithContext(c)
	store := t.carts.Store(c, session)
	flow, err := t.flows.Start(c, session, store)
	if err != nil {
		err = fmt.Errorf("failed starting checkout with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		if errors.Is(err, checkout.ErrEmptyCart) {
			httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusConflict,
				"message":    err.Error(),
				"redirect":   "/cart",
			})
			return
		}
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("started checkout")

	httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "started checkout",
		"data": map[string]interface{}{
			"step":  flow.Step(),
			"items": store.Items(),
			"quote": flow.Quote(),
		},
	})
}

func (t CheckoutController) GetCheckout(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController GetCheckout")
	defer span.End()

	session := sessionID(w, r)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController GetCheckout").
		Str(log.KeySessionID, session).
		Logger()

	flow, ok := t.flows.Flow(session)
	if !ok {
		err := errors.New("no checkout in progress")
		otel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusNotFound,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Str(log.KeyStep, string(flow.Step())).Msg("found checkout")

	httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "found checkout",
		"data": map[string]interface{}{
			"step":     flow.Step(),
			"shipping": flow.Shipping(),
			"quote":    flow.Quote(),
		},
	})
}

func (t CheckoutController) SubmitShipping(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController SubmitShipping")
	defer span.End()

	session := sessionID(w, r)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController SubmitShipping").
		Str(log.KeySessionID, session).
		Logger()

	flow, ok := t.flows.Flow(session)
	if !ok {
		err := errors.New("no checkout in progress")
		otel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusNotFound,
			"message":    err.Error(),
		})
		return
	}

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := checkout.ShippingInfo{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "submitting shipping info").Logger()
	logger.Info().Msg("submitting shipping info")
	c = logger.WithContext(c)
	if err := flow.SubmitShipping(c, reqBody); err != nil {
		err = fmt.Errorf("failed submitting shipping info with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusBadRequest
		if errors.Is(err, checkout.ErrInvalidTransition) {
			statusCode = http.StatusConflict
		}
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("submitted shipping info")

	httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "submitted shipping info",
		"data": map[string]interface{}{
			"step":  flow.Step(),
			"quote": flow.Quote(),
		},
	})
}

func (t CheckoutController) Back(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController Back")
	defer span.End()

	session := sessionID(w, r)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController Back").
		Str(log.KeySessionID, session).
		Logger()

	flow, ok := t.flows.Flow(session)
	if !ok {
		err := errors.New("no checkout in progress")
		otel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusNotFound,
			"message":    err.Error(),
		})
		return
	}

	c = logger.WithContext(c)
	if err := flow.Back(c); err != nil {
		err = fmt.Errorf("failed returning to shipping step with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusConflict,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("returned to shipping step")

	httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "returned to shipping step",
		"data": map[string]interface{}{
			"step":     flow.Step(),
			"shipping": flow.Shipping(),
		},
	})
}

func (t CheckoutController) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController SubmitPayment")
	defer span.End()

	session := sessionID(w, r)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController SubmitPayment").
		Str(log.KeySessionID, session).
		Logger()

	flow, ok := t.flows.Flow(session)
	if !ok {
		err := errors.New("no checkout in progress")
		otel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusNotFound,
			"message":    err.Error(),
		})
		return
	}

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := checkout.PaymentDetails{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KeyMethod, string(reqBody.Method)).Logger()
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "submitting payment").Logger()
	logger.Info().Msg("submitting payment")
	c = logger.WithContext(c)
	order, err := flow.SubmitPayment(c, reqBody)
	if err != nil {
		err = fmt.Errorf("failed submitting payment with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())

		statusCode := http.StatusBadGateway
		retryable := true
		validationErrs := validator.ValidationErrors{}
		switch {
		case errors.Is(err, payment.ErrCancelled):
			statusCode = http.StatusConflict
		case errors.Is(err, checkout.ErrInvalidTransition),
			errors.Is(err, checkout.ErrUnsupportedMethod):
			statusCode = http.StatusConflict
			retryable = false
		case errors.As(err, &validationErrs):
			statusCode = http.StatusBadRequest
			retryable = false
		}
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
			"retryable":  retryable,
		})
		return
	}
	logger = logger.With().Str(log.KeyOrderID, order.ID.String()).Logger()
	logger.Info().Msg("submitted payment")

	t.flows.Drop(session)

	httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("confirmed orderId=%s", order.ID.String()),
		"data": map[string]interface{}{
			"order": order,
		},
	})
}
