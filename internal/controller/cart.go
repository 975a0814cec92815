package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/sandookluxe/storefront/internal/cart"
	"github.com/sandookluxe/storefront/internal/httpx"
	"github.com/sandookluxe/storefront/internal/log"
	"github.com/sandookluxe/storefront/internal/otel"
	"github.com/sandookluxe/storefront/internal/pricing"
	"github.com/sandookluxe/storefront/internal/product"
)

type addCartItemRequest struct {
	ProductID int64 `json:"productId" validate:"required"`
}

type updateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

type CartController struct {
	carts     *cart.Manager
	directory product.Directory
	policy    pricing.Policy
}

func AttachCartController(
	router *mux.Router,
	carts *cart.Manager,
	directory product.Directory,
	policy pricing.Policy,
) {
	controller := CartController{carts: carts, directory: directory, policy: policy}

	subrouter := router.PathPrefix("/cart").Subrouter()
	subrouter.HandleFunc("", controller.GetCart).Methods(http.MethodGet)
	subrouter.HandleFunc("", controller.ClearCart).Methods(http.MethodDelete)
	subrouter.HandleFunc("/items", controller.AddCartItem).Methods(http.MethodPost)
	subrouter.HandleFunc("/items/{productId:[0-9]+}", controller.UpdateCartItem).
		Methods(http.MethodPut)
	subrouter.HandleFunc("/items/{productId:[0-9]+}", controller.RemoveCartItem).
		Methods(http.MethodDelete)
}

func (t CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController GetCart")
	defer span.End()

	session := sessionID(w, r)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController GetCart").
		Str(log.KeySessionID, session).
		Logger()

	c = logger.WithContext(c)
	store := t.carts.Store(c, session)
	quote := t.policy.Quote(store.CartTotal())
	logger.Info().
		Int64(log.KeyQuantity, store.CartItemCount()).
		Str(log.KeySubtotal, quote.Subtotal.String()).
		Msg("found cart")

	httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully found cart",
		"data": map[string]interface{}{
			"items":     store.Items(),
			"itemCount": store.CartItemCount(),
			"quote":     quote,
		},
	})
}

func (t CartController) AddCartItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddCartItem")
	defer span.End()

	session := sessionID(w, r)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController AddCartItem").
		Str(log.KeySessionID, session).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := addCartItemRequest{}
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

	logger = logger.With().Str(log.KeyProcess, "validating requestbody").Logger()
	logger.Info().Msg("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Int64(log.KeyProductID, reqBody.ProductID).Logger()
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Info().Msg("finding product")
	c = logger.WithContext(c)
	found, err := t.directory.GetByID(c, reqBody.ProductID)
	if err != nil {
		err = fmt.Errorf("failed finding productId=%d with error=%w", reqBody.ProductID, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusInternalServerError
		if errors.Is(err, product.ErrProductNotFound) {
			statusCode = http.StatusNotFound
		}
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("found productId=%d", reqBody.ProductID)

	logger = logger.With().Str(log.KeyProcess, "adding cart item").Logger()
	logger.Info().Msg("adding cart item")
	store := t.carts.Store(c, session)
	if err := store.AddToCart(c, found); err != nil {
		err = fmt.Errorf("failed adding productId=%d to cart with error=%w", found.ID, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("added cart item")

	httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("added productId=%d to cart", found.ID),
		"data": map[string]interface{}{
			"items":     store.Items(),
			"itemCount": store.CartItemCount(),
		},
	})
}

func (t CartController) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController UpdateCartItem")
	defer span.End()

	session := sessionID(w, r)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController UpdateCartItem").
		Str(log.KeySessionID, session).
		Str(log.KeyProcess, "validating productId").
		Logger()

	logger.Info().Msg("validating productId")
	productId, err := strconv.ParseInt(mux.Vars(r)["productId"], 10, 64)
	if err != nil {
		err = fmt.Errorf("failed validating productId with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Int64(log.KeyProductID, productId).Logger()
	logger.Info().Msgf("validated productId=%d", productId)

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := updateCartItemRequest{}
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
	logger = logger.With().Int64(log.KeyQuantity, reqBody.Quantity).Logger()
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "updating cart item quantity").Logger()
	logger.Info().Msg("updating cart item quantity")
	c = logger.WithContext(c)
	store := t.carts.Store(c, session)
	if err := store.UpdateQuantity(c, productId, reqBody.Quantity); err != nil {
		err = fmt.Errorf(
			"failed updating quantity of productId=%d with error=%w",
			productId,
			err,
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("updated cart item quantity")

	httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("updated quantity of productId=%d", productId),
		"data": map[string]interface{}{
			"items":     store.Items(),
			"itemCount": store.CartItemCount(),
		},
	})
}

func (t CartController) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveCartItem")
	defer span.End()

	session := sessionID(w, r)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController RemoveCartItem").
		Str(log.KeySessionID, session).
		Str(log.KeyProcess, "validating productId").
		Logger()

	logger.Info().Msg("validating productId")
	productId, err := strconv.ParseInt(mux.Vars(r)["productId"], 10, 64)
	if err != nil {
		err = fmt.Errorf("failed validating productId with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Int64(log.KeyProductID, productId).Logger()
	logger.Info().Msgf("validated productId=%d", productId)

	logger = logger.With().Str(log.KeyProcess, "removing cart item").Logger()
	logger.Info().Msg("removing cart item")
	c = logger.WithContext(c)
	store := t.carts.Store(c, session)
	if err := store.RemoveFromCart(c, productId); err != nil {
		err = fmt.Errorf("failed removing productId=%d from cart with error=%w", productId, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("removed cart item")

	httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("removed productId=%d from cart", productId),
		"data": map[string]interface{}{
			"items":     store.Items(),
			"itemCount": store.CartItemCount(),
		},
	})
}

func (t CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController ClearCart")
	defer span.End()

	session := sessionID(w, r)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController ClearCart").
		Str(log.KeySessionID, session).
		Str(log.KeyProcess, "clearing cart").
		Logger()

	logger.Info().Msg("clearing cart")
	c = logger.WithContext(c)
	store := t.carts.Store(c, session)
	if err := store.ClearCart(c); err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("cleared cart")

	httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cleared cart",
	})
}
