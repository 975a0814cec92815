package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/sandookluxe/storefront/internal/httpx"
	"github.com/sandookluxe/storefront/internal/log"
	"github.com/sandookluxe/storefront/internal/otel"
	"github.com/sandookluxe/storefront/internal/product"
)

type ProductController struct {
	directory product.Directory
}

func AttachProductController(router *mux.Router, directory product.Directory) {
	controller := ProductController{directory: directory}

	subrouter := router.PathPrefix("/products").Subrouter()
	subrouter.HandleFunc("", controller.FindProducts).Methods(http.MethodGet)
	subrouter.HandleFunc("/search", controller.SearchProducts).Methods(http.MethodGet)
	subrouter.HandleFunc("/category/{slug}", controller.FindProductsByCategory).
		Methods(http.MethodGet)
	subrouter.HandleFunc("/{productId:[0-9]+}", controller.FindProductById).
		Methods(http.MethodGet)
}

func (t ProductController) FindProducts(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController FindProducts").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding products").Logger()
	logger.Info().Msg("finding products")
	c = logger.WithContext(c)
	products, err := t.directory.GetAll(c)
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("found %d products", len(products))

	httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully found products",
		"data": map[string]interface{}{
			"products": products,
		},
	})
}

func (t ProductController) FindProductById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindProductById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController FindProductById").
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

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Info().Msg("finding product")
	c = logger.WithContext(c)
	found, err := t.directory.GetByID(c, productId)
	if err != nil {
		err = fmt.Errorf("failed finding productId=%d with error=%w", productId, err)
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
	logger.Info().Msgf("found productId=%d", productId)

	httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("productId=%d found", productId),
		"data": map[string]interface{}{
			"product": found,
		},
	})
}

func (t ProductController) FindProductsByCategory(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindProductsByCategory")
	defer span.End()

	slug := mux.Vars(r)["slug"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController FindProductsByCategory").
		Str(log.KeyCategory, slug).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding products by category").Logger()
	logger.Info().Msg("finding products by category")
	c = logger.WithContext(c)
	products, err := t.directory.GetByCategory(c, slug)
	if err != nil {
		err = fmt.Errorf("failed finding products by category=%s with error=%w", slug, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("found %d products", len(products))

	httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("found products in category=%s", slug),
		"data": map[string]interface{}{
			"products": products,
		},
	})
}

func (t ProductController) SearchProducts(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController SearchProducts")
	defer span.End()

	query := r.URL.Query().Get("q")
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController SearchProducts").
		Str(log.KeyQuery, query).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "searching products").Logger()
	logger.Info().Msg("searching products")
	c = logger.WithContext(c)
	products, err := t.directory.Search(c, query)
	if err != nil {
		err = fmt.Errorf("failed searching products with query=%s with error=%w", query, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("found %d products", len(products))

	httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("found products matching query=%s", query),
		"data": map[string]interface{}{
			"products": products,
		},
	})
}
