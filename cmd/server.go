package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/sandookluxe/storefront/internal/cart"
	"github.com/sandookluxe/storefront/internal/checkout"
	"github.com/sandookluxe/storefront/internal/config"
	"github.com/sandookluxe/storefront/internal/constants"
	"github.com/sandookluxe/storefront/internal/controller"
	"github.com/sandookluxe/storefront/internal/infra"
	"github.com/sandookluxe/storefront/internal/log"
	"github.com/sandookluxe/storefront/internal/middleware"
	"github.com/sandookluxe/storefront/internal/otel"
	"github.com/sandookluxe/storefront/internal/payment"
	"github.com/sandookluxe/storefront/internal/pricing"
	"github.com/sandookluxe/storefront/internal/product"
	"github.com/sandookluxe/storefront/internal/storage"
)

func runServer(c context.Context) {
	c, span := otel.Tracer.Start(c, "runServer")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppStorefrontService).
		Str(log.KeyTag, "main runServer").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "init config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, "storefront")
	logger = logger.With().Any(log.KeyConfig, cfg).Logger()
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(constants.AppStorefrontService),
		middleware.Logging,
		middleware.RecoverPanic,
	)
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	otelShutdowns, err := otel.InitOtelSdk(c, constants.AppStorefrontService, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		c = logger.WithContext(c)
		if err := otel.ShutdownOtel(c, otelShutdowns); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "initializing cart storage").Logger()
	logger.Info().Msg("initializing cart storage")
	c = logger.WithContext(c)
	var cartStorage storage.CartStorage
	switch cfg.CartStorage.Driver {
	case "redis":
		cache := infra.NewCacheClient(c, cfg.Cache)
		defer func() {
			logger.Info().Msg("shutting down cache")
			if err := cache.Close(); err != nil {
				err = fmt.Errorf("failed shutting down cache with error=%w", err)
				otel.RecordError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				return
			}
			logger.Info().Msg("shutdown cache")
		}()
		cartStorage = storage.NewRedis(cache)
	case "file":
		fileStorage, err := storage.NewFile(cfg.CartStorage.Dir)
		if err != nil {
			err = fmt.Errorf("failed initializing file cart storage with error=%w", err)
			otel.RecordError(err, span)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		cartStorage = fileStorage
	case "memory":
		cartStorage = storage.NewMemory()
	default:
		err := fmt.Errorf("unknown cart storage driver=%s", cfg.CartStorage.Driver)
		otel.RecordError(err, span)
		logger.Fatal().Err(err).Msg(err.Error())
	}
	logger.Info().Msg("initialized cart storage")

	logger = logger.With().Str(log.KeyProcess, "initializing product directory").Logger()
	logger.Info().Msg("initializing product directory")
	c = logger.WithContext(c)
	var directory product.Directory
	switch cfg.Catalog.Driver {
	case "postgres":
		db := infra.NewDatabaseClient(c, cfg.Database)
		defer func() {
			logger.Info().Msg("shutting down database")
			db.Close()
			logger.Info().Msg("shutdown database")
		}()
		directory = product.NewPostgresDirectory(db)
	case "http":
		directory = product.NewHTTPDirectory(cfg.Catalog.BaseURL)
	case "embedded":
		embedded, err := product.NewEmbeddedDirectory()
		if err != nil {
			err = fmt.Errorf("failed initializing embedded directory with error=%w", err)
			otel.RecordError(err, span)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		directory = embedded
	default:
		err := fmt.Errorf("unknown catalog driver=%s", cfg.Catalog.Driver)
		otel.RecordError(err, span)
		logger.Fatal().Err(err).Msg(err.Error())
	}
	logger.Info().Msg("initialized product directory")

	logger = logger.With().Str(log.KeyProcess, "initializing services").Logger()
	logger.Info().Msg("initializing services")
	policy := pricing.FromConfig(cfg.Pricing)
	providers := map[payment.Method]payment.Provider{
		payment.MethodCard: payment.NewCardClient(cfg.Payment.CardGatewayURL),
		payment.MethodUPI:  payment.NewUPIClient(cfg.Payment.UPIGatewayURL),
	}
	sessionIdleTTL := time.Duration(cfg.Application.SessionIdleMinutes) * time.Minute
	carts := cart.NewManager(cartStorage, sessionIdleTTL)
	flows := checkout.NewManager(
		policy,
		providers,
		cfg.Payment.Currency,
		time.Duration(cfg.Payment.TimeoutSeconds)*time.Second,
		sessionIdleTTL,
	)
	logger.Info().Msg("initialized services")

	logger = logger.With().Str(log.KeyProcess, "initializing controllers").Logger()
	logger.Info().Msg("initializing controllers")
	controller.AttachProductController(router, directory)
	controller.AttachCartController(router, carts, directory, policy)
	controller.AttachCheckoutController(router, carts, flows)
	logger.Info().Msg("initialized controllers")

	logger = logger.With().Str(log.KeyProcess, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	httpServer := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      router,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	logger.Info().Msg("initialized server")

	go func() {
		logger = logger.With().Str(log.KeyProcess, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", httpServer.Addr)

		if err := httpServer.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("error=%w occured while server is running", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()

	<-c.Done()
	logger = logger.With().Str(log.KeyProcess, "shutting down http server").Logger()
	logger.Info().Msg("received interuption signal shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		err = fmt.Errorf("failed shutting down http server with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("shutdown http server")
}
