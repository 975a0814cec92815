package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sandookluxe/storefront/internal/httpx"
	"github.com/sandookluxe/storefront/internal/log"
	"github.com/sandookluxe/storefront/internal/otel"
)

// UPIClient charges through the wallet/UPI gateway. The gateway requires an
// order to be created first; the charge then references it. A customer who
// dismisses the gateway flow yields ErrCancelled, distinct from a gateway
// failure. A successful charge reports status "completed".
type UPIClient struct {
	baseURL string
	client  *http.Client
}

func NewUPIClient(baseURL string) *UPIClient {
	return &UPIClient{baseURL: baseURL, client: otelhttp.DefaultClient}
}

func (p *UPIClient) post(c context.Context, path string, in interface{}, out interface{}) (int, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return 0, fmt.Errorf("failed marshaling gateway request with error=%w", err)
	}
	httpReq, err := http.NewRequestWithContext(
		c,
		http.MethodPost,
		p.baseURL+path,
		bytes.NewBuffer(body),
	)
	if err != nil {
		return 0, fmt.Errorf("failed creating gateway request with error=%w", err)
	}
	httpReq.Header.Add(httpx.HeaderContentType, httpx.HeaderValueJson)
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("failed calling upi gateway with error=%w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf(
			"failed decoding upi gateway response with error=%w",
			err,
		)
	}
	return resp.StatusCode, nil
}

// CreateOrder pre-creates a gateway order for the given amount and returns its
// identifier.
func (p *UPIClient) CreateOrder(c context.Context, req Request) (string, error) {
	c, span := otel.Tracer.Start(c, "UPIClient CreateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UPIClient CreateOrder").
		Str(log.KeyTotal, req.Amount.String()).
		Logger()

	logger.Info().Msg("creating gateway order")
	gatewayResp := struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		Message string `json:"message"`
	}{}
	statusCode, err := p.post(c, "/orders", map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
	}, &gatewayResp)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	if statusCode != http.StatusOK || gatewayResp.ID == "" {
		err = fmt.Errorf(
			"upi gateway order creation returned status code=%d message=%s",
			statusCode,
			gatewayResp.Message,
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	logger.Info().Str(log.KeyOrderID, gatewayResp.ID).Msg("created gateway order")
	return gatewayResp.ID, nil
}

func (p *UPIClient) Charge(c context.Context, req Request) (Result, error) {
	c, span := otel.Tracer.Start(c, "UPIClient Charge")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UPIClient Charge").
		Str(log.KeyTotal, req.Amount.String()).
		Logger()

	if req.OrderID == "" {
		orderID, err := p.CreateOrder(c, req)
		if err != nil {
			return Result{}, err
		}
		req.OrderID = orderID
	}
	logger = logger.With().Str(log.KeyOrderID, req.OrderID).Logger()

	logger = logger.With().Str(log.KeyProcess, "charging upi gateway").Logger()
	logger.Info().Msg("charging upi gateway")
	gatewayResp := struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		Message string `json:"message"`
	}{}
	statusCode, err := p.post(c, "/payments", req, &gatewayResp)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Result{}, err
	}

	if gatewayResp.Status == "cancelled" {
		otel.RecordError(ErrCancelled, span)
		logger.Info().Err(ErrCancelled).Msg(ErrCancelled.Error())
		return Result{}, ErrCancelled
	}
	if statusCode != http.StatusOK || gatewayResp.Status != "completed" {
		err = fmt.Errorf(
			"upi gateway returned status code=%d status=%s message=%s",
			statusCode,
			gatewayResp.Status,
			gatewayResp.Message,
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Result{}, err
	}
	logger.Info().Msg("charged upi gateway")

	return Result{ProviderPaymentID: gatewayResp.ID, Status: gatewayResp.Status}, nil
}
