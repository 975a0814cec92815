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

// CardClient charges through the card gateway with a single round trip. A
// successful charge reports status "succeeded".
type CardClient struct {
	baseURL string
	client  *http.Client
}

func NewCardClient(baseURL string) *CardClient {
	return &CardClient{baseURL: baseURL, client: otelhttp.DefaultClient}
}

func (p *CardClient) Charge(c context.Context, req Request) (Result, error) {
	c, span := otel.Tracer.Start(c, "CardClient Charge")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CardClient Charge").
		Str(log.KeyTotal, req.Amount.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "charging card gateway").Logger()
	logger.Info().Msg("charging card gateway")
	body, err := json.Marshal(req)
	if err != nil {
		err = fmt.Errorf("failed marshaling charge request with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Result{}, err
	}
	httpReq, err := http.NewRequestWithContext(
		c,
		http.MethodPost,
		p.baseURL+"/charges",
		bytes.NewBuffer(body),
	)
	if err != nil {
		err = fmt.Errorf("failed creating charge request with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Result{}, err
	}
	httpReq.Header.Add(httpx.HeaderContentType, httpx.HeaderValueJson)
	resp, err := p.client.Do(httpReq)
	if err != nil {
		err = fmt.Errorf("failed charging card gateway with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Result{}, err
	}
	defer resp.Body.Close()

	gatewayResp := struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		Message string `json:"message"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&gatewayResp); err != nil {
		err = fmt.Errorf("failed decoding card gateway response with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Result{}, err
	}

	if resp.StatusCode != http.StatusOK || gatewayResp.Status != "succeeded" {
		err = fmt.Errorf(
			"card gateway returned status code=%d status=%s message=%s",
			resp.StatusCode,
			gatewayResp.Status,
			gatewayResp.Message,
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Result{}, err
	}
	logger.Info().Msg("charged card gateway")

	return Result{ProviderPaymentID: gatewayResp.ID, Status: gatewayResp.Status}, nil
}
