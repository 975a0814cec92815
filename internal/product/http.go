package product

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sandookluxe/storefront/internal/httpx"
	"github.com/sandookluxe/storefront/internal/log"
	"github.com/sandookluxe/storefront/internal/otel"
)

// HTTPDirectory consumes a remote product directory service speaking plain
// Product JSON: an array for listings, a single object for lookups.
type HTTPDirectory struct {
	baseURL string
	client  *http.Client
}

func NewHTTPDirectory(baseURL string) *HTTPDirectory {
	return &HTTPDirectory{baseURL: baseURL, client: otelhttp.DefaultClient}
}

func (d *HTTPDirectory) get(c context.Context, path string, out interface{}) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "HTTPDirectory get").
		Str("url", d.baseURL+path).
		Logger()

	req, err := http.NewRequestWithContext(c, http.MethodGet, d.baseURL+path, nil)
	if err != nil {
		err = fmt.Errorf("failed creating directory request with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	req.Header.Add(httpx.HeaderRequestID, log.RequestIDFromContext(c))
	resp, err := d.client.Do(req)
	if err != nil {
		err = fmt.Errorf("failed requesting product directory with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("product directory returned status code=%d", resp.StatusCode)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		err = fmt.Errorf("failed decoding product directory response with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	return nil
}

func (d *HTTPDirectory) GetAll(c context.Context) ([]Product, error) {
	c, span := otel.Tracer.Start(c, "HTTPDirectory GetAll")
	defer span.End()

	products := []Product{}
	if err := d.get(c, "/products", &products); err != nil {
		otel.RecordError(err, span)
		return nil, err
	}
	return products, nil
}

func (d *HTTPDirectory) GetByID(c context.Context, id int64) (Product, error) {
	c, span := otel.Tracer.Start(c, "HTTPDirectory GetByID")
	defer span.End()

	p := Product{}
	if err := d.get(c, fmt.Sprintf("/products/%d", id), &p); err != nil {
		otel.RecordError(err, span)
		return Product{}, err
	}
	return p, nil
}

func (d *HTTPDirectory) GetByCategory(c context.Context, slug string) ([]Product, error) {
	c, span := otel.Tracer.Start(c, "HTTPDirectory GetByCategory")
	defer span.End()

	products := []Product{}
	if err := d.get(c, "/products/category/"+url.PathEscape(slug), &products); err != nil {
		otel.RecordError(err, span)
		return nil, err
	}
	return products, nil
}

func (d *HTTPDirectory) Search(c context.Context, query string) ([]Product, error) {
	c, span := otel.Tracer.Start(c, "HTTPDirectory Search")
	defer span.End()

	products := []Product{}
	if err := d.get(c, "/products/search?q="+url.QueryEscape(query), &products); err != nil {
		otel.RecordError(err, span)
		return nil, err
	}
	return products, nil
}
