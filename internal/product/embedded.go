package product

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sandookluxe/storefront/internal/log"
	"github.com/sandookluxe/storefront/internal/otel"
)

//go:embed products.json
var catalogJson []byte

// EmbeddedDirectory serves the catalog bundled into the binary. It is the
// development and demo variant of the Directory contract.
type EmbeddedDirectory struct {
	products []Product
}

func NewEmbeddedDirectory() (*EmbeddedDirectory, error) {
	products := []Product{}
	if err := json.Unmarshal(catalogJson, &products); err != nil {
		return nil, fmt.Errorf("failed unmarshaling embedded catalog with error=%w", err)
	}
	return &EmbeddedDirectory{products: products}, nil
}

func (d *EmbeddedDirectory) GetAll(c context.Context) ([]Product, error) {
	_, span := otel.Tracer.Start(c, "EmbeddedDirectory GetAll")
	defer span.End()

	out := make([]Product, len(d.products))
	copy(out, d.products)
	return out, nil
}

func (d *EmbeddedDirectory) GetByID(c context.Context, id int64) (Product, error) {
	_, span := otel.Tracer.Start(c, "EmbeddedDirectory GetByID")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "EmbeddedDirectory GetByID").
		Int64(log.KeyProductID, id).
		Logger()

	for _, p := range d.products {
		if p.ID == id {
			return p, nil
		}
	}
	err := fmt.Errorf("productId=%d with error=%w", id, ErrProductNotFound)
	otel.RecordError(err, span)
	logger.Info().Err(err).Msg(err.Error())
	return Product{}, err
}

func (d *EmbeddedDirectory) GetByCategory(c context.Context, slug string) ([]Product, error) {
	_, span := otel.Tracer.Start(c, "EmbeddedDirectory GetByCategory")
	defer span.End()

	out := []Product{}
	for _, p := range d.products {
		if CategorySlug(p.Category) == strings.ToLower(slug) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (d *EmbeddedDirectory) Search(c context.Context, query string) ([]Product, error) {
	_, span := otel.Tracer.Start(c, "EmbeddedDirectory Search")
	defer span.End()

	term := strings.ToLower(query)
	out := []Product{}
	for _, p := range d.products {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Description), term) ||
			strings.Contains(strings.ToLower(p.Category), term) {
			out = append(out, p)
		}
	}
	return out, nil
}
