package product

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

// Product is read-only catalog data; the cart keeps its own snapshot of it.
type Product struct {
	ID             int64             `json:"id"`
	Name           string            `json:"name"`
	Category       string            `json:"category"`
	Description    string            `json:"description"`
	Price          decimal.Decimal   `json:"price"`
	Images         []string          `json:"images"`
	InStock        bool              `json:"inStock"`
	Featured       bool              `json:"featured"`
	Specifications map[string]string `json:"specifications,omitempty"`
}

// Directory is the product catalog contract. Implementations are swappable by
// configuration: an embedded catalog, a remote directory service, or postgres.
type Directory interface {
	GetAll(c context.Context) ([]Product, error)
	GetByID(c context.Context, id int64) (Product, error)
	GetByCategory(c context.Context, slug string) ([]Product, error)
	Search(c context.Context, query string) ([]Product, error)
}

// CategorySlug converts a display category like "Gold Necklaces" to its URL
// slug "gold-necklaces".
func CategorySlug(category string) string {
	return strings.ToLower(strings.ReplaceAll(category, " ", "-"))
}
