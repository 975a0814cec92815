// Package cart implements the storefront's cart store: an ordered set of line
// items unique by product, with derived totals and write-through persistence.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sandookluxe/storefront/internal/log"
	"github.com/sandookluxe/storefront/internal/otel"
	"github.com/sandookluxe/storefront/internal/product"
	"github.com/sandookluxe/storefront/internal/storage"
)

// LineItem is one product's cart entry. Product and Price are snapshots taken
// when the item was first added; later catalog changes do not affect them.
type LineItem struct {
	ProductID int64           `json:"productId"`
	Product   product.Product `json:"product"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Listener is notified with a copy of the line items after every committed
// mutation.
type Listener func(items []LineItem)

// Store owns the line items of a single session's cart. Every mutation writes
// the full item list through to durable storage before returning; hydration
// happens once at construction.
type Store struct {
	mu        sync.Mutex
	key       string
	storage   storage.CartStorage
	items     []LineItem
	listeners []Listener
}

// NewStore hydrates a cart store from storage under the given key. A missing,
// unreadable or unparseable payload falls back to an empty cart; it is logged
// and never fatal.
func NewStore(c context.Context, key string, st storage.CartStorage) *Store {
	c, span := otel.Tracer.Start(c, "CartStore NewStore")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore NewStore").
		Str(log.KeyCartKey, key).
		Logger()

	store := &Store{key: key, storage: st}

	payload, ok, err := st.Load(c, key)
	if err != nil {
		err = fmt.Errorf("failed loading persisted cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return store
	}
	if !ok {
		logger.Info().Msg("no persisted cart found, starting empty")
		return store
	}

	items := []LineItem{}
	if err := json.Unmarshal(payload, &items); err != nil {
		err = fmt.Errorf("failed parsing persisted cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return store
	}
	store.items = items
	logger.Info().Int(log.KeyCartItems, len(items)).Msg("hydrated cart from storage")
	return store
}

// Subscribe registers a listener invoked after each committed mutation.
func (s *Store) Subscribe(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// AddToCart merges the product into the cart: an existing line item gains
// quantity 1, otherwise a new line item is appended with a snapshot of the
// product and its price. Out-of-stock products are accepted; stock is the UI
// layer's concern.
func (s *Store) AddToCart(c context.Context, p product.Product) error {
	c, span := otel.Tracer.Start(c, "CartStore AddToCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore AddToCart").
		Str(log.KeyCartKey, s.key).
		Int64(log.KeyProductID, p.ID).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.items
	next := make([]LineItem, len(previous))
	copy(next, previous)

	merged := false
	for i, item := range next {
		if item.ProductID == p.ID {
			next[i].Quantity++
			merged = true
			logger.Info().Int64(log.KeyQuantity, next[i].Quantity).Msg("merged cart item")
			break
		}
	}
	if !merged {
		next = append(next, LineItem{
			ProductID: p.ID,
			Product:   p,
			Quantity:  1,
			Price:     p.Price,
		})
		logger.Info().Msg("appended cart item")
	}

	s.items = next
	if err := s.persistLocked(c); err != nil {
		s.items = previous
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	s.notifyLocked()
	return nil
}

// RemoveFromCart deletes the line item for productID. Removing an absent item
// is a no-op, not an error.
func (s *Store) RemoveFromCart(c context.Context, productID int64) error {
	c, span := otel.Tracer.Start(c, "CartStore RemoveFromCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore RemoveFromCart").
		Str(log.KeyCartKey, s.key).
		Int64(log.KeyProductID, productID).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.items
	next := make([]LineItem, 0, len(previous))
	for _, item := range previous {
		if item.ProductID != productID {
			next = append(next, item)
		}
	}

	s.items = next
	if err := s.persistLocked(c); err != nil {
		s.items = previous
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	s.notifyLocked()
	logger.Info().Int(log.KeyCartItems, len(next)).Msg("removed cart item")
	return nil
}

// UpdateQuantity sets the line item's quantity. A quantity of zero or less
// removes the item; updating an absent item is a no-op.
func (s *Store) UpdateQuantity(c context.Context, productID int64, quantity int64) error {
	c, span := otel.Tracer.Start(c, "CartStore UpdateQuantity")
	defer span.End()

	if quantity <= 0 {
		return s.RemoveFromCart(c, productID)
	}

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore UpdateQuantity").
		Str(log.KeyCartKey, s.key).
		Int64(log.KeyProductID, productID).
		Int64(log.KeyQuantity, quantity).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.items
	next := make([]LineItem, len(previous))
	copy(next, previous)
	for i, item := range next {
		if item.ProductID == productID {
			next[i].Quantity = quantity
			break
		}
	}

	s.items = next
	if err := s.persistLocked(c); err != nil {
		s.items = previous
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	s.notifyLocked()
	logger.Info().Msg("updated cart item quantity")
	return nil
}

// ClearCart empties the cart.
func (s *Store) ClearCart(c context.Context) error {
	c, span := otel.Tracer.Start(c, "CartStore ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore ClearCart").
		Str(log.KeyCartKey, s.key).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.items
	s.items = []LineItem{}
	if err := s.persistLocked(c); err != nil {
		s.items = previous
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	s.notifyLocked()
	logger.Info().Msg("cleared cart")
	return nil
}

// CartTotal sums price*quantity over the snapshots in the cart. Catalog price
// changes after an item was added do not move the total.
func (s *Store) CartTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(item.Quantity)))
	}
	return total
}

// CartItemCount sums quantities across line items, which is distinct from the
// number of line items.
func (s *Store) CartItemCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Items returns a copy of the line items in display order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) persistLocked(c context.Context) error {
	payload, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("failed marshaling cart with error=%w", err)
	}
	if err := s.storage.Save(c, s.key, payload); err != nil {
		return fmt.Errorf("failed persisting cart with error=%w", err)
	}
	return nil
}

func (s *Store) notifyLocked() {
	items := make([]LineItem, len(s.items))
	copy(items, s.items)
	for _, fn := range s.listeners {
		fn(items)
	}
}
