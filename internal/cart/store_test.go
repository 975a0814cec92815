package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandookluxe/storefront/internal/product"
	"github.com/sandookluxe/storefront/internal/storage"
)

func testProduct(id int64, name string, price int64) product.Product {
	return product.Product{
		ID:       id,
		Name:     name,
		Category: "Necklaces",
		Price:    decimal.NewFromInt(price),
		InStock:  true,
	}
}

type brokenStorage struct{}

func (brokenStorage) Load(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (brokenStorage) Save(context.Context, string, []byte) error {
	return errors.New("storage down")
}

func (brokenStorage) Delete(context.Context, string) error {
	return errors.New("storage down")
}

func TestAddToCartMergesExistingItem(t *testing.T) {
	c := context.Background()
	store := NewStore(c, "cart:test", storage.NewMemory())
	necklace := testProduct(1, "Kundan Bridal Necklace", 48500)

	require.NoError(t, store.AddToCart(c, necklace))
	require.NoError(t, store.AddToCart(c, necklace))

	items := store.Items()
	require.Len(t, items, 1)
	assert.EqualValues(t, 2, items[0].Quantity)
	assert.EqualValues(t, 2, store.CartItemCount())
}

func TestAddToCartKeepsDisplayOrder(t *testing.T) {
	c := context.Background()
	store := NewStore(c, "cart:test", storage.NewMemory())

	require.NoError(t, store.AddToCart(c, testProduct(1, "Necklace", 48500)))
	require.NoError(t, store.AddToCart(c, testProduct(2, "Earrings", 12750)))
	require.NoError(t, store.AddToCart(c, testProduct(1, "Necklace", 48500)))

	items := store.Items()
	require.Len(t, items, 2)
	assert.EqualValues(t, 1, items[0].ProductID)
	assert.EqualValues(t, 2, items[1].ProductID)
}

func TestRemoveFromCartIsIdempotent(t *testing.T) {
	c := context.Background()
	store := NewStore(c, "cart:test", storage.NewMemory())
	require.NoError(t, store.AddToCart(c, testProduct(1, "Necklace", 48500)))

	require.NoError(t, store.RemoveFromCart(c, 1))
	require.NoError(t, store.RemoveFromCart(c, 1))
	require.NoError(t, store.RemoveFromCart(c, 999))

	assert.Empty(t, store.Items())
}

func TestUpdateQuantityFloor(t *testing.T) {
	tests := []struct {
		name     string
		quantity int64
	}{
		{name: "zero quantity removes the item", quantity: 0},
		{name: "negative quantity removes the item", quantity: -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := context.Background()
			store := NewStore(c, "cart:test", storage.NewMemory())
			require.NoError(t, store.AddToCart(c, testProduct(1, "Necklace", 48500)))

			require.NoError(t, store.UpdateQuantity(c, 1, tt.quantity))

			assert.Empty(t, store.Items())
			assert.EqualValues(t, 0, store.CartItemCount())
		})
	}
}

func TestUpdateQuantitySetsValue(t *testing.T) {
	c := context.Background()
	store := NewStore(c, "cart:test", storage.NewMemory())
	require.NoError(t, store.AddToCart(c, testProduct(1, "Necklace", 48500)))

	require.NoError(t, store.UpdateQuantity(c, 1, 4))

	items := store.Items()
	require.Len(t, items, 1)
	assert.EqualValues(t, 4, items[0].Quantity)
}

func TestUpdateQuantityAbsentItemIsNoOp(t *testing.T) {
	c := context.Background()
	store := NewStore(c, "cart:test", storage.NewMemory())
	require.NoError(t, store.AddToCart(c, testProduct(1, "Necklace", 48500)))

	require.NoError(t, store.UpdateQuantity(c, 999, 3))

	items := store.Items()
	require.Len(t, items, 1)
	assert.EqualValues(t, 1, items[0].Quantity)
}

func TestCartTotal(t *testing.T) {
	c := context.Background()
	store := NewStore(c, "cart:test", storage.NewMemory())

	require.NoError(t, store.AddToCart(c, testProduct(1, "Necklace", 1000)))
	require.NoError(t, store.UpdateQuantity(c, 1, 2))
	require.NoError(t, store.AddToCart(c, testProduct(2, "Anklets", 500)))
	require.NoError(t, store.UpdateQuantity(c, 2, 3))

	assert.Equal(t, "3500", store.CartTotal().String())
	assert.EqualValues(t, 5, store.CartItemCount())
}

func TestPriceSnapshotSurvivesCatalogChange(t *testing.T) {
	c := context.Background()
	store := NewStore(c, "cart:test", storage.NewMemory())
	necklace := testProduct(1, "Necklace", 1000)

	require.NoError(t, store.AddToCart(c, necklace))

	repriced := necklace
	repriced.Price = decimal.NewFromInt(2000)
	require.NoError(t, store.AddToCart(c, repriced))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "1000", items[0].Price.String())
	assert.Equal(t, "2000", store.CartTotal().String())
}

func TestCartPersistsAcrossStores(t *testing.T) {
	c := context.Background()
	memory := storage.NewMemory()

	store := NewStore(c, "cart:test", memory)
	require.NoError(t, store.AddToCart(c, testProduct(1, "Necklace", 48500)))
	require.NoError(t, store.AddToCart(c, testProduct(2, "Earrings", 12750)))
	require.NoError(t, store.AddToCart(c, testProduct(3, "Anklets", 4350)))
	require.NoError(t, store.UpdateQuantity(c, 1, 2))
	require.NoError(t, store.RemoveFromCart(c, 3))

	rehydrated := NewStore(c, "cart:test", memory)
	items := rehydrated.Items()
	require.Len(t, items, 2)
	assert.EqualValues(t, 2, items[0].Quantity)
	assert.Equal(t, store.Items(), items)
	assert.Equal(t, store.CartTotal().String(), rehydrated.CartTotal().String())
}

func TestCorruptPayloadFallsBackToEmptyCart(t *testing.T) {
	c := context.Background()
	memory := storage.NewMemory()
	require.NoError(t, memory.Save(c, "cart:test", []byte("not json")))

	store := NewStore(c, "cart:test", memory)

	assert.Empty(t, store.Items())
	require.NoError(t, store.AddToCart(c, testProduct(1, "Necklace", 48500)))
	assert.EqualValues(t, 1, store.CartItemCount())
}

func TestFailedPersistRollsBackMutation(t *testing.T) {
	c := context.Background()
	store := NewStore(c, "cart:test", brokenStorage{})

	err := store.AddToCart(c, testProduct(1, "Necklace", 48500))

	require.Error(t, err)
	assert.Empty(t, store.Items())
	assert.EqualValues(t, 0, store.CartItemCount())
}

func TestSubscribeNotifiesAfterMutation(t *testing.T) {
	c := context.Background()
	store := NewStore(c, "cart:test", storage.NewMemory())

	notified := [][]LineItem{}
	store.Subscribe(func(items []LineItem) {
		notified = append(notified, items)
	})

	require.NoError(t, store.AddToCart(c, testProduct(1, "Necklace", 48500)))
	require.NoError(t, store.ClearCart(c))

	require.Len(t, notified, 2)
	assert.Len(t, notified[0], 1)
	assert.Empty(t, notified[1])
}

func TestManagerReturnsSameStorePerSession(t *testing.T) {
	c := context.Background()
	manager := NewManager(storage.NewMemory(), 30*time.Minute)

	first := manager.Store(c, "session-a")
	second := manager.Store(c, "session-a")
	other := manager.Store(c, "session-b")

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)
}

func TestManagerEvictsIdleStores(t *testing.T) {
	c := context.Background()
	memory := storage.NewMemory()
	manager := NewManager(memory, 30*time.Minute)

	first := manager.Store(c, "session-a")
	require.NoError(t, first.AddToCart(c, testProduct(1, "Necklace", 48500)))

	manager.mu.Lock()
	manager.evictIdleLocked(time.Now().Add(31 * time.Minute))
	manager.mu.Unlock()

	// The evicted session rehydrates its cart from storage on the next touch.
	second := manager.Store(c, "session-a")
	assert.NotSame(t, first, second)
	assert.EqualValues(t, 1, second.CartItemCount())
}

func TestManagerZeroIdleTTLDisablesEviction(t *testing.T) {
	c := context.Background()
	manager := NewManager(storage.NewMemory(), 0)

	first := manager.Store(c, "session-a")

	manager.mu.Lock()
	manager.evictIdleLocked(time.Now().Add(24 * time.Hour))
	manager.mu.Unlock()

	assert.Same(t, first, manager.Store(c, "session-a"))
}
