package cart

import (
	"context"
	"sync"
	"time"

	"github.com/sandookluxe/storefront/internal/constants"
	"github.com/sandookluxe/storefront/internal/storage"
)

// Manager hands out one hydrated Store per session. Each store persists under
// its own namespaced key; the manager only guards the session map, the stores
// themselves stay single-session. Sessions idle for longer than idleTTL are
// evicted on the next access; the storage port remains the source of truth,
// so an evicted session rehydrates on its next request.
type Manager struct {
	mu      sync.Mutex
	storage storage.CartStorage
	idleTTL time.Duration
	stores  map[string]*storeEntry
}

type storeEntry struct {
	store    *Store
	lastSeen time.Time
}

func NewManager(st storage.CartStorage, idleTTL time.Duration) *Manager {
	return &Manager{storage: st, idleTTL: idleTTL, stores: map[string]*storeEntry{}}
}

// Store returns the cart store for the session, hydrating it from storage on
// first touch.
func (m *Manager) Store(c context.Context, sessionID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.evictIdleLocked(now)

	if entry, ok := m.stores[sessionID]; ok {
		entry.lastSeen = now
		return entry.store
	}
	store := NewStore(c, constants.CartKeyPrefix+sessionID, m.storage)
	m.stores[sessionID] = &storeEntry{store: store, lastSeen: now}
	return store
}

func (m *Manager) evictIdleLocked(now time.Time) {
	if m.idleTTL <= 0 {
		return
	}
	for id, entry := range m.stores {
		if now.Sub(entry.lastSeen) > m.idleTTL {
			delete(m.stores, id)
		}
	}
}
