package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/sandookluxe/storefront/internal/cart"
	"github.com/sandookluxe/storefront/internal/payment"
	"github.com/sandookluxe/storefront/internal/pricing"
)

// Manager keeps at most one live checkout flow per session. Starting a new
// flow replaces any abandoned one; a completed flow is dropped so the next
// checkout starts fresh. Flows idle for longer than idleTTL are evicted on
// the next access, so abandoned checkouts do not accumulate.
type Manager struct {
	mu        sync.Mutex
	policy    pricing.Policy
	providers map[payment.Method]payment.Provider
	currency  string
	timeout   time.Duration
	idleTTL   time.Duration
	flows     map[string]*flowEntry
}

type flowEntry struct {
	flow     *Flow
	lastSeen time.Time
}

func NewManager(
	policy pricing.Policy,
	providers map[payment.Method]payment.Provider,
	currency string,
	timeout time.Duration,
	idleTTL time.Duration,
) *Manager {
	return &Manager{
		policy:    policy,
		providers: providers,
		currency:  currency,
		timeout:   timeout,
		idleTTL:   idleTTL,
		flows:     map[string]*flowEntry{},
	}
}

// Start begins a checkout for the session's cart, replacing any flow already
// in progress. An empty cart is rejected with ErrEmptyCart.
func (m *Manager) Start(c context.Context, sessionID string, cartStore *cart.Store) (*Flow, error) {
	flow, err := NewFlow(c, cartStore, m.policy, m.providers, m.currency, m.timeout)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	m.evictIdleLocked(now)
	m.flows[sessionID] = &flowEntry{flow: flow, lastSeen: now}
	return flow, nil
}

// Flow returns the session's in-progress checkout, if any.
func (m *Manager) Flow(sessionID string) (*Flow, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.evictIdleLocked(now)

	entry, ok := m.flows[sessionID]
	if !ok {
		return nil, false
	}
	entry.lastSeen = now
	return entry.flow, true
}

// Drop forgets the session's flow. Called after completion so the session can
// start a new checkout.
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.flows, sessionID)
}

func (m *Manager) evictIdleLocked(now time.Time) {
	if m.idleTTL <= 0 {
		return
	}
	for id, entry := range m.flows {
		if now.Sub(entry.lastSeen) > m.idleTTL {
			delete(m.flows, id)
		}
	}
}
