package exchange

import (
	"context"
	"sync"

	"cexlink/internal/model"
)

// State is the per-connector cache: the bidirectional market index, the
// last-seen balance and the local order cache some venues need because
// their fetch-single-order response omits the original amount. Markets are
// populated once per session and read-only afterwards; only a wholesale
// reload replaces them.
type State struct {
	mu              sync.RWMutex
	marketsBySymbol map[string]*model.Market
	marketsByID     map[string]*model.Market
	orderCache      map[string]*model.Order
	lastBalance     *model.Account
	loaded          bool
}

// NewState returns an empty connector state.
func NewState() *State {
	return &State{
		marketsBySymbol: map[string]*model.Market{},
		marketsByID:     map[string]*model.Market{},
		orderCache:      map[string]*model.Order{},
	}
}

// EnsureMarkets loads the market catalog through fetch if it has not been
// loaded yet, then returns the symbol index. The guard is the explicit
// precondition every symbol-keyed call depends on.
func (s *State) EnsureMarkets(ctx context.Context, fetch func(context.Context) ([]model.Market, error)) (map[string]*model.Market, error) {
	s.mu.RLock()
	if s.loaded {
		defer s.mu.RUnlock()
		return s.marketsBySymbol, nil
	}
	s.mu.RUnlock()

	markets, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	s.SetMarkets(markets)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.marketsBySymbol, nil
}

// SetMarkets replaces the market catalog wholesale and rebuilds both
// indexes.
func (s *State) SetMarkets(markets []model.Market) {
	bySymbol := make(map[string]*model.Market, len(markets))
	byID := make(map[string]*model.Market, len(markets))
	for i := range markets {
		m := markets[i]
		bySymbol[m.Symbol] = &m
		byID[m.ID] = &m
	}
	s.mu.Lock()
	s.marketsBySymbol = bySymbol
	s.marketsByID = byID
	s.loaded = true
	s.mu.Unlock()
}

// MarketsLoaded reports whether the catalog has been populated.
func (s *State) MarketsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Market resolves a unified symbol, nil when unknown.
func (s *State) Market(symbol string) *model.Market {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.marketsBySymbol[symbol]
}

// MarketByID resolves an exchange-native identifier, nil when unknown.
func (s *State) MarketByID(id string) *model.Market {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.marketsByID[id]
}

// CacheOrder remembers the last-known form of an order.
func (s *State) CacheOrder(o *model.Order) {
	if o == nil || o.ID == "" {
		return
	}
	s.mu.Lock()
	s.orderCache[o.ID] = o
	s.mu.Unlock()
}

// CachedOrder returns the cached order for id, nil when unknown.
func (s *State) CachedOrder(id string) *model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orderCache[id]
}

// SetBalance remembers the last fetched account snapshot.
func (s *State) SetBalance(a *model.Account) {
	s.mu.Lock()
	s.lastBalance = a
	s.mu.Unlock()
}

// LastBalance returns the last fetched account snapshot, nil before the
// first fetch.
func (s *State) LastBalance() *model.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastBalance
}
