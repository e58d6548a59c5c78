package in_memory

import (
	"context"
	"sync"

	"github.com/VK-RED/clobby/internal/domain"
	"github.com/VK-RED/clobby/internal/port"
)

var _ port.Repository = (*MemoryRepo)(nil)

// MemoryRepo keeps the authoritative records in process memory. Used in tests
// and when no Postgres DSN is configured.
type MemoryRepo struct {
	mu       sync.Mutex
	markets  map[string]*domain.Market
	balances map[string]*domain.PendingBalance
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		markets:  make(map[string]*domain.Market),
		balances: make(map[string]*domain.PendingBalance),
	}
}

func (r *MemoryRepo) SaveMarket(ctx context.Context, m *domain.Market) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	bids := *m.Bids
	asks := *m.Asks
	events := *m.Events
	cp.Bids, cp.Asks, cp.Events = &bids, &asks, &events
	r.markets[m.Name] = &cp
	return nil
}

func (r *MemoryRepo) SavePendingBalance(ctx context.Context, b *domain.PendingBalance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.balances[b.Market+"/"+b.User] = &cp
	return nil
}

func (r *MemoryRepo) LoadMarkets(ctx context.Context) ([]*domain.Market, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Market, 0, len(r.markets))
	for _, m := range r.markets {
		cp := *m
		bids := *m.Bids
		asks := *m.Asks
		events := *m.Events
		cp.Bids, cp.Asks, cp.Events = &bids, &asks, &events
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MemoryRepo) LoadPendingBalances(ctx context.Context) ([]*domain.PendingBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.PendingBalance, 0, len(r.balances))
	for _, b := range r.balances {
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}
