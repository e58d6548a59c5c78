package port

import (
	"context"

	"github.com/VK-RED/clobby/internal/domain"
)

// Repository persists the authoritative records: one row per market (the
// market row carries both book sides and the event log, mutated in place)
// and one row per (user, market) pending balance.
type Repository interface {
	SaveMarket(ctx context.Context, m *domain.Market) error
	SavePendingBalance(ctx context.Context, b *domain.PendingBalance) error
	LoadMarkets(ctx context.Context) ([]*domain.Market, error)
	LoadPendingBalances(ctx context.Context) ([]*domain.PendingBalance, error)
}
