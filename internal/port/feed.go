package port

import (
	"context"

	"github.com/VK-RED/clobby/internal/domain"
)

// FillPublisher pushes executed fills to downstream consumers (market data,
// analytics). Publishing is best-effort: a failure must never fail the
// matching call that produced the fills.
type FillPublisher interface {
	PublishFills(ctx context.Context, market string, fills []domain.Fill) error
}
