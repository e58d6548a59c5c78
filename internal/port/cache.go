package port

import (
	"context"

	"github.com/VK-RED/clobby/internal/domain"
)

type Cache interface {
	SetDepth(ctx context.Context, market string, snap *domain.DepthSnapshot) error
	GetDepth(ctx context.Context, market string) (*domain.DepthSnapshot, error)
	Invalidate(ctx context.Context, market string) error
}
