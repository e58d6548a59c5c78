package in_memory

import (
	"context"
	"sync"

	"github.com/VK-RED/clobby/internal/domain"
	"github.com/VK-RED/clobby/internal/port"
)

var _ port.Cache = (*Cache)(nil)

type Cache struct {
	mu    sync.Mutex
	store map[string]*domain.DepthSnapshot
}

func NewCache() *Cache {
	return &Cache{store: make(map[string]*domain.DepthSnapshot)}
}

func (c *Cache) SetDepth(ctx context.Context, market string, snap *domain.DepthSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *snap
	c.store[market] = &cp
	return nil
}

func (c *Cache) GetDepth(ctx context.Context, market string) (*domain.DepthSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.store[market]
	if !ok {
		return nil, nil
	}
	cp := *snap
	return &cp, nil
}

func (c *Cache) Invalidate(ctx context.Context, market string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, market)
	return nil
}
