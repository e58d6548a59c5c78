package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/VK-RED/clobby/internal/domain"
	"github.com/VK-RED/clobby/internal/port"
)

// Engine runs the matching and settlement state machine. Every operation is a
// serialized, all-or-nothing state transition: the mutex is the exclusivity
// guarantee the records rely on, and no call mutates anything until all of
// its validations have passed.
type Engine struct {
	repo    port.Repository
	cache   port.Cache
	custody port.Custody
	feed    port.FillPublisher
	log     *zap.Logger

	mu       sync.Mutex
	markets  map[string]*domain.Market
	balances map[balanceKey]*domain.PendingBalance
}

type balanceKey struct {
	market string
	user   string
}

// NewEngine wires the engine to its collaborators. repo, cache and feed may
// be nil; custody must not be.
func NewEngine(repo port.Repository, cache port.Cache, custody port.Custody, feed port.FillPublisher, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		repo:     repo,
		cache:    cache,
		custody:  custody,
		feed:     feed,
		log:      log,
		markets:  make(map[string]*domain.Market),
		balances: make(map[balanceKey]*domain.PendingBalance),
	}
}

// LoadFromRepo restores markets and pending balances into memory on startup.
func (e *Engine) LoadFromRepo(ctx context.Context) error {
	if e.repo == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	markets, err := e.repo.LoadMarkets(ctx)
	if err != nil {
		return fmt.Errorf("load markets: %w", err)
	}
	for _, m := range markets {
		e.markets[m.Name] = m
	}
	balances, err := e.repo.LoadPendingBalances(ctx)
	if err != nil {
		return fmt.Errorf("load pending balances: %w", err)
	}
	for _, b := range balances {
		e.balances[balanceKey{b.Market, b.User}] = b
	}
	return nil
}

// CreateMarket allocates a market together with its two book sides and its
// event log.
func (e *Engine) CreateMarket(ctx context.Context, name, baseAsset, quoteAsset string, baseLotSize uint64, eventAuthority string) (*domain.Market, error) {
	if name == "" || baseAsset == "" || quoteAsset == "" || eventAuthority == "" {
		return nil, fmt.Errorf("%w: empty field", domain.ErrInvalidMarket)
	}
	if baseAsset == quoteAsset {
		return nil, fmt.Errorf("%w: base and quote assets must differ", domain.ErrInvalidMarket)
	}
	if baseLotSize == 0 {
		return nil, fmt.Errorf("%w: base lot size must be positive", domain.ErrInvalidMarket)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.markets[name]; ok {
		return nil, domain.ErrMarketExists
	}

	m := &domain.Market{
		Name:           name,
		BaseAsset:      baseAsset,
		QuoteAsset:     quoteAsset,
		BaseVault:      vaultName(name, baseAsset),
		QuoteVault:     vaultName(name, quoteAsset),
		BaseLotSize:    baseLotSize,
		EventAuthority: eventAuthority,
		Bids:           domain.NewBookSide(name, domain.Bid),
		Asks:           domain.NewBookSide(name, domain.Ask),
		Events:         domain.NewEventLog(name),
	}
	e.markets[name] = m
	e.persistMarket(ctx, m)
	e.log.Info("market created",
		zap.String("market", name),
		zap.Uint64("base_lot_size", baseLotSize),
	)
	return m, nil
}

// CreatePendingBalance allocates the (user, market) accumulator. Creating it
// twice is a no-op returning the existing record.
func (e *Engine) CreatePendingBalance(ctx context.Context, market, user string) (*domain.PendingBalance, error) {
	if user == "" {
		return nil, fmt.Errorf("%w: empty user", domain.ErrInvalidOrder)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.markets[market]; !ok {
		return nil, domain.ErrMarketNotFound
	}
	b := e.getOrCreateBalance(ctx, market, user)
	out := *b
	return &out, nil
}

// GetMarket returns a shallow view of the market record.
func (e *Engine) GetMarket(ctx context.Context, name string) (*domain.Market, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.markets[name]
	if !ok {
		return nil, domain.ErrMarketNotFound
	}
	return m, nil
}

// GetPendingBalance returns a copy of the user's accumulator for the market.
func (e *Engine) GetPendingBalance(ctx context.Context, market, user string) (*domain.PendingBalance, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.balances[balanceKey{market, user}]
	if !ok {
		return nil, domain.ErrBalanceNotFound
	}
	out := *b
	return &out, nil
}

// GetDepth returns the live depth snapshot, trying the cache first.
func (e *Engine) GetDepth(ctx context.Context, market string) (*domain.DepthSnapshot, error) {
	if e.cache != nil {
		if snap, err := e.cache.GetDepth(ctx, market); err == nil && snap != nil {
			return snap, nil
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.markets[market]
	if !ok {
		return nil, domain.ErrMarketNotFound
	}
	snap := depthOf(m)
	if e.cache != nil {
		if err := e.cache.SetDepth(ctx, market, snap); err != nil {
			e.log.Warn("depth cache set failed", zap.String("market", market), zap.Error(err))
		}
	}
	return snap, nil
}

func depthOf(m *domain.Market) *domain.DepthSnapshot {
	return &domain.DepthSnapshot{
		Market:    m.Name,
		Bids:      m.Bids.Live(),
		Asks:      m.Asks.Live(),
		Timestamp: time.Now().UTC(),
	}
}

func vaultName(market, asset string) string {
	return market + "/" + asset + "/vault"
}

// getOrCreateBalance must be called with the lock held.
func (e *Engine) getOrCreateBalance(ctx context.Context, market, user string) *domain.PendingBalance {
	key := balanceKey{market, user}
	b, ok := e.balances[key]
	if !ok {
		b = &domain.PendingBalance{Market: market, User: user}
		e.balances[key] = b
		e.persistBalance(ctx, b)
	}
	return b
}

// persistMarket and persistBalance write through to the record store. The
// in-memory record is authoritative within a process, so a write failure is
// logged rather than failing the already-committed operation.
func (e *Engine) persistMarket(ctx context.Context, m *domain.Market) {
	if e.repo == nil {
		return
	}
	if err := e.repo.SaveMarket(ctx, m); err != nil {
		e.log.Warn("persist market failed", zap.String("market", m.Name), zap.Error(err))
	}
}

func (e *Engine) persistBalance(ctx context.Context, b *domain.PendingBalance) {
	if e.repo == nil {
		return
	}
	if err := e.repo.SavePendingBalance(ctx, b); err != nil {
		e.log.Warn("persist balance failed",
			zap.String("market", b.Market),
			zap.String("user", b.User),
			zap.Error(err),
		)
	}
}

func (e *Engine) refreshDepth(ctx context.Context, m *domain.Market) {
	if e.cache == nil {
		return
	}
	if err := e.cache.SetDepth(ctx, m.Name, depthOf(m)); err != nil {
		e.log.Warn("depth cache set failed", zap.String("market", m.Name), zap.Error(err))
	}
}
