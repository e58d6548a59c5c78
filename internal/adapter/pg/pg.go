package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/VK-RED/clobby/internal/domain"
	"github.com/VK-RED/clobby/internal/port"
)

var _ port.Repository = (*PgRepo)(nil)

// PgRepo stores the authoritative records in Postgres: one row per market
// (book sides and event log serialized as JSONB, mutated in place) and one
// row per (market, user) pending balance.
type PgRepo struct {
	pool *pgxpool.Pool
}

// call Close when finished with the database.
func NewPgRepo(ctx context.Context, dsn string) (*PgRepo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	return &PgRepo{pool: pool}, nil
}

func (p *PgRepo) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// Migrate creates the two record tables if they do not exist yet.
func (p *PgRepo) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS markets(
	name TEXT PRIMARY KEY,
	base_asset TEXT NOT NULL,
	quote_asset TEXT NOT NULL,
	base_vault TEXT NOT NULL,
	quote_vault TEXT NOT NULL,
	base_lot_size BIGINT NOT NULL,
	total_orders BIGINT NOT NULL,
	event_authority TEXT NOT NULL,
	bids JSONB NOT NULL,
	asks JSONB NOT NULL,
	events JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS pending_balances(
	market TEXT NOT NULL,
	"user" TEXT NOT NULL,
	base_amount NUMERIC(20,0) NOT NULL,
	quote_amount NUMERIC(20,0) NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (market, "user")
);
`)
	return err
}

func (p *PgRepo) SaveMarket(ctx context.Context, m *domain.Market) error {
	if m == nil {
		return errors.New("nil market")
	}
	bids, err := json.Marshal(m.Bids)
	if err != nil {
		return err
	}
	asks, err := json.Marshal(m.Asks)
	if err != nil {
		return err
	}
	events, err := json.Marshal(m.Events)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
INSERT INTO markets(name, base_asset, quote_asset, base_vault, quote_vault, base_lot_size, total_orders, event_authority, bids, asks, events, updated_at)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NOW())
ON CONFLICT (name) DO UPDATE SET
  total_orders = EXCLUDED.total_orders,
  bids = EXCLUDED.bids,
  asks = EXCLUDED.asks,
  events = EXCLUDED.events,
  updated_at = NOW()
`, m.Name, m.BaseAsset, m.QuoteAsset, m.BaseVault, m.QuoteVault,
		int64(m.BaseLotSize), int64(m.TotalOrders), m.EventAuthority,
		string(bids), string(asks), string(events))
	return err
}

func (p *PgRepo) SavePendingBalance(ctx context.Context, b *domain.PendingBalance) error {
	if b == nil {
		return errors.New("nil balance")
	}
	_, err := p.pool.Exec(ctx, `
INSERT INTO pending_balances(market, "user", base_amount, quote_amount, updated_at)
VALUES($1,$2,$3,$4,NOW())
ON CONFLICT (market, "user") DO UPDATE SET
  base_amount = EXCLUDED.base_amount,
  quote_amount = EXCLUDED.quote_amount,
  updated_at = NOW()
`, b.Market, b.User, strconv.FormatUint(b.BaseAmount, 10), strconv.FormatUint(b.QuoteAmount, 10))
	return err
}

func (p *PgRepo) LoadMarkets(ctx context.Context) ([]*domain.Market, error) {
	rows, err := p.pool.Query(ctx, `
SELECT name, base_asset, quote_asset, base_vault, quote_vault, base_lot_size, total_orders, event_authority, bids, asks, events
FROM markets
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Market
	for rows.Next() {
		var m domain.Market
		var lotSize, totalOrders int64
		var bids, asks, events []byte
		if err := rows.Scan(&m.Name, &m.BaseAsset, &m.QuoteAsset, &m.BaseVault, &m.QuoteVault,
			&lotSize, &totalOrders, &m.EventAuthority, &bids, &asks, &events); err != nil {
			return nil, err
		}
		m.BaseLotSize = uint64(lotSize)
		m.TotalOrders = uint64(totalOrders)
		m.Bids = &domain.BookSide{}
		m.Asks = &domain.BookSide{}
		m.Events = &domain.EventLog{}
		if err := json.Unmarshal(bids, m.Bids); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(asks, m.Asks); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(events, m.Events); err != nil {
			return nil, err
		}
		res = append(res, &m)
	}
	return res, rows.Err()
}

func (p *PgRepo) LoadPendingBalances(ctx context.Context) ([]*domain.PendingBalance, error) {
	rows, err := p.pool.Query(ctx, `
SELECT market, "user", base_amount::TEXT, quote_amount::TEXT FROM pending_balances
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.PendingBalance
	for rows.Next() {
		var b domain.PendingBalance
		var base, quote string
		if err := rows.Scan(&b.Market, &b.User, &base, &quote); err != nil {
			return nil, err
		}
		if b.BaseAmount, err = strconv.ParseUint(base, 10, 64); err != nil {
			return nil, err
		}
		if b.QuoteAmount, err = strconv.ParseUint(quote, 10, 64); err != nil {
			return nil, err
		}
		res = append(res, &b)
	}
	return res, rows.Err()
}
