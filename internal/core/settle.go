package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/VK-RED/clobby/internal/domain"
)

// CancelOrder removes a resting order from the named side and defers the
// refund of its unmatched escrow to an Out event. Only the order's owner may
// cancel it.
func (e *Engine) CancelOrder(ctx context.Context, market, requester string, side domain.Side, orderID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.markets[market]
	if !ok {
		return domain.ErrMarketNotFound
	}
	book := m.BookSide(side)

	idx := book.IndexByID(orderID)
	if idx < 0 {
		return domain.ErrOrderNotFound
	}
	order := book.Orders[idx]
	if order.Owner != requester {
		return domain.ErrUnauthorized
	}
	if !m.Events.CanAppend(1) {
		return domain.ErrEventLogFull
	}

	refundQuote, err := mulU64(order.RemainingBase/m.BaseLotSize, order.PricePerLot)
	if err != nil {
		return err
	}
	_ = m.Events.Append(domain.Event{
		Type:        domain.EventOut,
		Side:        side,
		OrderID:     order.ID,
		Maker:       order.Owner,
		BaseAmount:  order.RemainingBase,
		QuoteAmount: refundQuote,
	})
	book.RemoveAt(idx)

	e.persistMarket(ctx, m)
	e.refreshDepth(ctx, m)
	e.log.Info("order canceled",
		zap.String("market", market),
		zap.Uint64("order_id", orderID),
		zap.Stringer("side", side),
	)
	return nil
}

// ConsumeEvents drains the whole pending prefix, crediting each referenced
// maker's pending balance. Only the market's event-consume authority may call
// it. The pass is all-or-nothing: every maker balance is resolved before any
// credit happens, so a missing balance aborts the call untouched.
func (e *Engine) ConsumeEvents(ctx context.Context, market, caller string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.markets[market]
	if !ok {
		return 0, domain.ErrMarketNotFound
	}
	if caller != m.EventAuthority {
		return 0, domain.ErrUnauthorized
	}

	pending := m.Events.Pending()
	resolved := make([]*domain.PendingBalance, len(pending))
	for i, ev := range pending {
		b, ok := e.balances[balanceKey{market, ev.Maker}]
		if !ok {
			return 0, fmt.Errorf("%w: maker %s", domain.ErrBalanceNotFound, ev.Maker)
		}
		resolved[i] = b
	}

	for i, ev := range pending {
		b := resolved[i]
		switch {
		case ev.Type == domain.EventFill && ev.Side == domain.Bid:
			// The bid buyer receives the base asset.
			b.BaseAmount += ev.BaseAmount
		case ev.Type == domain.EventFill && ev.Side == domain.Ask:
			// The ask seller receives the quote asset.
			b.QuoteAmount += ev.QuoteAmount
		case ev.Type == domain.EventOut && ev.Side == domain.Bid:
			// Refund of unmatched bid escrow.
			b.QuoteAmount += ev.QuoteAmount
		default: // Out + Ask
			// Refund of unmatched ask escrow.
			b.BaseAmount += ev.BaseAmount
		}
	}
	m.Events.Clear()

	for _, b := range resolved {
		e.persistBalance(ctx, b)
	}
	e.persistMarket(ctx, m)
	e.log.Info("events consumed", zap.String("market", market), zap.Int("count", len(pending)))
	return len(pending), nil
}

// WithdrawPendingBalance drains the user's accumulators back to their real
// holdings through custody. Each side settles independently, the way pending
// amounts were accrued.
func (e *Engine) WithdrawPendingBalance(ctx context.Context, market, user string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.markets[market]
	if !ok {
		return domain.ErrMarketNotFound
	}
	b, ok := e.balances[balanceKey{market, user}]
	if !ok {
		return domain.ErrBalanceNotFound
	}

	if b.BaseAmount > 0 {
		if err := e.custody.Withdraw(ctx, user, m.BaseAsset, m.BaseVault, b.BaseAmount); err != nil {
			return err
		}
		b.BaseAmount = 0
	}
	if b.QuoteAmount > 0 {
		if err := e.custody.Withdraw(ctx, user, m.QuoteAsset, m.QuoteVault, b.QuoteAmount); err != nil {
			e.persistBalance(ctx, b)
			return err
		}
		b.QuoteAmount = 0
	}
	e.persistBalance(ctx, b)
	e.log.Info("pending balance withdrawn", zap.String("market", market), zap.String("user", user))
	return nil
}
