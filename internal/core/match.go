package core

import (
	"context"
	"fmt"
	"math/bits"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/VK-RED/clobby/internal/domain"
)

// PlaceOrderParams carries one placement. BaseLots is the requested quantity
// in lots; PricePerLot is the limit price in quote smallest units per lot.
type PlaceOrderParams struct {
	Market            string
	User              string
	Side              domain.Side
	BaseLots          uint64
	PricePerLot       uint64
	ImmediateOrCancel bool
}

// PlaceOrderResult reports what a placement did: the fills executed against
// resting makers, the amounts credited to the taker's pending balance, and
// the resting remainder if any.
type PlaceOrderResult struct {
	OrderID       uint64
	Fills         []domain.Fill
	BaseCredited  uint64
	QuoteCredited uint64
	RemainingBase uint64
	Rested        bool
}

// plannedFill is one front-of-queue match computed before anything mutates.
type plannedFill struct {
	makerOrderID uint64
	maker        string
	pricePerLot  uint64
	baseAmount   uint64
	quoteAmount  uint64
	fullyFilled  bool
}

// PlaceOrder escrows the taker's commitment, matches the order against the
// opposite side front-first at the maker's price, credits the taker's pending
// balance immediately, defers each maker's credit to a Fill event, and rests
// any remainder on the taker's own side. The whole call either commits or
// leaves no trace: matching is planned read-only first and applied only after
// every validation (IOC, event capacity, book capacity, escrow) has passed.
func (e *Engine) PlaceOrder(ctx context.Context, p PlaceOrderParams) (*PlaceOrderResult, error) {
	if p.User == "" || p.BaseLots == 0 || p.PricePerLot == 0 {
		return nil, fmt.Errorf("%w: user, base lots and price are required", domain.ErrInvalidOrder)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.markets[p.Market]
	if !ok {
		return nil, domain.ErrMarketNotFound
	}

	baseAmount, err := mulU64(p.BaseLots, m.BaseLotSize)
	if err != nil {
		return nil, err
	}
	// The commitment escrowed up front: quote for a bid, base for an ask.
	escrowAmount := baseAmount
	if p.Side == domain.Bid {
		if escrowAmount, err = mulU64(p.BaseLots, p.PricePerLot); err != nil {
			return nil, err
		}
	}

	taker := m.BookSide(p.Side)
	opposite := m.BookSide(p.Side.Opposite())

	plan, remaining, err := planMatch(opposite, p.Side, p.PricePerLot, baseAmount, m.BaseLotSize)
	if err != nil {
		return nil, err
	}

	if p.ImmediateOrCancel && remaining > 0 {
		return nil, domain.ErrOrderFilledPartially
	}
	if !m.Events.CanAppend(len(plan)) {
		return nil, domain.ErrEventLogFull
	}
	if remaining > 0 && taker.OrderCount == domain.BookCapacity {
		return nil, domain.ErrBookFull
	}

	committedAsset := m.AssetCommitted(p.Side)
	if err := e.custody.Escrow(ctx, p.User, committedAsset, m.VaultFor(committedAsset), escrowAmount); err != nil {
		return nil, err
	}

	// Validation is done; everything below must succeed.
	m.TotalOrders++
	orderID := m.TotalOrders

	res := &PlaceOrderResult{OrderID: orderID, RemainingBase: remaining}
	makerSide := p.Side.Opposite()
	var matchedBase, matchedQuote uint64

	for _, f := range plan {
		front := opposite.Front()
		front.RemainingBase -= f.baseAmount
		// Append cannot fail here, capacity was checked above.
		_ = m.Events.Append(domain.Event{
			Type:        domain.EventFill,
			Side:        makerSide,
			OrderID:     f.makerOrderID,
			Maker:       f.maker,
			BaseAmount:  f.baseAmount,
			QuoteAmount: f.quoteAmount,
		})
		if f.fullyFilled {
			opposite.RemoveAt(0)
		}
		matchedBase += f.baseAmount
		matchedQuote += f.quoteAmount
		res.Fills = append(res.Fills, domain.Fill{
			ID:           uuid.NewString(),
			Market:       m.Name,
			TakerOrderID: orderID,
			Taker:        p.User,
			MakerOrderID: f.makerOrderID,
			Maker:        f.maker,
			PricePerLot:  f.pricePerLot,
			BaseAmount:   f.baseAmount,
			QuoteAmount:  f.quoteAmount,
		})
	}

	if len(plan) > 0 {
		bal := e.getOrCreateBalance(ctx, m.Name, p.User)
		if p.Side == domain.Bid {
			// The bid buyer receives base right away; trades executed below
			// the bid's own limit also release the unspent quote escrow.
			bal.BaseAmount += matchedBase
			res.BaseCredited = matchedBase
			surplus := (matchedBase/m.BaseLotSize)*p.PricePerLot - matchedQuote
			if surplus > 0 {
				bal.QuoteAmount += surplus
				res.QuoteCredited = surplus
			}
		} else {
			bal.QuoteAmount += matchedQuote
			res.QuoteCredited = matchedQuote
		}
		e.persistBalance(ctx, bal)
	}

	if remaining > 0 {
		// Insert cannot fail here, capacity was checked above.
		_ = taker.Insert(domain.Order{
			ID:            orderID,
			Owner:         p.User,
			RemainingBase: remaining,
			PricePerLot:   p.PricePerLot,
		})
		res.Rested = true
	}

	e.persistMarket(ctx, m)
	e.refreshDepth(ctx, m)
	if e.feed != nil && len(res.Fills) > 0 {
		if err := e.feed.PublishFills(ctx, m.Name, res.Fills); err != nil {
			e.log.Warn("fill publish failed", zap.String("market", m.Name), zap.Error(err))
		}
	}

	e.log.Info("order placed",
		zap.String("market", m.Name),
		zap.Uint64("order_id", orderID),
		zap.Stringer("side", p.Side),
		zap.Int("fills", len(res.Fills)),
		zap.Uint64("remaining_base", remaining),
	)
	return res, nil
}

// planMatch walks the opposite side's live prefix front-first and computes
// the fills a taker at takerPrice would execute, without mutating anything.
// Matching stops at the first non-crossing maker.
func planMatch(opposite *domain.BookSide, takerSide domain.Side, takerPrice, baseAmount, lotSize uint64) ([]plannedFill, uint64, error) {
	var plan []plannedFill
	remaining := baseAmount

	for i := 0; i < opposite.OrderCount && remaining > 0; i++ {
		maker := opposite.Orders[i]
		if !takerSide.Crosses(takerPrice, maker.PricePerLot) {
			break
		}
		matched := min(remaining, maker.RemainingBase)
		// Both operands are lot multiples, so matched already is one.
		lots := matched / lotSize
		quote, err := mulU64(lots, maker.PricePerLot)
		if err != nil {
			return nil, 0, err
		}
		plan = append(plan, plannedFill{
			makerOrderID: maker.ID,
			maker:        maker.Owner,
			pricePerLot:  maker.PricePerLot,
			baseAmount:   matched,
			quoteAmount:  quote,
			fullyFilled:  matched == maker.RemainingBase,
		})
		remaining -= matched
	}
	return plan, remaining, nil
}

func mulU64(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, domain.ErrOverflow
	}
	return lo, nil
}
