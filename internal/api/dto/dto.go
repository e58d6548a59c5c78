package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Amounts cross the API as decimal strings: order sizes and prices are
// uint64 smallest units, which JSON numbers (float64 in most clients) cannot
// carry exactly.

// ParseAmount parses a non-negative integer amount of smallest units.
func ParseAmount(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() || !d.IsInteger() {
		return 0, fmt.Errorf("amount %q must be a non-negative integer", s)
	}
	bi := d.BigInt()
	if !bi.IsUint64() {
		return 0, fmt.Errorf("amount %q out of range", s)
	}
	return bi.Uint64(), nil
}

func FormatAmount(v uint64) string {
	return decimal.NewFromUint64(v).String()
}

type CreateMarketRequest struct {
	Name           string `json:"name" binding:"required"`
	BaseAsset      string `json:"base_asset" binding:"required"`
	QuoteAsset     string `json:"quote_asset" binding:"required"`
	BaseLotSize    string `json:"base_lot_size" binding:"required"`
	EventAuthority string `json:"event_authority" binding:"required"`
}

type CreateMarketResponse struct {
	Name       string `json:"name"`
	BaseVault  string `json:"base_vault"`
	QuoteVault string `json:"quote_vault"`
}

type CreateBalanceRequest struct {
	Market string `json:"market" binding:"required"`
}

type PlaceOrderRequest struct {
	Market            string `json:"market" binding:"required"`
	Side              string `json:"side" binding:"required"`
	BaseLots          string `json:"base_lots" binding:"required"`
	PricePerLot       string `json:"price_per_lot" binding:"required"`
	ImmediateOrCancel bool   `json:"immediate_or_cancel"`
}

type Fill struct {
	MakerOrderID uint64 `json:"maker_order_id"`
	PricePerLot  string `json:"price_per_lot"`
	BaseAmount   string `json:"base_amount"`
	QuoteAmount  string `json:"quote_amount"`
}

type PlaceOrderResponse struct {
	OrderID       uint64 `json:"order_id"`
	Fills         []Fill `json:"fills"`
	BaseCredited  string `json:"base_credited"`
	QuoteCredited string `json:"quote_credited"`
	RemainingBase string `json:"remaining_base"`
	Rested        bool   `json:"rested"`
}

type CancelOrderRequest struct {
	Market  string `json:"market" binding:"required"`
	Side    string `json:"side" binding:"required"`
	OrderID uint64 `json:"order_id" binding:"required"`
}

type CancelOrderResponse struct {
	OrderID   uint64 `json:"order_id"`
	Cancelled bool   `json:"cancelled"`
}

type ConsumeEventsRequest struct {
	Market string `json:"market" binding:"required"`
}

type ConsumeEventsResponse struct {
	Consumed int `json:"consumed"`
}

type WithdrawRequest struct {
	Market string `json:"market" binding:"required"`
}

type WithdrawResponse struct {
	Market string `json:"market"`
	User   string `json:"user"`
}

type MarketResponse struct {
	Name           string `json:"name"`
	BaseAsset      string `json:"base_asset"`
	QuoteAsset     string `json:"quote_asset"`
	BaseVault      string `json:"base_vault"`
	QuoteVault     string `json:"quote_vault"`
	BaseLotSize    string `json:"base_lot_size"`
	TotalOrders    uint64 `json:"total_orders"`
	EventAuthority string `json:"event_authority"`
	PendingEvents  int    `json:"pending_events"`
}

type BookOrder struct {
	ID            uint64 `json:"id"`
	Owner         string `json:"owner"`
	RemainingBase string `json:"remaining_base"`
	PricePerLot   string `json:"price_per_lot"`
}

type DepthResponse struct {
	Market    string      `json:"market"`
	Bids      []BookOrder `json:"bids"`
	Asks      []BookOrder `json:"asks"`
	Timestamp time.Time   `json:"timestamp"`
}

type BalanceResponse struct {
	Market      string `json:"market"`
	User        string `json:"user"`
	BaseAmount  string `json:"base_amount"`
	QuoteAmount string `json:"quote_amount"`
}
