package domain

// PendingBalance accumulates credited-but-unwithdrawn amounts owed to one
// user on one market. Fills and cancel refunds only ever increase it; the
// withdrawal step drains it back to zero.
type PendingBalance struct {
	Market      string `json:"market"`
	User        string `json:"user"`
	BaseAmount  uint64 `json:"base_amount"`
	QuoteAmount uint64 `json:"quote_amount"`
}

// Fill describes one executed match from the taker's placement. The trade
// runs at the maker's price; BaseAmount and QuoteAmount are the totals
// exchanged for this fill.
type Fill struct {
	ID           string `json:"id"`
	Market       string `json:"market"`
	TakerOrderID uint64 `json:"taker_order_id"`
	Taker        string `json:"taker"`
	MakerOrderID uint64 `json:"maker_order_id"`
	Maker        string `json:"maker"`
	PricePerLot  uint64 `json:"price_per_lot"`
	BaseAmount   uint64 `json:"base_amount"`
	QuoteAmount  uint64 `json:"quote_amount"`
}
