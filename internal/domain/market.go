package domain

import "time"

// Market is the trading-pair record. It exclusively owns its two book sides
// and its event log; they are created together and referenced nowhere else.
// TotalOrders only increases and is the source of order ids.
type Market struct {
	Name           string `json:"name"`
	BaseAsset      string `json:"base_asset"`
	QuoteAsset     string `json:"quote_asset"`
	BaseVault      string `json:"base_vault"`
	QuoteVault     string `json:"quote_vault"`
	BaseLotSize    uint64 `json:"base_lot_size"`
	TotalOrders    uint64 `json:"total_orders"`
	EventAuthority string `json:"event_authority"`

	Bids   *BookSide `json:"bids"`
	Asks   *BookSide `json:"asks"`
	Events *EventLog `json:"events"`
}

// BookSide returns the side's queue: Bids for Bid, Asks for Ask.
func (m *Market) BookSide(s Side) *BookSide {
	if s == Bid {
		return m.Bids
	}
	return m.Asks
}

// VaultFor returns the escrow vault holding the given asset.
func (m *Market) VaultFor(asset string) string {
	if asset == m.BaseAsset {
		return m.BaseVault
	}
	return m.QuoteVault
}

// AssetCommitted returns the asset a taker on side s escrows: quote for a
// bid, base for an ask.
func (m *Market) AssetCommitted(s Side) string {
	if s == Bid {
		return m.QuoteAsset
	}
	return m.BaseAsset
}

// DepthSnapshot is the read-model view of the two live queues, served to API
// clients and kept in the cache.
type DepthSnapshot struct {
	Market    string    `json:"market"`
	Bids      []Order   `json:"bids"`
	Asks      []Order   `json:"asks"`
	Timestamp time.Time `json:"timestamp"`
}
