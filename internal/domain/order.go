package domain

import "fmt"

type Side uint8

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	switch s {
	case Bid:
		return "BID"
	case Ask:
		return "ASK"
	}
	return fmt.Sprintf("SIDE(%d)", uint8(s))
}

func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

// Crosses reports whether a taker on side s at takerPrice can trade against a
// resting maker at makerPrice. Prices are quote smallest units per base lot.
func (s Side) Crosses(takerPrice, makerPrice uint64) bool {
	if s == Bid {
		return takerPrice >= makerPrice
	}
	return takerPrice <= makerPrice
}

func SideFromString(s string) (Side, error) {
	switch s {
	case "BID", "bid":
		return Bid, nil
	case "ASK", "ask":
		return Ask, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSide, s)
}

// Order is one resting slot on a book side. RemainingBase is in base smallest
// units and stays a multiple of the market's lot size for the order's whole
// life. PricePerLot never changes after placement. A zero ID marks a free slot.
type Order struct {
	ID            uint64 `json:"id"`
	Owner         string `json:"owner"`
	RemainingBase uint64 `json:"remaining_base"`
	PricePerLot   uint64 `json:"price_per_lot"`
}

func (o Order) IsFree() bool { return o.ID == 0 }
