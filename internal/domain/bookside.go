package domain

// BookCapacity is the number of order slots in one book side record. The
// record is pre-allocated at this size and never grows.
const BookCapacity = 1024

// BookSide is one side of the book: a fixed slot array where live orders
// occupy the contiguous prefix [0, OrderCount) in arrival order. Slots at or
// beyond OrderCount are zeroed.
type BookSide struct {
	Side       Side                `json:"side"`
	Market     string              `json:"market"`
	OrderCount int                 `json:"order_count"`
	Orders     [BookCapacity]Order `json:"orders"`
}

func NewBookSide(market string, side Side) *BookSide {
	return &BookSide{Side: side, Market: market}
}

// Insert appends the order at the first free slot.
func (b *BookSide) Insert(o Order) error {
	if b.OrderCount == BookCapacity {
		return ErrBookFull
	}
	b.Orders[b.OrderCount] = o
	b.OrderCount++
	return nil
}

// RemoveAt deletes the slot at i and shifts the remaining live slots left by
// one, keeping the prefix contiguous and arrival-ordered. The vacated tail
// slot is zeroed.
func (b *BookSide) RemoveAt(i int) {
	if i < 0 || i >= b.OrderCount {
		return
	}
	for j := i + 1; j < b.OrderCount; j++ {
		b.Orders[j-1] = b.Orders[j]
	}
	b.OrderCount--
	b.Orders[b.OrderCount] = Order{}
}

// IndexByID scans the live prefix for the order, returning -1 when it is
// absent (already filled or canceled).
func (b *BookSide) IndexByID(orderID uint64) int {
	for i := 0; i < b.OrderCount; i++ {
		if b.Orders[i].ID == orderID {
			return i
		}
	}
	return -1
}

// Front returns the oldest live order, the first candidate for matching, or
// nil when the side is empty.
func (b *BookSide) Front() *Order {
	if b.OrderCount == 0 {
		return nil
	}
	return &b.Orders[0]
}

// Live returns a copy of the live prefix.
func (b *BookSide) Live() []Order {
	out := make([]Order, b.OrderCount)
	copy(out, b.Orders[:b.OrderCount])
	return out
}
