package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder(id uint64, owner string, base, price uint64) Order {
	return Order{ID: id, Owner: owner, RemainingBase: base, PricePerLot: price}
}

func TestBookSide_InsertAppendsAtTail(t *testing.T) {
	b := NewBookSide("SOL/USDC", Ask)

	require.NoError(t, b.Insert(testOrder(1, "alice", 100, 1000)))
	require.NoError(t, b.Insert(testOrder(2, "bob", 200, 1100)))
	require.NoError(t, b.Insert(testOrder(3, "carol", 300, 1200)))

	assert.Equal(t, 3, b.OrderCount)
	assert.Equal(t, uint64(1), b.Orders[0].ID)
	assert.Equal(t, uint64(2), b.Orders[1].ID)
	assert.Equal(t, uint64(3), b.Orders[2].ID)
}

func TestBookSide_InsertFailsWhenFull(t *testing.T) {
	b := NewBookSide("SOL/USDC", Bid)
	for i := 0; i < BookCapacity; i++ {
		require.NoError(t, b.Insert(testOrder(uint64(i+1), "alice", 100, 1000)))
	}

	err := b.Insert(testOrder(uint64(BookCapacity+1), "bob", 100, 1000))
	assert.ErrorIs(t, err, ErrBookFull)
	assert.Equal(t, BookCapacity, b.OrderCount)
}

func TestBookSide_RemoveAtCompacts(t *testing.T) {
	b := NewBookSide("SOL/USDC", Ask)
	require.NoError(t, b.Insert(testOrder(1, "alice", 100, 1000)))
	require.NoError(t, b.Insert(testOrder(2, "bob", 200, 1000)))
	require.NoError(t, b.Insert(testOrder(3, "carol", 300, 1000)))

	b.RemoveAt(1)

	// Survivors keep their relative arrival order with no gaps.
	require.Equal(t, 2, b.OrderCount)
	assert.Equal(t, uint64(1), b.Orders[0].ID)
	assert.Equal(t, uint64(3), b.Orders[1].ID)
	// The vacated tail slot is zeroed.
	assert.True(t, b.Orders[2].IsFree())
	assert.Equal(t, Order{}, b.Orders[2])
}

func TestBookSide_RemoveFrontAdvancesQueue(t *testing.T) {
	b := NewBookSide("SOL/USDC", Bid)
	require.NoError(t, b.Insert(testOrder(7, "alice", 100, 1000)))
	require.NoError(t, b.Insert(testOrder(9, "bob", 200, 1000)))

	require.Equal(t, uint64(7), b.Front().ID)
	b.RemoveAt(0)
	require.Equal(t, uint64(9), b.Front().ID)
	b.RemoveAt(0)
	assert.Nil(t, b.Front())
	assert.Equal(t, 0, b.OrderCount)
}

func TestBookSide_RemoveAtIgnoresOutOfRange(t *testing.T) {
	b := NewBookSide("SOL/USDC", Bid)
	require.NoError(t, b.Insert(testOrder(1, "alice", 100, 1000)))

	b.RemoveAt(-1)
	b.RemoveAt(1)
	assert.Equal(t, 1, b.OrderCount)
}

func TestBookSide_IndexByID(t *testing.T) {
	b := NewBookSide("SOL/USDC", Ask)
	require.NoError(t, b.Insert(testOrder(4, "alice", 100, 1000)))
	require.NoError(t, b.Insert(testOrder(6, "bob", 200, 1000)))

	assert.Equal(t, 0, b.IndexByID(4))
	assert.Equal(t, 1, b.IndexByID(6))
	assert.Equal(t, -1, b.IndexByID(5))

	b.RemoveAt(0)
	assert.Equal(t, -1, b.IndexByID(4))
}

func TestSide_Crosses(t *testing.T) {
	assert.True(t, Bid.Crosses(1000, 1000))
	assert.True(t, Bid.Crosses(1100, 1000))
	assert.False(t, Bid.Crosses(900, 1000))

	assert.True(t, Ask.Crosses(1000, 1000))
	assert.True(t, Ask.Crosses(900, 1000))
	assert.False(t, Ask.Crosses(1100, 1000))
}

func TestSideFromString(t *testing.T) {
	s, err := SideFromString("BID")
	require.NoError(t, err)
	assert.Equal(t, Bid, s)

	s, err = SideFromString("ask")
	require.NoError(t, err)
	assert.Equal(t, Ask, s)

	_, err = SideFromString("SHORT")
	assert.ErrorIs(t, err, ErrInvalidSide)
}
