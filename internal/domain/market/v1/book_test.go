package marketv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderBookOrdering(t *testing.T) {
	book := NewOrderBook()
	book.SetBid(9998, 2)
	book.SetBid(10000, 5)
	book.SetBid(9999, 3)
	book.SetAsk(10004, 4)
	book.SetAsk(10002, 1)

	t.Run("bids are best first", func(t *testing.T) {
		assert.Equal(t, []Level{{10000, 5}, {9999, 3}, {9998, 2}}, book.Bids())
	})

	t.Run("asks are best first", func(t *testing.T) {
		assert.Equal(t, []Level{{10002, 1}, {10004, 4}}, book.Asks())
	})

	t.Run("best levels", func(t *testing.T) {
		bid, ok := book.BestBid()
		require.True(t, ok)
		assert.Equal(t, Level{10000, 5}, bid)

		ask, ok := book.BestAsk()
		require.True(t, ok)
		assert.Equal(t, Level{10002, 1}, ask)
	})

	t.Run("empty book has no best levels", func(t *testing.T) {
		empty := NewOrderBook()
		_, ok := empty.BestBid()
		assert.False(t, ok)
		_, ok = empty.BestAsk()
		assert.False(t, ok)
	})
}

func TestOrderBookIgnoresNonPositiveVolumes(t *testing.T) {
	book := NewOrderBook()
	book.SetBid(10000, 0)
	book.SetAsk(10002, -3)

	assert.Empty(t, book.Bids())
	assert.Empty(t, book.Asks())
}

func TestOrderBookCrossingLevels(t *testing.T) {
	book := NewOrderBook()
	book.SetAsk(10, 5)
	book.SetAsk(11, 3)
	book.SetAsk(12, 7)
	book.SetBid(9, 4)
	book.SetBid(8, 6)

	t.Run("asks at or below limit", func(t *testing.T) {
		assert.Equal(t, []Level{{10, 5}, {11, 3}}, book.AsksAtOrBelow(11))
		assert.Empty(t, book.AsksAtOrBelow(9))
	})

	t.Run("bids at or above limit", func(t *testing.T) {
		assert.Equal(t, []Level{{9, 4}, {8, 6}}, book.BidsAtOrAbove(8))
		assert.Empty(t, book.BidsAtOrAbove(10))
	})
}

func TestOrderBookReduce(t *testing.T) {
	t.Run("partial reduction keeps the level", func(t *testing.T) {
		book := NewOrderBook()
		book.SetAsk(10, 5)
		book.ReduceAsk(10, 3)
		assert.Equal(t, []Level{{10, 2}}, book.Asks())
	})

	t.Run("exhausting a level deletes it", func(t *testing.T) {
		book := NewOrderBook()
		book.SetBid(9, 4)
		book.ReduceBid(9, 4)
		assert.Empty(t, book.Bids())
	})

	t.Run("reducing a missing level is a no-op", func(t *testing.T) {
		book := NewOrderBook()
		book.ReduceAsk(10, 1)
		book.ReduceBid(9, 1)
		assert.Empty(t, book.Asks())
		assert.Empty(t, book.Bids())
	})
}
