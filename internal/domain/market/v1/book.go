package marketv1

import "github.com/tidwall/btree"

// OrderBook is the per-tick reconstructed book of one product: two ordered
// price -> volume mappings, one per side. Volumes are non-negative on both
// sides; the sign convention of the source data is not part of the contract.
type OrderBook struct {
	bids *btree.Map[int, int]
	asks *btree.Map[int, int]
}

// NewOrderBook creates an empty order book.
func NewOrderBook() *OrderBook {
	return &OrderBook{
		bids: btree.NewMap[int, int](8),
		asks: btree.NewMap[int, int](8),
	}
}

// SetBid sets the resting volume at a bid price level. Non-positive volumes
// are ignored.
func (b *OrderBook) SetBid(price, volume int) {
	if volume <= 0 {
		return
	}
	b.bids.Set(price, volume)
}

// SetAsk sets the resting volume at an ask price level. Non-positive volumes
// are ignored.
func (b *OrderBook) SetAsk(price, volume int) {
	if volume <= 0 {
		return
	}
	b.asks.Set(price, volume)
}

// Bids returns the bid levels, best (highest price) first.
func (b *OrderBook) Bids() []Level {
	levels := make([]Level, 0, b.bids.Len())
	b.bids.Reverse(func(price, volume int) bool {
		levels = append(levels, Level{Price: price, Volume: volume})
		return true
	})
	return levels
}

// Asks returns the ask levels, best (lowest price) first.
func (b *OrderBook) Asks() []Level {
	levels := make([]Level, 0, b.asks.Len())
	b.asks.Scan(func(price, volume int) bool {
		levels = append(levels, Level{Price: price, Volume: volume})
		return true
	})
	return levels
}

// BestBid returns the highest bid level, if any.
func (b *OrderBook) BestBid() (Level, bool) {
	price, volume, ok := b.bids.Max()
	return Level{Price: price, Volume: volume}, ok
}

// BestAsk returns the lowest ask level, if any.
func (b *OrderBook) BestAsk() (Level, bool) {
	price, volume, ok := b.asks.Min()
	return Level{Price: price, Volume: volume}, ok
}

// AsksAtOrBelow returns the ask levels crossing a buy order's limit price,
// best price first.
func (b *OrderBook) AsksAtOrBelow(limit int) []Level {
	var levels []Level
	b.asks.Scan(func(price, volume int) bool {
		if price > limit {
			return false
		}
		levels = append(levels, Level{Price: price, Volume: volume})
		return true
	})
	return levels
}

// BidsAtOrAbove returns the bid levels crossing a sell order's limit price,
// best price first.
func (b *OrderBook) BidsAtOrAbove(limit int) []Level {
	var levels []Level
	b.bids.Reverse(func(price, volume int) bool {
		if price < limit {
			return false
		}
		levels = append(levels, Level{Price: price, Volume: volume})
		return true
	})
	return levels
}

// ReduceAsk removes volume from an ask level, deleting the level once it is
// exhausted.
func (b *OrderBook) ReduceAsk(price, volume int) {
	remaining, ok := b.asks.Get(price)
	if !ok {
		return
	}
	remaining -= volume
	if remaining <= 0 {
		b.asks.Delete(price)
		return
	}
	b.asks.Set(price, remaining)
}

// ReduceBid removes volume from a bid level, deleting the level once it is
// exhausted.
func (b *OrderBook) ReduceBid(price, volume int) {
	remaining, ok := b.bids.Get(price)
	if !ok {
		return
	}
	remaining -= volume
	if remaining <= 0 {
		b.bids.Delete(price)
		return
	}
	b.bids.Set(price, remaining)
}
