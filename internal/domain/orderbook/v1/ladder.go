package orderbookv1

import "sort"

// Ladder is one side of the book: an ordered collection of price levels
// keyed by exact price. Iteration from the first entry always yields the
// best (most aggressive) price for the side: highest first for bids, lowest
// first for asks.
type Ladder struct {
	side   Side
	levels map[float64]*Level
	prices []float64 // sorted best-first
}

// NewLadder creates an empty ladder holding resting orders of the given side.
func NewLadder(side Side) *Ladder {
	return &Ladder{
		side:   side,
		levels: make(map[float64]*Level),
	}
}

// Side returns the side whose resting orders this ladder holds.
func (ld *Ladder) Side() Side {
	return ld.side
}

// Best returns the level at the most aggressive price, or nil if the ladder
// is empty.
func (ld *Ladder) Best() *Level {
	if len(ld.prices) == 0 {
		return nil
	}
	return ld.levels[ld.prices[0]]
}

// LevelAt returns the level resting at the exact price, if any.
func (ld *Ladder) LevelAt(price float64) (*Level, bool) {
	level, ok := ld.levels[price]
	return level, ok
}

// Upsert returns the level at the exact price, creating it if absent.
func (ld *Ladder) Upsert(price float64) *Level {
	if level, ok := ld.levels[price]; ok {
		return level
	}

	level := NewLevel(price)
	ld.levels[price] = level

	i := ld.rank(price)
	ld.prices = append(ld.prices, 0)
	copy(ld.prices[i+1:], ld.prices[i:])
	ld.prices[i] = price

	return level
}

// Drop removes the level at the exact price. Levels are dropped as soon as
// they empty; an empty level never stays in the ladder.
func (ld *Ladder) Drop(price float64) {
	if _, ok := ld.levels[price]; !ok {
		return
	}
	delete(ld.levels, price)

	i := ld.rank(price)
	if i < len(ld.prices) && ld.prices[i] == price {
		ld.prices = append(ld.prices[:i], ld.prices[i+1:]...)
	}
}

// Crosses reports whether a taker's price constraint permits a trade against
// a level resting at price in this ladder. Market takers cross any level.
func (ld *Ladder) Crosses(taker *Order, price float64) bool {
	if taker.Type == OrderTypeMarket {
		return true
	}
	if ld.side == SideSell {
		// Buy taker against asks.
		return taker.Price >= price
	}
	// Sell taker against bids.
	return taker.Price <= price
}

// Len returns the number of price levels in the ladder.
func (ld *Ladder) Len() int {
	return len(ld.prices)
}

// Walk visits the levels best-first until fn returns false.
func (ld *Ladder) Walk(fn func(*Level) bool) {
	for _, price := range ld.prices {
		if !fn(ld.levels[price]) {
			return
		}
	}
}

// rank returns the insertion index keeping prices sorted best-first.
func (ld *Ladder) rank(price float64) int {
	if ld.side == SideSell {
		return sort.SearchFloat64s(ld.prices, price)
	}
	return sort.Search(len(ld.prices), func(i int) bool {
		return ld.prices[i] <= price
	})
}
