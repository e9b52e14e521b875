package orderbook

import (
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	orderbookv1 "github.com/openexchange-labs/matching-engine/internal/domain/orderbook/v1"
	snapshotv1 "github.com/openexchange-labs/matching-engine/internal/domain/snapshot/v1"
)

var (
	// ErrZeroQuantity is returned when an order carries no quantity.
	ErrZeroQuantity = errors.New("order quantity must be positive")
	// ErrInvalidPrice is returned when a limit order carries a non-positive price.
	ErrInvalidPrice = errors.New("limit price must be positive")
	// ErrDuplicateOrder is returned when an order id collides with a resting order.
	ErrDuplicateOrder = errors.New("order id already resting in book")
	// ErrNilSnapshot is returned when restoring from a nil snapshot.
	ErrNilSnapshot = errors.New("snapshot cannot be nil")
)

const defaultArenaCapacity = 1024

// Book is a single-instrument limit order book matching crossing orders
// under price-time priority. A book serves exactly one symbol; one logical
// actor must drive Submit/Cancel/query calls in sequence: the book performs
// no internal locking, callers serialize access.
type Book struct {
	symbol string

	arena *orderbookv1.Arena
	bids  *orderbookv1.Ladder
	asks  *orderbookv1.Ladder

	// index maps a resting order id to its arena handle. An order absent
	// from the index is, by definition, not resting.
	index map[uint64]orderbookv1.Handle

	trades      []orderbookv1.Trade
	nextTradeID uint64
}

// NewBook creates an empty book for the given instrument symbol.
func NewBook(symbol string) *Book {
	return &Book{
		symbol: symbol,
		arena:  orderbookv1.NewArena(defaultArenaCapacity),
		bids:   orderbookv1.NewLadder(orderbookv1.SideBuy),
		asks:   orderbookv1.NewLadder(orderbookv1.SideSell),
		index:  make(map[uint64]orderbookv1.Handle),
	}
}

// Symbol returns the instrument symbol this book serves.
func (b *Book) Symbol() string {
	return b.symbol
}

// Submit matches the order against the opposite side of the book and rests
// any unfilled limit remainder. Market remainders are discarded. The trades
// produced by the submission are returned in execution order and recorded in
// the trade log.
func (b *Book) Submit(order orderbookv1.Order) ([]orderbookv1.Trade, error) {
	if order.Quantity == 0 {
		return nil, fmt.Errorf("%w: order %d", ErrZeroQuantity, order.ID)
	}
	if order.Type == orderbookv1.OrderTypeLimit && order.Price <= 0 {
		return nil, fmt.Errorf("%w: got %f", ErrInvalidPrice, order.Price)
	}
	if _, exists := b.index[order.ID]; exists {
		return nil, fmt.Errorf("%w: order %d", ErrDuplicateOrder, order.ID)
	}

	if order.Symbol == "" {
		order.Symbol = b.symbol
	}
	if order.Timestamp == 0 {
		order.Timestamp = time.Now().UnixNano()
	}

	trades := b.match(&order)

	if order.Type == orderbookv1.OrderTypeLimit && !order.IsFilled() {
		b.rest(order)
	}

	return trades, nil
}

// Cancel removes a resting order, cancelling only its remaining unfilled
// quantity. Cancelling an unknown or already-removed id is a no-op.
func (b *Book) Cancel(orderID uint64) {
	h, ok := b.index[orderID]
	if !ok {
		return
	}

	order := b.arena.Order(h)
	ladder := b.bids
	if order.IsSell() {
		ladder = b.asks
	}

	if level, ok := ladder.LevelAt(order.Price); ok {
		level.Remove(b.arena, h)
		if level.IsEmpty() {
			ladder.Drop(level.Price())
		}
	}

	delete(b.index, orderID)
	b.arena.Release(h)
}

// Levels returns a point-in-time snapshot of the side's price levels,
// ordered best-first. Mutating the book afterwards does not update it.
func (b *Book) Levels(side orderbookv1.Side) []orderbookv1.PriceLevel {
	ladder := b.bids
	if side == orderbookv1.SideSell {
		ladder = b.asks
	}

	levels := make([]orderbookv1.PriceLevel, 0, ladder.Len())
	ladder.Walk(func(level *orderbookv1.Level) bool {
		levels = append(levels, level.View())
		return true
	})
	return levels
}

// Trades returns a snapshot of the full trade history in execution order.
func (b *Book) Trades() []orderbookv1.Trade {
	trades := make([]orderbookv1.Trade, len(b.trades))
	copy(trades, b.trades)
	return trades
}

// Order returns the current state of a still-resting order. Once an order is
// fully filled or canceled it is no longer queryable.
func (b *Book) Order(orderID uint64) (orderbookv1.Order, bool) {
	h, ok := b.index[orderID]
	if !ok {
		return orderbookv1.Order{}, false
	}
	return *b.arena.Order(h), true
}

// match walks the opposite ladder best-first, filling the taker against the
// front-most maker of every crossing level. One routine serves both sides;
// the ladder supplies the crossing predicate and the ordering direction.
func (b *Book) match(taker *orderbookv1.Order) []orderbookv1.Trade {
	opposite := b.asks
	if taker.IsSell() {
		opposite = b.bids
	}

	var trades []orderbookv1.Trade

	for !taker.IsFilled() {
		level := opposite.Best()
		if level == nil || !opposite.Crosses(taker, level.Price()) {
			// Levels farther from best are never more favorable.
			break
		}

		for h := level.Front(); h != orderbookv1.NilHandle && !taker.IsFilled(); {
			maker := b.arena.Order(h)
			quantity := min(taker.Remaining(), maker.Remaining())

			// The resting order's price governs, never the taker's.
			trades = append(trades, b.executeTrade(taker, maker, maker.Price, quantity))
			level.Reduce(quantity)

			if !maker.IsFilled() {
				break // taker exhausted against a larger maker
			}

			makerID := maker.ID
			next := b.arena.Next(h)
			level.Remove(b.arena, h)
			delete(b.index, makerID)
			b.arena.Release(h)
			h = next
		}

		if level.IsEmpty() {
			opposite.Drop(level.Price())
		}
	}

	return trades
}

// executeTrade fills both parties by quantity and appends the trade to the
// log. Trade ids are sequential from 1, owned by this book instance.
func (b *Book) executeTrade(taker, maker *orderbookv1.Order, price float64, quantity uint64) orderbookv1.Trade {
	taker.Filled += quantity
	maker.Filled += quantity

	buyID, sellID := taker.ID, maker.ID
	if taker.IsSell() {
		buyID, sellID = maker.ID, taker.ID
	}

	b.nextTradeID++
	trade := orderbookv1.Trade{
		ID:          b.nextTradeID,
		BuyOrderID:  buyID,
		SellOrderID: sellID,
		Symbol:      taker.Symbol,
		Price:       price,
		Quantity:    quantity,
		Timestamp:   max(taker.Timestamp, maker.Timestamp),
	}
	b.trades = append(b.trades, trade)
	return trade
}

// rest inserts the unfilled remainder into its own side of the book and
// registers it in the index.
func (b *Book) rest(order orderbookv1.Order) {
	ladder := b.bids
	if order.IsSell() {
		ladder = b.asks
	}

	h := b.arena.Alloc(order)
	ladder.Upsert(order.Price).Append(b.arena, h)
	b.index[order.ID] = h
}

// CreateSnapshot captures every resting order plus the trade sequence so the
// book can be rebuilt without replaying the whole order stream. The stream
// offset is stamped by the engine.
func (b *Book) CreateSnapshot() *snapshotv1.Snapshot {
	var orders []snapshotv1.BookOrder

	capture := func(ladder *orderbookv1.Ladder) {
		ladder.Walk(func(level *orderbookv1.Level) bool {
			for h := level.Front(); h != orderbookv1.NilHandle; h = b.arena.Next(h) {
				order := b.arena.Order(h)
				orders = append(orders, snapshotv1.BookOrder{
					OrderID:   order.ID,
					Side:      string(order.Side),
					Price:     order.Price,
					Quantity:  order.Quantity,
					Filled:    order.Filled,
					Timestamp: order.Timestamp,
				})
			}
			return true
		})
	}
	capture(b.bids)
	capture(b.asks)

	return &snapshotv1.Snapshot{
		SnapshotID:    ulid.Make().String(),
		Symbol:        b.symbol,
		TradeSequence: b.nextTradeID,
		Orders:        orders,
	}
}

// Restore rebuilds the resting state from a snapshot without re-matching.
// Orders are captured per level in arrival order, so appending them in
// snapshot order preserves time priority. The trade log is not restored;
// replaying the stream from the snapshot offset reconstructs it.
func (b *Book) Restore(snapshot *snapshotv1.Snapshot) error {
	if snapshot == nil {
		return ErrNilSnapshot
	}

	b.arena = orderbookv1.NewArena(defaultArenaCapacity)
	b.bids = orderbookv1.NewLadder(orderbookv1.SideBuy)
	b.asks = orderbookv1.NewLadder(orderbookv1.SideSell)
	b.index = make(map[uint64]orderbookv1.Handle)
	b.trades = nil
	b.nextTradeID = snapshot.TradeSequence

	for _, bookOrder := range snapshot.Orders {
		order := orderbookv1.Order{
			ID:        bookOrder.OrderID,
			Symbol:    snapshot.Symbol,
			Side:      orderbookv1.Side(bookOrder.Side),
			Type:      orderbookv1.OrderTypeLimit,
			Price:     bookOrder.Price,
			Quantity:  bookOrder.Quantity,
			Filled:    bookOrder.Filled,
			Timestamp: bookOrder.Timestamp,
		}
		if _, exists := b.index[order.ID]; exists {
			return fmt.Errorf("%w: order %d", ErrDuplicateOrder, order.ID)
		}
		b.rest(order)
	}

	return nil
}
