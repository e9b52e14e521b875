package orderbook

import (
	"testing"

	orderbookv1 "github.com/openexchange-labs/matching-engine/internal/domain/orderbook/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSymbol = "BTC-USD"

// Helpers to create test orders
func limitOrder(id uint64, side orderbookv1.Side, price float64, quantity uint64) orderbookv1.Order {
	return orderbookv1.NewOrder(id, testSymbol, side, orderbookv1.OrderTypeLimit, price, quantity)
}

func marketOrder(id uint64, side orderbookv1.Side, quantity uint64) orderbookv1.Order {
	return orderbookv1.NewOrder(id, testSymbol, side, orderbookv1.OrderTypeMarket, 0, quantity)
}

// Test 1: Basic constructor
func TestNewBook(t *testing.T) {
	book := NewBook(testSymbol)

	assert.Equal(t, testSymbol, book.Symbol())
	assert.Empty(t, book.Levels(orderbookv1.SideBuy))
	assert.Empty(t, book.Levels(orderbookv1.SideSell))
	assert.Empty(t, book.Trades())
}

// Test 2: A resting limit order is queryable and shows up in the levels
func TestBook_RestingLimitOrder(t *testing.T) {
	book := NewBook(testSymbol)

	trades, err := book.Submit(limitOrder(1, orderbookv1.SideBuy, 100.0, 500))
	require.NoError(t, err)
	assert.Empty(t, trades)

	bids := book.Levels(orderbookv1.SideBuy)
	require.Len(t, bids, 1)
	assert.Equal(t, orderbookv1.PriceLevel{Price: 100.0, Quantity: 500}, bids[0])

	order, ok := book.Order(1)
	require.True(t, ok)
	assert.Equal(t, uint64(500), order.Quantity)
	assert.Equal(t, uint64(0), order.Filled)
}

// Test 3: Partial fill of a resting bid by a smaller ask
func TestBook_PartialFillOfRestingBid(t *testing.T) {
	book := NewBook(testSymbol)

	_, err := book.Submit(limitOrder(1, orderbookv1.SideBuy, 100.0, 500))
	require.NoError(t, err)

	trades, err := book.Submit(limitOrder(2, orderbookv1.SideSell, 99.5, 300))
	require.NoError(t, err)

	require.Len(t, trades, 1)
	assert.Equal(t, 100.0, trades[0].Price) // maker's price governs
	assert.Equal(t, uint64(300), trades[0].Quantity)
	assert.Equal(t, uint64(1), trades[0].BuyOrderID)
	assert.Equal(t, uint64(2), trades[0].SellOrderID)

	order, ok := book.Order(1)
	require.True(t, ok)
	assert.Equal(t, uint64(300), order.Filled)
	assert.Equal(t, uint64(500), order.Quantity)
	assert.False(t, order.IsFilled())

	bids := book.Levels(orderbookv1.SideBuy)
	require.Len(t, bids, 1)
	assert.Equal(t, orderbookv1.PriceLevel{Price: 100.0, Quantity: 200}, bids[0])
	assert.Empty(t, book.Levels(orderbookv1.SideSell))

	// The fully filled ask is no longer queryable.
	_, ok = book.Order(2)
	assert.False(t, ok)
}

// Test 4: Market buy takes the best ask first
func TestBook_MarketBuyTakesBestAskFirst(t *testing.T) {
	book := NewBook(testSymbol)

	_, err := book.Submit(limitOrder(1, orderbookv1.SideSell, 101.0, 10))
	require.NoError(t, err)
	_, err = book.Submit(limitOrder(2, orderbookv1.SideSell, 100.0, 10))
	require.NoError(t, err)

	trades, err := book.Submit(marketOrder(3, orderbookv1.SideBuy, 10))
	require.NoError(t, err)

	require.Len(t, trades, 1)
	assert.Equal(t, 100.0, trades[0].Price)
	assert.Equal(t, uint64(10), trades[0].Quantity)

	asks := book.Levels(orderbookv1.SideSell)
	require.Len(t, asks, 1)
	assert.Equal(t, orderbookv1.PriceLevel{Price: 101.0, Quantity: 10}, asks[0])
}

// Test 5: Taker remainder rests on its own side
func TestBook_TakerRemainderRests(t *testing.T) {
	book := NewBook(testSymbol)

	_, err := book.Submit(limitOrder(1, orderbookv1.SideBuy, 100.0, 5))
	require.NoError(t, err)

	trades, err := book.Submit(limitOrder(2, orderbookv1.SideSell, 100.0, 10))
	require.NoError(t, err)

	require.Len(t, trades, 1)
	assert.Equal(t, uint64(5), trades[0].Quantity)

	asks := book.Levels(orderbookv1.SideSell)
	require.Len(t, asks, 1)
	assert.Equal(t, orderbookv1.PriceLevel{Price: 100.0, Quantity: 5}, asks[0])
	assert.Empty(t, book.Levels(orderbookv1.SideBuy))

	order, ok := book.Order(2)
	require.True(t, ok)
	assert.Equal(t, uint64(5), order.Filled)
}

// Test 6: Cancel removes the level and the order
func TestBook_CancelRemovesOrder(t *testing.T) {
	book := NewBook(testSymbol)

	_, err := book.Submit(limitOrder(1, orderbookv1.SideBuy, 99.0, 20))
	require.NoError(t, err)

	book.Cancel(1)

	assert.Empty(t, book.Levels(orderbookv1.SideBuy))
	_, ok := book.Order(1)
	assert.False(t, ok)
}

// Test 7: Time priority within a price level
func TestBook_TimePriorityWithinLevel(t *testing.T) {
	book := NewBook(testSymbol)

	_, err := book.Submit(limitOrder(1, orderbookv1.SideSell, 100.0, 10))
	require.NoError(t, err)
	_, err = book.Submit(limitOrder(2, orderbookv1.SideSell, 100.0, 10))
	require.NoError(t, err)

	trades, err := book.Submit(limitOrder(3, orderbookv1.SideBuy, 100.0, 15))
	require.NoError(t, err)

	require.Len(t, trades, 2)
	// Order 1 arrived first and fills first, completely.
	assert.Equal(t, uint64(1), trades[0].SellOrderID)
	assert.Equal(t, uint64(10), trades[0].Quantity)
	assert.Equal(t, uint64(2), trades[1].SellOrderID)
	assert.Equal(t, uint64(5), trades[1].Quantity)

	order, ok := book.Order(2)
	require.True(t, ok)
	assert.Equal(t, uint64(5), order.Filled)
}

// Test 8: Price priority across levels, sweeping multiple levels
func TestBook_SweepsLevelsBestFirst(t *testing.T) {
	book := NewBook(testSymbol)

	_, err := book.Submit(limitOrder(1, orderbookv1.SideSell, 102.0, 7))
	require.NoError(t, err)
	_, err = book.Submit(limitOrder(2, orderbookv1.SideSell, 100.0, 5))
	require.NoError(t, err)
	_, err = book.Submit(limitOrder(3, orderbookv1.SideSell, 101.0, 3))
	require.NoError(t, err)

	trades, err := book.Submit(marketOrder(4, orderbookv1.SideBuy, 12))
	require.NoError(t, err)

	require.Len(t, trades, 3)
	assert.Equal(t, 100.0, trades[0].Price)
	assert.Equal(t, uint64(5), trades[0].Quantity)
	assert.Equal(t, 101.0, trades[1].Price)
	assert.Equal(t, uint64(3), trades[1].Quantity)
	assert.Equal(t, 102.0, trades[2].Price)
	assert.Equal(t, uint64(4), trades[2].Quantity)

	asks := book.Levels(orderbookv1.SideSell)
	require.Len(t, asks, 1)
	assert.Equal(t, orderbookv1.PriceLevel{Price: 102.0, Quantity: 3}, asks[0])
}

// Test 9: A limit taker stops at the first non-crossing level
func TestBook_LimitTakerStopsAtNonCrossingLevel(t *testing.T) {
	book := NewBook(testSymbol)

	_, err := book.Submit(limitOrder(1, orderbookv1.SideSell, 100.0, 5))
	require.NoError(t, err)
	_, err = book.Submit(limitOrder(2, orderbookv1.SideSell, 101.0, 5))
	require.NoError(t, err)

	trades, err := book.Submit(limitOrder(3, orderbookv1.SideBuy, 100.5, 10))
	require.NoError(t, err)

	require.Len(t, trades, 1)
	assert.Equal(t, 100.0, trades[0].Price)

	// The remainder rests as a bid; the 101.0 ask is untouched.
	bids := book.Levels(orderbookv1.SideBuy)
	require.Len(t, bids, 1)
	assert.Equal(t, orderbookv1.PriceLevel{Price: 100.5, Quantity: 5}, bids[0])

	asks := book.Levels(orderbookv1.SideSell)
	require.Len(t, asks, 1)
	assert.Equal(t, orderbookv1.PriceLevel{Price: 101.0, Quantity: 5}, asks[0])
}

// Test 10: Unmatched market remainder is discarded, never rests
func TestBook_MarketRemainderDiscarded(t *testing.T) {
	book := NewBook(testSymbol)

	_, err := book.Submit(limitOrder(1, orderbookv1.SideSell, 100.0, 5))
	require.NoError(t, err)

	trades, err := book.Submit(marketOrder(2, orderbookv1.SideBuy, 20))
	require.NoError(t, err)

	require.Len(t, trades, 1)
	assert.Equal(t, uint64(5), trades[0].Quantity)

	assert.Empty(t, book.Levels(orderbookv1.SideBuy))
	_, ok := book.Order(2)
	assert.False(t, ok)
}

// Test 11: Market order on an empty book trades nothing
func TestBook_MarketOrderOnEmptyBook(t *testing.T) {
	book := NewBook(testSymbol)

	trades, err := book.Submit(marketOrder(1, orderbookv1.SideSell, 10))
	require.NoError(t, err)

	assert.Empty(t, trades)
	assert.Empty(t, book.Trades())
	_, ok := book.Order(1)
	assert.False(t, ok)
}

// Test 12: Cancel is idempotent and never an error
func TestBook_CancelIdempotent(t *testing.T) {
	book := NewBook(testSymbol)

	// Unknown id is a no-op.
	book.Cancel(42)

	_, err := book.Submit(limitOrder(1, orderbookv1.SideBuy, 100.0, 10))
	require.NoError(t, err)

	book.Cancel(1)
	book.Cancel(1) // second cancel is a no-op too

	assert.Empty(t, book.Levels(orderbookv1.SideBuy))
}

// Test 13: Canceling a partially filled order keeps its trades
func TestBook_CancelPartiallyFilledOrder(t *testing.T) {
	book := NewBook(testSymbol)

	_, err := book.Submit(limitOrder(1, orderbookv1.SideBuy, 100.0, 20))
	require.NoError(t, err)
	_, err = book.Submit(limitOrder(2, orderbookv1.SideSell, 100.0, 5))
	require.NoError(t, err)

	// Order 1 has 15 remaining; cancel removes only that.
	book.Cancel(1)

	assert.Empty(t, book.Levels(orderbookv1.SideBuy))
	require.Len(t, book.Trades(), 1)
	assert.Equal(t, uint64(5), book.Trades()[0].Quantity)
}

// Test 14: Partial fill of a resting maker keeps the level aggregate exact
func TestBook_LevelAggregateTracksPartialFills(t *testing.T) {
	book := NewBook(testSymbol)

	_, err := book.Submit(limitOrder(1, orderbookv1.SideBuy, 100.0, 20))
	require.NoError(t, err)
	_, err = book.Submit(limitOrder(2, orderbookv1.SideSell, 100.0, 5))
	require.NoError(t, err)

	bids := book.Levels(orderbookv1.SideBuy)
	require.Len(t, bids, 1)
	assert.Equal(t, orderbookv1.PriceLevel{Price: 100.0, Quantity: 15}, bids[0])
}

// Test 15: Trade ids are sequential from 1 in execution order
func TestBook_TradeIDsSequential(t *testing.T) {
	book := NewBook(testSymbol)

	for i := uint64(1); i <= 3; i++ {
		_, err := book.Submit(limitOrder(i, orderbookv1.SideSell, 100.0, 1))
		require.NoError(t, err)
	}
	_, err := book.Submit(marketOrder(10, orderbookv1.SideBuy, 3))
	require.NoError(t, err)

	trades := book.Trades()
	require.Len(t, trades, 3)
	for i, trade := range trades {
		assert.Equal(t, uint64(i+1), trade.ID)
	}
}

// Test 16: Trade timestamp is the later of the two participants
func TestBook_TradeTimestampIsMax(t *testing.T) {
	book := NewBook(testSymbol)

	maker := limitOrder(1, orderbookv1.SideSell, 100.0, 5)
	maker.Timestamp = 1000
	_, err := book.Submit(maker)
	require.NoError(t, err)

	taker := limitOrder(2, orderbookv1.SideBuy, 100.0, 5)
	taker.Timestamp = 2000
	trades, err := book.Submit(taker)
	require.NoError(t, err)

	require.Len(t, trades, 1)
	assert.Equal(t, int64(2000), trades[0].Timestamp)
}

// Test 17: Submissions the book rejects leave it untouched
func TestBook_SubmitValidation(t *testing.T) {
	book := NewBook(testSymbol)

	t.Run("Zero quantity", func(t *testing.T) {
		_, err := book.Submit(limitOrder(1, orderbookv1.SideBuy, 100.0, 0))
		assert.ErrorIs(t, err, ErrZeroQuantity)
	})

	t.Run("Non-positive limit price", func(t *testing.T) {
		_, err := book.Submit(limitOrder(1, orderbookv1.SideBuy, 0, 10))
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})

	t.Run("Duplicate resting id", func(t *testing.T) {
		_, err := book.Submit(limitOrder(1, orderbookv1.SideBuy, 100.0, 10))
		require.NoError(t, err)

		_, err = book.Submit(limitOrder(1, orderbookv1.SideSell, 101.0, 10))
		assert.ErrorIs(t, err, ErrDuplicateOrder)

		// Book state is unchanged by the rejection.
		assert.Empty(t, book.Levels(orderbookv1.SideSell))
		require.Len(t, book.Levels(orderbookv1.SideBuy), 1)
	})
}

// Test 18: Levels and Trades return point-in-time snapshots
func TestBook_QueriesReturnSnapshots(t *testing.T) {
	book := NewBook(testSymbol)

	_, err := book.Submit(limitOrder(1, orderbookv1.SideBuy, 100.0, 10))
	require.NoError(t, err)

	bids := book.Levels(orderbookv1.SideBuy)
	trades := book.Trades()

	// Mutate the book after taking the snapshots.
	_, err = book.Submit(limitOrder(2, orderbookv1.SideSell, 100.0, 10))
	require.NoError(t, err)

	require.Len(t, bids, 1)
	assert.Equal(t, uint64(10), bids[0].Quantity)
	assert.Empty(t, trades)

	assert.Empty(t, book.Levels(orderbookv1.SideBuy))
	assert.Len(t, book.Trades(), 1)
}

// Test 19: Filled quantity never exceeds quantity on either side
func TestBook_FilledNeverExceedsQuantity(t *testing.T) {
	book := NewBook(testSymbol)

	for i := uint64(1); i <= 5; i++ {
		_, err := book.Submit(limitOrder(i, orderbookv1.SideSell, 100.0+float64(i), 10))
		require.NoError(t, err)
	}
	_, err := book.Submit(limitOrder(20, orderbookv1.SideBuy, 103.0, 37))
	require.NoError(t, err)

	for _, trade := range book.Trades() {
		assert.Positive(t, trade.Quantity)
	}
	for i := uint64(1); i <= 5; i++ {
		if order, ok := book.Order(i); ok {
			assert.LessOrEqual(t, order.Filled, order.Quantity)
		}
	}
	if order, ok := book.Order(20); ok {
		assert.LessOrEqual(t, order.Filled, order.Quantity)
	}
}

// Test 20: Snapshot and restore round-trip the resting state
func TestBook_SnapshotRestore(t *testing.T) {
	book := NewBook(testSymbol)

	_, err := book.Submit(limitOrder(1, orderbookv1.SideBuy, 100.0, 20))
	require.NoError(t, err)
	_, err = book.Submit(limitOrder(2, orderbookv1.SideBuy, 99.0, 10))
	require.NoError(t, err)
	_, err = book.Submit(limitOrder(3, orderbookv1.SideSell, 101.0, 15))
	require.NoError(t, err)
	_, err = book.Submit(limitOrder(4, orderbookv1.SideSell, 100.0, 5)) // fills 5 against order 1
	require.NoError(t, err)

	snap := book.CreateSnapshot()
	require.NotEmpty(t, snap.SnapshotID)
	assert.Equal(t, testSymbol, snap.Symbol)
	assert.Equal(t, uint64(1), snap.TradeSequence)

	restored := NewBook(testSymbol)
	require.NoError(t, restored.Restore(snap))

	assert.Equal(t, book.Levels(orderbookv1.SideBuy), restored.Levels(orderbookv1.SideBuy))
	assert.Equal(t, book.Levels(orderbookv1.SideSell), restored.Levels(orderbookv1.SideSell))

	order, ok := restored.Order(1)
	require.True(t, ok)
	assert.Equal(t, uint64(5), order.Filled)

	// Trade numbering continues where the snapshot left off.
	trades, err := restored.Submit(limitOrder(5, orderbookv1.SideSell, 100.0, 5))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, uint64(2), trades[0].ID)
}

// Test 21: Restoring a nil snapshot fails
func TestBook_RestoreNilSnapshot(t *testing.T) {
	book := NewBook(testSymbol)
	assert.ErrorIs(t, book.Restore(nil), ErrNilSnapshot)
}

// Test 22: Same-price reinsertion after a level empties queues behind nothing
func TestBook_LevelRecreatedAfterEmpty(t *testing.T) {
	book := NewBook(testSymbol)

	_, err := book.Submit(limitOrder(1, orderbookv1.SideSell, 100.0, 5))
	require.NoError(t, err)
	_, err = book.Submit(marketOrder(2, orderbookv1.SideBuy, 5))
	require.NoError(t, err)

	require.Empty(t, book.Levels(orderbookv1.SideSell))

	_, err = book.Submit(limitOrder(3, orderbookv1.SideSell, 100.0, 7))
	require.NoError(t, err)

	asks := book.Levels(orderbookv1.SideSell)
	require.Len(t, asks, 1)
	assert.Equal(t, orderbookv1.PriceLevel{Price: 100.0, Quantity: 7}, asks[0])
}
