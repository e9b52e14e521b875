package orderbookv1

import snapshotv1 "github.com/openexchange-labs/matching-engine/internal/domain/snapshot/v1"

// Book defines the interface for a single-instrument order book.
type Book interface {
	Symbol() string
	Submit(order Order) ([]Trade, error)
	Cancel(orderID uint64)
	Levels(side Side) []PriceLevel
	Trades() []Trade
	Order(orderID uint64) (Order, bool)
	CreateSnapshot() *snapshotv1.Snapshot
	Restore(snapshot *snapshotv1.Snapshot) error
}
