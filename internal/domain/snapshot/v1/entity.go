package snapshotv1

// Snapshot represents the resting state of the book at a specific point in
// time, sufficient to rebuild it without replaying the whole order stream.
type Snapshot struct {
	SnapshotID    string      `json:"snapshotID"`
	Symbol        string      `json:"symbol"`
	OrderOffset   int64       `json:"orderOffset"`
	TradeSequence uint64      `json:"tradeSequence"`
	Orders        []BookOrder `json:"orders"`
}

// BookOrder represents a single resting order captured in a snapshot.
type BookOrder struct {
	OrderID   uint64  `json:"orderID"`
	Side      string  `json:"side"`
	Price     float64 `json:"price"`
	Quantity  uint64  `json:"quantity"`
	Filled    uint64  `json:"filled"`
	Timestamp int64   `json:"timestamp"`
}
