package orderbookv1

// Trade represents an executed trade between a buy and a sell order.
// Trades are immutable once created; ids are assigned sequentially from 1
// by the owning book, in execution order.
type Trade struct {
	ID          uint64  `json:"id"`
	BuyOrderID  uint64  `json:"buyOrderID"`
	SellOrderID uint64  `json:"sellOrderID"`
	Symbol      string  `json:"symbol"`
	Price       float64 `json:"price"`
	Quantity    uint64  `json:"quantity"`
	Timestamp   int64   `json:"timestamp"`
}
