package orderbookv1

import "time"

// Side represents the direction of an order.
type Side string

const (
	// SideBuy represents a buy (bid) order.
	SideBuy Side = "buy"
	// SideSell represents a sell (ask) order.
	SideSell Side = "sell"
)

// Opposite returns the side a taker of this side matches against.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// OrderType represents the type of order.
type OrderType string

const (
	// OrderTypeMarket represents a market order.
	OrderTypeMarket OrderType = "market"
	// OrderTypeLimit represents a limit order.
	OrderTypeLimit OrderType = "limit"
	// OrderTypeCancel represents a cancel request on the order stream.
	OrderTypeCancel OrderType = "cancel"
)

// Order represents a single order submitted to the book. Identifiers are
// caller-assigned and never reused. Price is ignored for market orders.
type Order struct {
	ID        uint64    `json:"id"`
	Symbol    string    `json:"symbol"`
	Side      Side      `json:"side"`
	Type      OrderType `json:"type"`
	Price     float64   `json:"price"`
	Quantity  uint64    `json:"quantity"`
	Filled    uint64    `json:"filled"`
	Timestamp int64     `json:"timestamp"`
}

// NewOrder creates a new order stamped with the current time.
func NewOrder(id uint64, symbol string, side Side, orderType OrderType, price float64, quantity uint64) Order {
	return Order{
		ID:        id,
		Symbol:    symbol,
		Side:      side,
		Type:      orderType,
		Price:     price,
		Quantity:  quantity,
		Timestamp: time.Now().UnixNano(),
	}
}

// Remaining returns the unfilled quantity still owed to the order.
func (o *Order) Remaining() uint64 {
	if o.Filled >= o.Quantity {
		return 0
	}
	return o.Quantity - o.Filled
}

// IsFilled checks if the order is fully filled.
func (o *Order) IsFilled() bool {
	return o.Filled >= o.Quantity
}

// IsBuy checks if the order is a buy (bid) order.
func (o *Order) IsBuy() bool {
	return o.Side == SideBuy
}

// IsSell checks if the order is a sell (ask) order.
func (o *Order) IsSell() bool {
	return o.Side == SideSell
}

// OrderRequest represents a request read from the order stream.
type OrderRequest struct {
	OrderID   uint64    `json:"orderID"`
	Type      OrderType `json:"type"`
	Side      Side      `json:"side"`
	Price     float64   `json:"price"`
	Quantity  uint64    `json:"quantity"`
	Timestamp int64     `json:"timestamp"`
	Offset    int64     `json:"-"` // Offset of the request in the stream
}
