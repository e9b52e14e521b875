package tradepublisherv1

import (
	"encoding/json"

	"github.com/oklog/ulid/v2"
	orderbookv1 "github.com/openexchange-labs/matching-engine/internal/domain/orderbook/v1"
)

// TradeEvent is the payload published to the trade topic for every executed
// trade.
type TradeEvent struct {
	EventID     string  `json:"eventID"`
	TradeID     uint64  `json:"tradeID"`
	BuyOrderID  uint64  `json:"buyOrderID"`
	SellOrderID uint64  `json:"sellOrderID"`
	Symbol      string  `json:"symbol"`
	Price       float64 `json:"price"`
	Quantity    uint64  `json:"quantity"`
	TakerSide   string  `json:"takerSide"`
	Timestamp   int64   `json:"timestamp"`
}

// CreateFromTrade creates a trade event from an executed trade and the side
// of the taker that produced it.
func CreateFromTrade(trade *orderbookv1.Trade, takerSide orderbookv1.Side) *TradeEvent {
	return &TradeEvent{
		EventID:     ulid.Make().String(),
		TradeID:     trade.ID,
		BuyOrderID:  trade.BuyOrderID,
		SellOrderID: trade.SellOrderID,
		Symbol:      trade.Symbol,
		Price:       trade.Price,
		Quantity:    trade.Quantity,
		TakerSide:   string(takerSide),
		Timestamp:   trade.Timestamp,
	}
}

// ToBytes converts the trade event to a byte array.
func ToBytes(event *TradeEvent) []byte {
	buf, err := json.Marshal(event)
	if err != nil {
		return nil
	}
	return buf
}

// FromBytes converts a byte array to a trade event.
func FromBytes(data []byte) *TradeEvent {
	var event TradeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil
	}
	return &event
}
