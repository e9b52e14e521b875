package orderreaderv1

import (
	"context"

	orderbookv1 "github.com/openexchange-labs/matching-engine/internal/domain/orderbook/v1"
	"github.com/segmentio/kafka-go"
)

// OrderReader defines the interface for reading order requests from a stream.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=orderreaderv1_mock
type OrderReader interface {
	// ReadMessage reads a message and returns it with the parsed request.
	ReadMessage(ctx context.Context) (kafka.Message, *orderbookv1.OrderRequest, error)
	// SetOffset sets the offset for the reader.
	SetOffset(offset int64) error
	// Close closes the reader.
	Close() error
}
