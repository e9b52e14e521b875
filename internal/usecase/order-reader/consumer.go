package orderreader

import (
	"context"
	"encoding/json"

	orderbookv1 "github.com/openexchange-labs/matching-engine/internal/domain/orderbook/v1"
	"github.com/openexchange-labs/matching-engine/pkg/config"
	"github.com/openexchange-labs/matching-engine/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Reader represents a Kafka reader consuming order requests from the order
// topic.
type Reader struct {
	kafkaReader *kafka.Reader
	logger      *logger.Logger
}

// NewReader creates a new Kafka reader for the order topic. It returns an
// implementation of the OrderReader interface.
func NewReader(cfg config.OrderKafkaConfig, log *logger.Logger) *Reader {
	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		Partition:   0,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})

	return &Reader{
		kafkaReader: kafkaReader,
		logger:      log,
	}
}

// SetOffset sets the offset for the Kafka reader.
func (r *Reader) SetOffset(offset int64) error {
	if err := r.kafkaReader.SetOffset(offset); err != nil {
		r.logError(err, "SetOffset")
		return err
	}
	return nil
}

// ReadMessage reads a message from the order topic and parses it as an
// OrderRequest.
func (r *Reader) ReadMessage(ctx context.Context) (kafka.Message, *orderbookv1.OrderRequest, error) {
	msg, err := r.kafkaReader.ReadMessage(ctx)
	if err != nil {
		r.logError(err, "ReadMessage")
		return kafka.Message{}, nil, err
	}

	var request orderbookv1.OrderRequest
	if err := json.Unmarshal(msg.Value, &request); err != nil {
		r.logError(err, "UnmarshalOrderRequest")
		return kafka.Message{}, nil, err
	}

	request.Offset = msg.Offset

	r.logger.Debug("ReadMessage",
		logger.Field{Key: "orderID", Value: request.OrderID},
		logger.Field{Key: "type", Value: request.Type},
		logger.Field{Key: "side", Value: request.Side},
		logger.Field{Key: "price", Value: request.Price},
		logger.Field{Key: "quantity", Value: request.Quantity},
		logger.Field{Key: "offset", Value: request.Offset},
	)

	return msg, &request, nil
}

// Close properly closes the Kafka reader.
func (r *Reader) Close() error {
	if err := r.kafkaReader.Close(); err != nil {
		r.logError(err, "Close")
		return err
	}
	return nil
}

func (r *Reader) logError(err error, operation string) {
	r.logger.Error(err,
		logger.Field{Key: "operation", Value: operation},
	)
}
