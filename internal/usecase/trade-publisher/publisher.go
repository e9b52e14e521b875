package tradepublisher

import (
	"context"

	tradepublisherv1 "github.com/openexchange-labs/matching-engine/internal/domain/trade-publisher/v1"
	"github.com/openexchange-labs/matching-engine/pkg/config"
	"github.com/openexchange-labs/matching-engine/pkg/errors"
	"github.com/openexchange-labs/matching-engine/pkg/logger"
	"github.com/openexchange-labs/matching-engine/pkg/util"
	"github.com/segmentio/kafka-go"
)

// Publisher represents a Kafka publisher for trade events.
type Publisher struct {
	kafkaWriter *kafka.Writer
	logger      *logger.Logger
}

// NewPublisher creates a new Kafka publisher for the trade topic.
func NewPublisher(cfg config.TradeKafkaConfig, log *logger.Logger) *Publisher {
	kafkaWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
	})

	return &Publisher{
		kafkaWriter: kafkaWriter,
		logger:      log,
	}
}

// PublishTradeEvent publishes a trade event to the trade topic. Messages are
// keyed by the request id so downstream consumers can correlate a trade with
// the submission that produced it.
func (p *Publisher) PublishTradeEvent(ctx context.Context, event *tradepublisherv1.TradeEvent) error {
	msg := kafka.Message{
		Key:   []byte(util.GetRequestID(ctx)),
		Value: tradepublisherv1.ToBytes(event),
	}

	if err := p.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.ErrorContext(ctx, err,
			logger.Field{Key: "tradeID", Value: event.TradeID},
			logger.Field{Key: "symbol", Value: event.Symbol},
		)
		return errors.NewTracer(string(errors.TradePublishError)).Wrap(err)
	}
	return nil
}

// Close flushes and closes the underlying Kafka writer.
func (p *Publisher) Close() error {
	return p.kafkaWriter.Close()
}
