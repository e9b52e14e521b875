package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	snapshotv1 "github.com/openexchange-labs/matching-engine/internal/domain/snapshot/v1"
	"github.com/openexchange-labs/matching-engine/pkg/errors"
	"github.com/openexchange-labs/matching-engine/pkg/logger"
	"github.com/openexchange-labs/matching-engine/pkg/redis"
)

// Store keeps book snapshots in Redis, one key per symbol.
type Store struct {
	symbol      string
	logger      *logger.Logger
	redisclient redis.Client
}

// NewSnapshotStore creates a new snapshot store for the given symbol.
func NewSnapshotStore(redisclient redis.Client, symbol string, log *logger.Logger) *Store {
	return &Store{
		symbol:      symbol,
		redisclient: redisclient,
		logger:      log,
	}
}

// Store serializes the snapshot and stores it under the symbol key.
func (s *Store) Store(ctx context.Context, snapshot *snapshotv1.Snapshot) error {
	buf, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "symbol",
			Value: s.symbol,
		})
		return errors.NewTracer(string(errors.SnapshotStoreError)).Wrap(err)
	}

	if err := s.redisclient.Set(ctx, s.key(), buf, 0); err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "symbol",
			Value: s.symbol,
		})
		return errors.NewTracer(string(errors.SnapshotStoreError)).Wrap(err)
	}

	s.logger.InfoContext(ctx, "Snapshot stored", logger.Field{
		Key:   "symbol",
		Value: s.symbol,
	}, logger.Field{
		Key:   "snapshotID",
		Value: snapshot.SnapshotID,
	}, logger.Field{
		Key:   "orders",
		Value: len(snapshot.Orders),
	})
	return nil
}

// Load reads the latest snapshot for the symbol. It returns nil without
// error when no snapshot exists yet.
func (s *Store) Load(ctx context.Context) (*snapshotv1.Snapshot, error) {
	data, err := s.redisclient.Get(ctx, s.key())
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "symbol",
			Value: s.symbol,
		})
		return nil, errors.NewTracer(string(errors.SnapshotLoadError)).Wrap(err)
	}

	if data == "" {
		s.logger.WarnContext(ctx, "No snapshot found", logger.Field{
			Key:   "symbol",
			Value: s.symbol,
		})
		return nil, nil
	}

	var snapshot snapshotv1.Snapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "symbol",
			Value: s.symbol,
		})
		return nil, errors.NewTracer(string(errors.SnapshotLoadError)).Wrap(err)
	}

	return &snapshot, nil
}

func (s *Store) key() string {
	return fmt.Sprintf("book:snapshot:%s", s.symbol)
}
