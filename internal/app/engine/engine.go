package engine

import (
	"context"
	"sync"
	"time"

	orderreaderv1 "github.com/openexchange-labs/matching-engine/internal/domain/order-reader/v1"
	orderbookv1 "github.com/openexchange-labs/matching-engine/internal/domain/orderbook/v1"
	snapshotv1 "github.com/openexchange-labs/matching-engine/internal/domain/snapshot/v1"
	tradepublisherv1 "github.com/openexchange-labs/matching-engine/internal/domain/trade-publisher/v1"
	"github.com/openexchange-labs/matching-engine/pkg/config"
	"github.com/openexchange-labs/matching-engine/pkg/logger"
	"github.com/openexchange-labs/matching-engine/pkg/util"
)

// Engine drives the book from the order stream: it consumes order requests,
// applies them to the book, publishes the resulting trades, and snapshots
// the book periodically. The book itself performs no locking; every access
// goes through the engine mutex, keeping the single-logical-actor model.
type Engine struct {
	book           orderbookv1.Book
	orderReader    orderreaderv1.OrderReader
	snapshotStore  snapshotv1.Store
	tradePublisher tradepublisherv1.TradePublisher
	logger         *logger.Logger
	config         *config.Config

	mu                 sync.Mutex // serializes book access and offset state
	orderOffset        int64
	lastSnapshotOffset int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	snapshotInterval    time.Duration
	snapshotOffsetDelta int64

	totalTrades uint64
}

// NewEngine creates a new Engine with the provided dependencies and default
// options.
func NewEngine(
	book orderbookv1.Book,
	orderReader orderreaderv1.OrderReader,
	snapshotStore snapshotv1.Store,
	tradePublisher tradepublisherv1.TradePublisher,
	log *logger.Logger,
	cfg *config.Config,
) (*Engine, error) {
	return NewEngineWithOptions(book, orderReader, snapshotStore, tradePublisher, log, cfg, DefaultEngineOptions())
}

// NewEngineWithOptions creates a new engine with custom options. The latest
// snapshot, if any, is restored before the engine starts consuming.
func NewEngineWithOptions(
	book orderbookv1.Book,
	orderReader orderreaderv1.OrderReader,
	snapshotStore snapshotv1.Store,
	tradePublisher tradepublisherv1.TradePublisher,
	log *logger.Logger,
	cfg *config.Config,
	options *Options,
) (*Engine, error) {
	e := &Engine{
		book:           book,
		orderReader:    orderReader,
		snapshotStore:  snapshotStore,
		tradePublisher: tradePublisher,
		logger:         log,
		config:         cfg,

		snapshotInterval:    options.SnapshotInterval,
		snapshotOffsetDelta: options.SnapshotOffsetDelta,
		orderOffset:         -1,
	}

	if err := e.loadSnapshot(context.Background()); err != nil {
		return nil, err
	}

	return e, nil
}

// Start launches the order processor and the snapshot manager.
func (e *Engine) Start(ctx context.Context) error {
	e.ctx, e.cancel = context.WithCancel(ctx)

	e.wg.Add(2)
	go e.runOrderProcessor()
	go e.runSnapshotManager()

	e.logger.Info("Engine started", logger.Field{
		Key:   "symbol",
		Value: e.config.Symbol,
	})

	return nil
}

// Stop gracefully shuts down the engine.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("Engine stopped gracefully")
		return nil
	case <-ctx.Done():
		e.logger.Warn("Engine stop timeout exceeded")
		return ctx.Err()
	}
}

// runOrderProcessor reads order requests and applies them to the book, one
// at a time.
func (e *Engine) runOrderProcessor() {
	defer e.wg.Done()

	e.logger.Info("Starting order processor", logger.Field{
		Key:   "symbol",
		Value: e.config.Symbol,
	})

	currentOffset := e.getOrderOffset()
	if currentOffset >= 0 {
		currentOffset++
	}

	if err := e.orderReader.SetOffset(currentOffset); err != nil {
		e.logger.Error(err, logger.Field{
			Key:   "action",
			Value: "set_order_reader_offset",
		})
	}

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("Order processor shutting down")
			e.orderReader.Close()
			return
		default:
			msg, request, err := e.orderReader.ReadMessage(e.ctx)
			if err != nil {
				e.logger.ErrorContext(e.ctx, err, logger.Field{
					Key:   "action",
					Value: "read_order_message",
				})
				time.Sleep(100 * time.Millisecond)
				continue
			}

			ctx := util.WithRequestID(e.ctx, "")
			if err := e.processRequest(ctx, request); err != nil {
				e.logger.ErrorContext(ctx, err, logger.Field{
					Key:   "action",
					Value: "process_order_request",
				}, logger.Field{
					Key:   "orderID",
					Value: request.OrderID,
				})
			}

			e.setOrderOffset(msg.Offset)
		}
	}
}

// runSnapshotManager snapshots the book on a ticker once enough offsets have
// passed since the previous snapshot.
func (e *Engine) runSnapshotManager() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.snapshotInterval)
	defer ticker.Stop()

	e.logger.Info("Starting snapshot manager")

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("Snapshot manager shutting down")
			return
		case <-ticker.C:
			if e.shouldCreateSnapshot() {
				e.createAndStoreSnapshot()
			}
		}
	}
}

// processRequest routes a single order request to the book and publishes any
// trades it produced.
func (e *Engine) processRequest(ctx context.Context, request *orderbookv1.OrderRequest) error {
	e.logger.DebugContext(ctx, "Processing order request",
		logger.Field{Key: "orderID", Value: request.OrderID},
		logger.Field{Key: "type", Value: request.Type},
		logger.Field{Key: "side", Value: request.Side},
		logger.Field{Key: "offset", Value: request.Offset},
	)

	switch request.Type {
	case orderbookv1.OrderTypeCancel:
		e.mu.Lock()
		e.book.Cancel(request.OrderID)
		e.mu.Unlock()
		return nil

	case orderbookv1.OrderTypeLimit, orderbookv1.OrderTypeMarket:
		order := orderbookv1.NewOrder(
			request.OrderID,
			e.config.Symbol,
			request.Side,
			request.Type,
			request.Price,
			request.Quantity,
		)
		if request.Timestamp != 0 {
			order.Timestamp = request.Timestamp
		}

		e.mu.Lock()
		trades, err := e.book.Submit(order)
		e.mu.Unlock()
		if err != nil {
			return err
		}

		if request.Type == orderbookv1.OrderTypeMarket && len(trades) == 0 {
			e.logger.DebugContext(ctx, "Market order found no liquidity",
				logger.Field{Key: "orderID", Value: request.OrderID},
			)
		}

		e.publishTrades(ctx, trades, request.Side)
		return nil
	}

	e.logger.WarnContext(ctx, "Unknown order request type", logger.Field{
		Key:   "type",
		Value: request.Type,
	})
	return nil
}

// publishTrades emits one event per executed trade.
func (e *Engine) publishTrades(ctx context.Context, trades []orderbookv1.Trade, takerSide orderbookv1.Side) {
	if len(trades) == 0 {
		return
	}

	e.mu.Lock()
	e.totalTrades += uint64(len(trades))
	currentTotal := e.totalTrades
	e.mu.Unlock()

	e.logger.InfoContext(ctx, "Trades executed",
		logger.Field{Key: "tradeCount", Value: len(trades)},
		logger.Field{Key: "totalTrades", Value: currentTotal},
	)

	for i := range trades {
		event := tradepublisherv1.CreateFromTrade(&trades[i], takerSide)
		if err := e.tradePublisher.PublishTradeEvent(ctx, event); err != nil {
			e.logger.ErrorContext(ctx, err, logger.Field{
				Key:   "action",
				Value: "publish_trade_event",
			}, logger.Field{
				Key:   "tradeID",
				Value: trades[i].ID,
			})
		}
	}
}

// shouldCreateSnapshot checks if enough of the stream has been consumed
// since the previous snapshot.
func (e *Engine) shouldCreateSnapshot() bool {
	e.mu.Lock()
	currentOffset := e.orderOffset
	lastSnapshotOffset := e.lastSnapshotOffset
	e.mu.Unlock()

	if currentOffset < 0 {
		return false
	}

	return currentOffset-lastSnapshotOffset >= e.snapshotOffsetDelta
}

// createAndStoreSnapshot captures and persists the current book state.
func (e *Engine) createAndStoreSnapshot() {
	e.mu.Lock()
	snapshot := e.book.CreateSnapshot()
	currentOffset := e.orderOffset
	e.mu.Unlock()

	snapshot.OrderOffset = currentOffset

	if err := e.snapshotStore.Store(e.ctx, snapshot); err != nil {
		e.logger.ErrorContext(e.ctx, err, logger.Field{
			Key:   "action",
			Value: "store_snapshot",
		})
		return
	}

	e.setLastSnapshotOffset(currentOffset)
}

// loadSnapshot restores the book from the latest snapshot, if one exists.
func (e *Engine) loadSnapshot(ctx context.Context) error {
	snapshot, err := e.snapshotStore.Load(ctx)
	if err != nil {
		return err
	}

	if snapshot != nil {
		if err := e.book.Restore(snapshot); err != nil {
			return err
		}

		e.mu.Lock()
		e.orderOffset = snapshot.OrderOffset
		e.lastSnapshotOffset = snapshot.OrderOffset
		e.mu.Unlock()

		e.logger.Info("Book restored from snapshot", logger.Field{
			Key:   "snapshotID",
			Value: snapshot.SnapshotID,
		}, logger.Field{
			Key:   "orderOffset",
			Value: snapshot.OrderOffset,
		}, logger.Field{
			Key:   "restingOrders",
			Value: len(snapshot.Orders),
		})
	}

	return nil
}

func (e *Engine) getOrderOffset() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.orderOffset
}

func (e *Engine) setOrderOffset(offset int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.orderOffset = offset
}

func (e *Engine) setLastSnapshotOffset(offset int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSnapshotOffset = offset
}

// GetOrderOffset returns the offset of the last applied order request.
func (e *Engine) GetOrderOffset() int64 {
	return e.getOrderOffset()
}

// GetTotalTrades returns the number of trades executed since startup.
func (e *Engine) GetTotalTrades() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalTrades
}
