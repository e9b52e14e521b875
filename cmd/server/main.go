package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/openexchange-labs/matching-engine/internal/app/engine"
	"github.com/openexchange-labs/matching-engine/internal/usecase/orderbook"
	orderreader "github.com/openexchange-labs/matching-engine/internal/usecase/order-reader"
	"github.com/openexchange-labs/matching-engine/internal/usecase/snapshot"
	tradepublisher "github.com/openexchange-labs/matching-engine/internal/usecase/trade-publisher"
	"github.com/openexchange-labs/matching-engine/pkg/config"
	"github.com/openexchange-labs/matching-engine/pkg/logger"
	"github.com/openexchange-labs/matching-engine/pkg/redis"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	cfg = &config.Config{}
	if err := config.Load(cfg); err != nil {
		panic(err)
	}

	l, err := logger.NewLogger(logger.WithLoggingLevel(logger.Level(cfg.App.LogLevel)))
	if err != nil {
		panic(err)
	}
	log = l
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	rclient := redis.NewClient(log, &cfg.Redis)
	if err := rclient.Connect(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "connect_redis",
		})
		return
	}

	book := orderbook.NewBook(cfg.Symbol)
	oReader := orderreader.NewReader(cfg.OrderKafka, log)
	snapshotStore := snapshot.NewSnapshotStore(rclient, cfg.Symbol, log)
	tPublisher := tradepublisher.NewPublisher(cfg.TradeKafka, log)

	engine, err := app.NewEngine(
		book,
		oReader,
		snapshotStore,
		tPublisher,
		log,
		cfg,
	)
	if err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "create_engine",
		})
		return
	}

	if err := engine.Start(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "start_engine",
		})
		return
	}

	log.Info("Matching engine started successfully", logger.Field{
		Key:   "symbol",
		Value: cfg.Symbol,
	})

	sig := <-sigChan
	log.Info("Received shutdown signal", logger.Field{
		Key:   "signal",
		Value: sig.String(),
	})

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := engine.Stop(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "stop_engine",
		})
	}

	if err := tPublisher.Close(); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "close_trade_publisher",
		})
	}

	if err := rclient.Disconnect(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "disconnect_redis",
		})
	}

	log.Info("Matching engine shutdown complete")
}
