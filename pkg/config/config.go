package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/openexchange-labs/matching-engine/pkg/redis"
)

// MustLoad loads the configuration from environment variables and .env file.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load() // Load environment variables from .env file

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and .env file.
func Load[T any](cfg T) error {
	_ = godotenv.Load() // .env file is optional

	return env.Parse(cfg)
}

// Config holds the configuration for the matching engine service.
type Config struct {
	Symbol string `env:"SYMBOL,required"` // Instrument symbol, e.g. BTC-USD

	App        AppConfig        `envPrefix:"APP_"`
	OrderKafka OrderKafkaConfig `envPrefix:"ORDER_KAFKA_"`
	TradeKafka TradeKafkaConfig `envPrefix:"TRADE_KAFKA_"`
	Redis      redis.Config     `envPrefix:"REDIS_"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name     string `env:"NAME" envDefault:"matching-engine"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// OrderKafkaConfig holds the configuration for the order stream consumer.
type OrderKafkaConfig struct {
	Brokers []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic   string   `env:"TOPIC" envDefault:"orders"`
	GroupID string   `env:"GROUP_ID" envDefault:"matching-engine"`
}

// TradeKafkaConfig holds the configuration for the trade event producer.
type TradeKafkaConfig struct {
	Brokers []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic   string   `env:"TOPIC" envDefault:"trades"`
}
