package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration, read from the environment.
type Config struct {
	App      AppConfig      `envPrefix:"APP_"`
	Postgres PostgresConfig `envPrefix:"POSTGRES_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	FillFeed FillFeedConfig `envPrefix:"FILL_FEED_"`
}

type AppConfig struct {
	Name     string `env:"NAME" envDefault:"clobby"`
	Addr     string `env:"ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// PostgresConfig selects the record store. An empty DSN keeps records in
// memory only.
type PostgresConfig struct {
	DSN string `env:"DSN"`
}

// RedisConfig selects the depth cache. An empty Addr uses the in-memory one.
type RedisConfig struct {
	Addr     string        `env:"ADDR"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	TTL      time.Duration `env:"TTL" envDefault:"5m"`
}

// FillFeedConfig selects the Kafka fill feed. No brokers disables it.
type FillFeedConfig struct {
	Brokers []string `env:"BROKERS"`
	Topic   string   `env:"TOPIC" envDefault:"clobby.fills"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
