package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPPort        string        `env:"HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Empty MongoURI runs on in-memory storage only
	MongoURI                    string        `env:"MONGO_URI"`
	MongoDatabase               string        `env:"MONGO_DATABASE" envDefault:"turnping"`
	MongoServerSelectionTimeout time.Duration `env:"MONGO_SERVER_SELECTION_TIMEOUT" envDefault:"5s"`

	// Empty RedisAddr disables turn events
	RedisAddr string `env:"REDIS_ADDR"`

	Log LogConfig
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"console"` // console or json
	File   string `env:"LOG_FILE"`                        // rotated file output in addition to stdout
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	// go-redis wants host:port
	cfg.RedisAddr = strings.TrimPrefix(cfg.RedisAddr, "redis://")
	return &cfg, nil
}
