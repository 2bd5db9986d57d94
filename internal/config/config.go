// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Addr              string        `envconfig:"ADDR" default:":8080"`
	DatabaseDSN       string        `envconfig:"DB_DSN" required:"true"`
	RedisAddr         string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	JWTSecret         string        `envconfig:"JWT_SECRET" required:"true"`
	LimitMessages     int           `envconfig:"LIMIT_MESSAGES" default:"50"`
	RequestTimeout    time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	DirectoryCacheTTL time.Duration `envconfig:"DIRECTORY_CACHE_TTL" default:"5m"`
	LogLevel          string        `envconfig:"LOG_LEVEL" default:"info"`
}

func Load() (Config, error) {
	// Missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
