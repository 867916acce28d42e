package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds environment-driven configuration.
type Config struct {
	Port              string        `env:"PORT" envDefault:"8080"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	RateLimitRPM      int           `env:"RATE_LIMIT_RPM" envDefault:"60"`
	RateLimitBurst    int           `env:"RATE_LIMIT_BURST" envDefault:"10"`
	CacheTTL          time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	RedisAddr         string        `env:"REDIS_ADDR"`
	RedisDB           int           `env:"REDIS_DB" envDefault:"0"`
	MongoURI          string        `env:"MONGO_URI"`
	MongoDB           string        `env:"MONGO_DB" envDefault:"strcalc"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"3s"`
	MaxBatch          int           `env:"MAX_BATCH" envDefault:"100"`
	MaxConcurrency    int           `env:"MAX_CONCURRENCY" envDefault:"8"`
	MaxInputBytes     int64         `env:"MAX_INPUT_BYTES" envDefault:"65536"`
	PatternDelimiters bool          `env:"PATTERN_DELIMITERS" envDefault:"false"`
}

// Load loads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	switch {
	case c.Port == "":
		return fmt.Errorf("PORT must not be empty")
	case c.RateLimitRPM <= 0:
		return fmt.Errorf("RATE_LIMIT_RPM must be positive, got %d", c.RateLimitRPM)
	case c.RateLimitBurst <= 0:
		return fmt.Errorf("RATE_LIMIT_BURST must be positive, got %d", c.RateLimitBurst)
	case c.CacheTTL <= 0:
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	case c.RequestTimeout <= 0:
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	case c.MaxBatch <= 0:
		return fmt.Errorf("MAX_BATCH must be positive, got %d", c.MaxBatch)
	case c.MaxConcurrency <= 0:
		return fmt.Errorf("MAX_CONCURRENCY must be positive, got %d", c.MaxConcurrency)
	case c.MaxInputBytes <= 0:
		return fmt.Errorf("MAX_INPUT_BYTES must be positive, got %d", c.MaxInputBytes)
	}
	return nil
}
