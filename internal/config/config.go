// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// ErrInvalidConfig wraps every validation failure returned by Load.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds every setting of the normalizer service and the backfill tool.
type Config struct {
	HTTPAddr     string        `env:"NORMALIZER_HTTP_ADDR" envDefault:":8080" validate:"required"`
	MaxBodyBytes int           `env:"NORMALIZER_MAX_BODY_BYTES" envDefault:"10485760" validate:"min=1024"`
	Workers      int           `env:"NORMALIZER_WORKERS" envDefault:"8" validate:"min=1,max=64"`
	ChunkSize    int           `env:"NORMALIZER_CHUNK_SIZE" envDefault:"100" validate:"min=1"`
	DataDir      string        `env:"NORMALIZER_DATA_DIR" envDefault:"./data" validate:"required"`
	DedupeWindow time.Duration `env:"NORMALIZER_DEDUPE_WINDOW" envDefault:"168h"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFile  string `env:"LOG_FILE"`

	EnableConsumers bool   `env:"NORMALIZER_ENABLE_CONSUMERS" envDefault:"true"`
	KafkaBroker     string `env:"KAFKA_BROKER" envDefault:"kafka:9092" validate:"required"`
	RawTopic        string `env:"KAFKA_RAW_TOPIC" envDefault:"storefront.catalog.raw" validate:"required"`
	NormalizedTopic string `env:"KAFKA_NORMALIZED_TOPIC" envDefault:"storefront.catalog.normalized" validate:"required,nefield=RawTopic"`
	GroupID         string `env:"KAFKA_GROUP_ID" envDefault:"catalog-normalizer" validate:"required"`

	RedisAddr string        `env:"REDIS_ADDR" envDefault:"redis:6379" validate:"required"`
	RecordTTL time.Duration `env:"REDIS_RECORD_TTL" envDefault:"24h"`

	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://mongo:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"storefront"`
}

var validate = validator.New()

// Load reads an optional dotenv file, then the environment, and validates the
// result. The dotenv file is NORMALIZER_ENV_FILE when set, otherwise ".env".
func Load() (*Config, error) {
	envFile := os.Getenv("NORMALIZER_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// String returns a short summary safe for logs.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{HTTP: %s, Workers: %d, Kafka: %s, Redis: %s, DataDir: %s}",
		c.HTTPAddr, c.Workers, c.KafkaBroker, c.RedisAddr, c.DataDir,
	)
}
