package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers accepted in STORAGE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// ErrMissingMongoURL is returned when the mongo driver is selected without
// a connection string.
var ErrMissingMongoURL = errors.New("MONGODB_URL is required")

// Config is the process configuration.
type Config struct {
	AppPort        string
	Environment    string
	StorageDriver  string
	MongoURL       string
	MongoDatabase  string
	MongoColl      string
	DatabaseDSN    string
	RequestTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	RabbitMQURL   string
	RabbitMQQueue string
}

// IsProduction reports whether the service runs in production.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads a .env file when present and then the environment.
func Load() (Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()
	return FromViper(viper.New())
}

// FromViper builds a Config from v after applying defaults and binding the
// environment.
func FromViper(v *viper.Viper) (Config, error) {
	v.SetDefault("APP_PORT", ":3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("STORAGE_DRIVER", DriverMongo)
	v.SetDefault("MONGODB_DATABASE", "produtos")
	v.SetDefault("MONGODB_COLLECTION", "produtos")
	v.SetDefault("REQUEST_TIMEOUT", "5s")
	v.SetDefault("CACHE_TTL", "10m")
	v.SetDefault("RABBITMQ_QUEUE", "product_events")
	v.AutomaticEnv()

	cfg := Config{
		AppPort:        v.GetString("APP_PORT"),
		Environment:    v.GetString("APP_ENV"),
		StorageDriver:  v.GetString("STORAGE_DRIVER"),
		MongoURL:       v.GetString("MONGODB_URL"),
		MongoDatabase:  v.GetString("MONGODB_DATABASE"),
		MongoColl:      v.GetString("MONGODB_COLLECTION"),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		CacheTTL:       v.GetDuration("CACHE_TTL"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		RabbitMQQueue:  v.GetString("RABBITMQ_QUEUE"),
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.StorageDriver {
	case DriverMongo:
		if c.MongoURL == "" {
			return ErrMissingMongoURL
		}
	case DriverPostgres, DriverSQLite:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for storage driver %q", c.StorageDriver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}
