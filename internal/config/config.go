package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Env      string
	LogLevel string

	ServerPort string

	JWTSecret          string
	JWTExpirationHours int64
	// CardEncryptionKey seeds the AES key for card numbers. Changing it makes
	// every stored card number unreadable.
	CardEncryptionKey string

	StorageDriver string
	Mongo         MongoConfig
	Postgres      *DBConfig

	Redis          RedisConfig
	ReportCacheTTL time.Duration

	RabbitMQURL string

	InitialAdminEmail string
	RevealMaxAttempts int
	RevealWindow      time.Duration

	// Warnings collects fallbacks taken while parsing, logged once the logger exists.
	Warnings []string
}

type MongoConfig struct {
	URI      string
	Database string
}

// Development reports whether the service runs with development defaults.
func (c *Config) Development() bool {
	return c.Env != "production"
}

// Load reads the configuration. Callers load .env files beforehand.
func Load() (*Config, error) {
	cfg := &Config{
		Env:               getenv("APP_ENV", "development"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		ServerPort:        getenv("SERVER_PORT", "8080"),
		JWTSecret:         os.Getenv("JWT_SECRET_KEY"),
		StorageDriver:     strings.ToLower(getenv("STORAGE_DRIVER", DriverMongo)),
		RabbitMQURL:       os.Getenv("RABBITMQ_URL"),
		InitialAdminEmail: strings.ToLower(strings.TrimSpace(os.Getenv("INITIAL_ADMIN_EMAIL"))),
		Mongo: MongoConfig{
			URI:      os.Getenv("MONGO_URI"),
			Database: getenv("MONGO_DATABASE", "finance"),
		},
		Redis: loadRedisConfig(),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY not set in environment")
	}
	cfg.CardEncryptionKey = getenv("CARD_ENC_KEY", cfg.JWTSecret)

	cfg.JWTExpirationHours = int64(cfg.intVar("JWT_EXPIRATION_HOURS", 24))
	cfg.RevealMaxAttempts = cfg.intVar("REVEAL_MAX_ATTEMPTS", 5)
	cfg.RevealWindow = cfg.durationVar("REVEAL_WINDOW", 15*time.Minute)
	cfg.ReportCacheTTL = cfg.durationVar("REPORT_CACHE_TTL", time.Minute)

	switch cfg.StorageDriver {
	case DriverMongo:
		if cfg.Mongo.URI == "" {
			return nil, fmt.Errorf("MONGO_URI environment variable not set")
		}
	case DriverPostgres:
		dbCfg, err := LoadDBConfig()
		if err != nil {
			return nil, err
		}
		cfg.Postgres = dbCfg
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q (want %s or %s)", cfg.StorageDriver, DriverMongo, DriverPostgres)
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (c *Config) intVar(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.Warnings = append(c.Warnings, fmt.Sprintf("invalid %s=%q, defaulting to %d", key, v, def))
		return def
	}
	return n
}

func (c *Config) durationVar(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		c.Warnings = append(c.Warnings, fmt.Sprintf("invalid %s=%q, defaulting to %s", key, v, def))
		return def
	}
	return d
}
