package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dwikikusuma/cosmo-market/pkg/sqldb"
)

type Config struct {
	AppEnv   string
	LogLevel string

	GRPCPort int
	HTTPPort int

	DB sqldb.Config

	RedisAddr      string
	IdempotencyTTL time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	OTelExporter string
	OTelEndpoint string

	CosmoCatsEnabled     bool
	KittyProductsEnabled bool

	CartPricingConcurrency int
	ShutdownTimeout        time.Duration
}

func Load() Config {
	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnvInt("HTTP_PORT", 8080),
		GRPCPort: getEnvInt("GRPC_PORT", 8081),

		DB: sqldb.Config{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnvInt("POSTGRES_PORT", 5432),
			User:            getEnv("POSTGRES_USER", "postgres"),
			Pass:            getEnv("POSTGRES_PASSWORD", "postgres"),
			DB:              getEnv("POSTGRES_DB", "cosmo_market"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		IdempotencyTTL: getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),

		KafkaBrokers: getEnvList("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "cosmo-market.events"),

		OTelExporter: getEnv("OTEL_EXPORTER", "none"),
		OTelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		CosmoCatsEnabled:     getEnvBool("FEATURE_COSMO_CATS_ENABLED", false),
		KittyProductsEnabled: getEnvBool("FEATURE_KITTY_PRODUCTS_ENABLED", false),

		CartPricingConcurrency: getEnvInt("CART_PRICING_CONCURRENCY", 8),
		ShutdownTimeout:        getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
