package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Config struct {
	HTTPPort    string
	DatabaseURL string
	RedisAddr   string
	// KafkaBrokers is a comma separated list; empty means notifications are only logged.
	KafkaBrokers     string
	KafkaOrdersTopic string
	JWTSecret        string
	AdminEmail       string
	ShippingCost     decimal.Decimal
	Currency         currency.Unit
	LogLevel         string

	RequestTimeout      time.Duration
	TxTimeout           time.Duration
	NotificationTimeout time.Duration
	ShutdownTimeout     time.Duration
	CartCacheTTL        time.Duration
}

// Load reads the optional env files first; real environment variables take precedence.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("godotenv.Load(%s): %w", file, err)
		}
	}

	l := loader{}

	cfg := Config{
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		DatabaseURL:      l.required("DATABASE_URL"),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		KafkaBrokers:     getEnv("KAFKA_BROKERS", ""),
		KafkaOrdersTopic: getEnv("KAFKA_TOPIC_ORDERS", "storefront-orders"),
		JWTSecret:        l.required("JWT_SECRET"),
		AdminEmail:       getEnv("ADMIN_EMAIL", "admin@localhost"),
		ShippingCost:     l.decimal("SHIPPING_COST", "7.00"),
		Currency:         l.currency("CURRENCY", "USD"),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),

		RequestTimeout:      l.duration("REQUEST_TIMEOUT", "30s"),
		TxTimeout:           l.duration("TX_TIMEOUT", "5s"),
		NotificationTimeout: l.duration("NOTIFICATION_TIMEOUT", "10s"),
		ShutdownTimeout:     l.duration("SHUTDOWN_TIMEOUT", "10s"),
		CartCacheTTL:        l.duration("CART_CACHE_TTL", "15m"),
	}

	if cfg.ShippingCost.IsNegative() {
		l.errs = append(l.errs, fmt.Errorf("SHIPPING_COST %s is negative", cfg.ShippingCost))
	}

	if err := errors.Join(l.errs...); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Development is true for debug logging.
func (c Config) Development() bool {
	return c.LogLevel == "debug"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// loader collects every parse failure so that all of them are reported at once.
type loader struct {
	errs []error
}

func (l *loader) required(key string) string {
	value := os.Getenv(key)
	if value == "" {
		l.errs = append(l.errs, fmt.Errorf("%s is required", key))
	}
	return value
}

func (l *loader) duration(key, defaultValue string) time.Duration {
	raw := getEnv(key, defaultValue)

	d, err := time.ParseDuration(raw)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: %w", key, err))
		return 0
	}
	if d <= 0 {
		l.errs = append(l.errs, fmt.Errorf("%s must be positive, got %s", key, raw))
	}
	return d
}

func (l *loader) decimal(key, defaultValue string) decimal.Decimal {
	d, err := decimal.NewFromString(getEnv(key, defaultValue))
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: %w", key, err))
	}
	return d
}

func (l *loader) currency(key, defaultValue string) currency.Unit {
	unit, err := currency.ParseISO(getEnv(key, defaultValue))
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: %w", key, err))
	}
	return unit
}
