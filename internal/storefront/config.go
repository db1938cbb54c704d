package storefront

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Port           string
	RedisURL       string
	PostgresURL    string
	KafkaBrokers   []string
	CatalogFile    string
	CatalogLatency time.Duration
	SessionTTL     time.Duration
	CartIdle       time.Duration
	OTLPEndpoint   string
}

// ConfigFromEnv reads the storefront settings. Empty backing-service URLs
// select the in-memory implementations.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Port:         getenv("PORT", "8080"),
		RedisURL:     os.Getenv("REDIS_URL"),
		PostgresURL:  os.Getenv("POSTGRES_URL"),
		CatalogFile:  os.Getenv("CATALOG_FILE"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	var err error
	if cfg.CatalogLatency, err = time.ParseDuration(getenv("CATALOG_LATENCY", "0s")); err != nil {
		return Config{}, fmt.Errorf("parse CATALOG_LATENCY: %w", err)
	}
	if cfg.SessionTTL, err = time.ParseDuration(getenv("SESSION_TTL", "720h")); err != nil {
		return Config{}, fmt.Errorf("parse SESSION_TTL: %w", err)
	}
	if cfg.CartIdle, err = time.ParseDuration(getenv("CART_IDLE_TIMEOUT", "24h")); err != nil {
		return Config{}, fmt.Errorf("parse CART_IDLE_TIMEOUT: %w", err)
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
