package config

import (
	"fmt"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	SourceDir        string
	IngestWorkers    int
	InactiveAfter    time.Duration
	ReingestInterval time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Profile publishing is enabled when KafkaBrokers is non-empty.
	KafkaBrokers       []string
	KafkaProfileTopic  string
	BatchSize          int
	BatchFlushInterval time.Duration
}

// PublishEnabled reports whether ingested profiles go to Kafka.
func (c *Config) PublishEnabled() bool { return len(c.KafkaBrokers) > 0 }

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is loaded first when
// present; it never overrides variables already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}
	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}
	workers, err := parseIntRange("INGEST_WORKERS", "4", 1, 64)
	if err != nil {
		return nil, err
	}
	inactiveAfter, err := parseNonNegativeDuration("INACTIVE_AFTER", "720h")
	if err != nil {
		return nil, err
	}
	reingest, err := parseNonNegativeDuration("REINGEST_INTERVAL", "0")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		SourceDir:          sharedcfg.EnvOrDefault("SOURCE_DIR", "./data"),
		IngestWorkers:      workers,
		InactiveAfter:      inactiveAfter,
		ReingestInterval:   reingest,
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "")),
		KafkaProfileTopic:  sharedcfg.EnvOrDefault("KAFKA_PROFILE_TOPIC", "argo-profiles"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	return cfg, nil
}

func parseIntRange(key, fallback string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be %d-%d", key, lo, hi)
	}
	return n, nil
}

func parseNonNegativeDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s: must be a non-negative duration", key)
	}
	return d, nil
}
