package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all renderer settings, populated from environment variables.
type Config struct {
	KafkaBrokers       []string
	KafkaRequestTopic  string
	KafkaArtifactTopic string
	KafkaGroupID       string
	HTTPAddr           string
	LogLevel           string
	LogFormat          string
	ShutdownTimeout    time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Chart output configuration.
	OutputDir    string
	OutputFormat string
	CacheSize    int
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	flushInterval, err := parseDuration("BATCH_FLUSH_INTERVAL", "500ms")
	if err != nil {
		return nil, err
	}

	batchSize, err := parsePositiveInt("BATCH_SIZE", 50)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("ARTIFACT_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaRequestTopic:  envOrDefault("KAFKA_REQUEST_TOPIC", "chart-requests"),
		KafkaArtifactTopic: envOrDefault("KAFKA_ARTIFACT_TOPIC", "chart-artifacts"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "metplot-renderd"),
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		OutputDir:    envOrDefault("OUTPUT_DIR", "artifacts"),
		OutputFormat: envOrDefault("OUTPUT_FORMAT", "png"),
		CacheSize:    cacheSize,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaRequestTopic == "" {
		return nil, errors.New("KAFKA_REQUEST_TOPIC is required")
	}
	if cfg.KafkaArtifactTopic == "" {
		return nil, errors.New("KAFKA_ARTIFACT_TOPIC is required")
	}
	if cfg.OutputFormat != "png" && cfg.OutputFormat != "svg" {
		return nil, fmt.Errorf("invalid OUTPUT_FORMAT %q, want png or svg", cfg.OutputFormat)
	}

	return cfg, nil
}

// envOrDefault returns the environment value for key, or def when unset.
func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseBrokers splits a comma-separated broker list, trimming whitespace
// and dropping empty entries.
func parseBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if b := strings.TrimSpace(p); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
