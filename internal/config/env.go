package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment parsing helpers. Earlier services in this family pulled these
// from a shared module; they are small enough to live here.

const (
	defaultShutdownTimeout    = 10 * time.Second
	defaultBatchSize          = 50
	maxBatchSize              = 1000
	defaultBatchFlushInterval = 500 * time.Millisecond
	defaultDedupeCacheSize    = 4096
)

// envOrDefault returns the value of the environment variable, or fallback
// when unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseShutdownTimeout() (time.Duration, error) {
	raw := os.Getenv("SHUTDOWN_TIMEOUT")
	if raw == "" {
		return defaultShutdownTimeout, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q: must be a positive duration", raw)
	}
	return d, nil
}

func parseBatchSize() (int, error) {
	raw := os.Getenv("BATCH_SIZE")
	if raw == "" {
		return defaultBatchSize, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxBatchSize {
		return 0, fmt.Errorf("invalid BATCH_SIZE %q: must be in [1, %d]", raw, maxBatchSize)
	}
	return n, nil
}

func parseBatchFlushInterval() (time.Duration, error) {
	raw := os.Getenv("BATCH_FLUSH_INTERVAL")
	if raw == "" {
		return defaultBatchFlushInterval, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid BATCH_FLUSH_INTERVAL %q: must be a positive duration", raw)
	}
	return d, nil
}

func parseDedupeCacheSize() (int, error) {
	raw := os.Getenv("DEDUPE_CACHE_SIZE")
	if raw == "" {
		return defaultDedupeCacheSize, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid DEDUPE_CACHE_SIZE %q: must be a positive integer", raw)
	}
	return n, nil
}
