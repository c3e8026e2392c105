package domain

import (
	"fmt"
	"time"
)

// Physical bounds enforced at the service boundary. The core never range-checks;
// these exist so every validating layer agrees on the same limits.
const (
	MinTemperature = -50.0
	MaxTemperature = 100.0
	MinSmoke       = 0.0
	MaxSmoke       = 1.0
)

// Reading is one timestamped multi-channel sensor sample. Conditioned batches
// reuse the same shape: temperature and smoke carry filtered values, wind
// passes through untouched.
type Reading struct {
	Timestamp   string  `json:"timestamp"`
	Temperature float64 `json:"temperature"`
	Smoke       float64 `json:"smoke"`
	Wind        float64 `json:"wind"`
}

// timestampLayouts lists the accepted ISO-8601 shapes: RFC 3339 (a trailing
// "Z" means UTC) and the offset-less form, which is taken as UTC.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
}

// ParseTimestamp parses an ISO-8601 timestamp string. The returned error
// wraps the underlying *time.ParseError.
func ParseTimestamp(ts string) (time.Time, error) {
	var err error
	for _, layout := range timestampLayouts {
		var t time.Time
		if t, err = time.Parse(layout, ts); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: %w", ts, err)
}

// Validate checks the boundary invariants for a single reading: a parseable
// timestamp and in-range channel values.
func (r Reading) Validate() error {
	if _, err := ParseTimestamp(r.Timestamp); err != nil {
		return err
	}
	if r.Temperature < MinTemperature || r.Temperature > MaxTemperature {
		return fmt.Errorf("temperature %.2f outside [%g, %g]", r.Temperature, MinTemperature, MaxTemperature)
	}
	if r.Smoke < MinSmoke || r.Smoke > MaxSmoke {
		return fmt.Errorf("smoke %.4f outside [%g, %g]", r.Smoke, MinSmoke, MaxSmoke)
	}
	if r.Wind < 0 {
		return fmt.Errorf("wind %.2f is negative", r.Wind)
	}
	return nil
}

// ValidateBatch checks every reading and rejects empty batches. Empty input
// is valid for the core itself (it returns a zero summary); rejecting it here
// is the boundary's job so callers get an explicit error instead of a silent
// zero result.
func ValidateBatch(readings []Reading) error {
	if len(readings) == 0 {
		return fmt.Errorf("batch contains no readings")
	}
	for i, r := range readings {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("reading %d: %w", i, err)
		}
	}
	return nil
}
