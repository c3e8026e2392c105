package domain

import (
	"context"
	"fmt"
	"time"
)

// RawBatch represents one unprocessed message from the source topic: a
// site's readings for one reporting window, still in wire form. Commit
// acknowledges the message once the derived report is durably written.
type RawBatch struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// BatchEnvelope is the JSON shape the ingest gateway publishes: one site's
// raw readings collected over a reporting window.
type BatchEnvelope struct {
	SiteID   string    `json:"site_id"`
	Readings []Reading `json:"readings"`
}

// Validate rejects envelopes the detector must never see: a missing site or
// any reading outside the sensor model's physical ranges.
func (e BatchEnvelope) Validate() error {
	if e.SiteID == "" {
		return fmt.Errorf("batch envelope missing site_id")
	}
	return ValidateBatch(e.Readings)
}

// Event is one alert: a reading whose risk score cleared the alert
// threshold, or the onset of an incident under hysteresis.
type Event struct {
	Timestamp string  `json:"timestamp"`
	Score     float64 `json:"score"`
}

// Summary is the terminal scoring result for one batch. Events is never nil,
// so an alert-free batch serializes as an empty array rather than null.
type Summary struct {
	Events     []Event `json:"events"`
	EventCount int     `json:"event_count"`
	MaxScore   float64 `json:"max_score"`
}

// Report is the risk assessment destined for the sink topic: the scoring
// summary plus enough provenance for downstream consumers to place it.
type Report struct {
	ID      string `json:"id"`
	SiteID  string `json:"site_id"`
	Summary        // flattened into the report body

	ReadingCount int       `json:"reading_count"`
	WindowStart  string    `json:"window_start,omitempty"`
	WindowEnd    string    `json:"window_end,omitempty"`
	ProcessedAt  time.Time `json:"processed_at"`
}
