package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// ParseRawBatch deserializes a RawBatch's value into its envelope form.
// It expects the site-batch JSON produced by the ingest gateway.
func ParseRawBatch(raw RawBatch) (BatchEnvelope, error) {
	var env BatchEnvelope
	if err := json.Unmarshal(raw.Value, &env); err != nil {
		return BatchEnvelope{}, fmt.Errorf("parse raw batch: %w", err)
	}
	return env, nil
}

// BuildReport assembles the sink-topic report for one scored batch. The
// window bounds come from the readings' own timestamps, not arrival time, so
// a replayed batch reports the same window.
func BuildReport(siteID string, readings []Reading, summary Summary) (Report, error) {
	start, end, err := windowBounds(readings)
	if err != nil {
		return Report{}, fmt.Errorf("report window: %w", err)
	}

	return Report{
		ID:           generateReportID(siteID, start, end, len(readings), summary.MaxScore),
		SiteID:       siteID,
		Summary:      summary,
		ReadingCount: len(readings),
		WindowStart:  start,
		WindowEnd:    end,
		ProcessedAt:  clock.Now(),
	}, nil
}

// windowBounds returns the earliest and latest timestamps in the batch, in
// their original string form. Empty batches have no window.
func windowBounds(readings []Reading) (string, string, error) {
	if len(readings) == 0 {
		return "", "", nil
	}

	start, end := readings[0], readings[0]
	startAt, err := ParseTimestamp(start.Timestamp)
	if err != nil {
		return "", "", err
	}
	endAt := startAt

	for _, r := range readings[1:] {
		at, err := ParseTimestamp(r.Timestamp)
		if err != nil {
			return "", "", err
		}
		if at.Before(startAt) {
			startAt, start = at, r
		}
		if at.After(endAt) {
			endAt, end = at, r
		}
	}
	return start.Timestamp, end.Timestamp, nil
}

// generateReportID produces a deterministic ID from the report's key fields.
// Replaying the same site window produces the same ID, so the pipeline's
// seen-set and downstream consumers can drop the duplicate.
func generateReportID(siteID, windowStart, windowEnd string, readingCount int, maxScore float64) string {
	input := fmt.Sprintf("%s|%s|%s|%d|%.1f", siteID, windowStart, windowEnd, readingCount, maxScore)
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if siteID == "" {
		return short
	}
	return siteID + "-" + short
}
