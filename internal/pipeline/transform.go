package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cinderwatch/wildfire-detect-service/internal/domain"
)

// DetectionTransformer implements Transformer by running each site batch
// through the wildfire detector.
type DetectionTransformer struct {
	detector *domain.Detector
	logger   *slog.Logger
}

// NewTransformer creates a DetectionTransformer around the given detector.
func NewTransformer(detector *domain.Detector, logger *slog.Logger) *DetectionTransformer {
	return &DetectionTransformer{
		detector: detector,
		logger:   logger,
	}
}

func (t *DetectionTransformer) Transform(_ context.Context, raw domain.RawBatch) (domain.Report, error) {
	envelope, err := domain.ParseRawBatch(raw)
	if err != nil {
		return domain.Report{}, err
	}

	if err := envelope.Validate(); err != nil {
		return domain.Report{}, fmt.Errorf("validate batch: %w", err)
	}

	summary, err := t.detector.Detect(envelope.Readings)
	if err != nil {
		return domain.Report{}, fmt.Errorf("score site %q: %w", envelope.SiteID, err)
	}

	report, err := domain.BuildReport(envelope.SiteID, envelope.Readings, summary)
	if err != nil {
		return domain.Report{}, err
	}

	if report.EventCount > 0 {
		t.logger.Info("alerts detected",
			"site_id", report.SiteID,
			"event_count", report.EventCount,
			"max_score", report.MaxScore,
			"window_start", report.WindowStart,
			"window_end", report.WindowEnd,
		)
	}

	return report, nil
}
