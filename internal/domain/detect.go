package domain

import "fmt"

// Detector composes the conditioner and scorer into the single call the
// boundary layers use. It is stateless across invocations; concurrent calls
// with separate inputs are safe.
type Detector struct {
	conditioner *Conditioner
	scorer      *Scorer
}

// NewDetector validates both configs and precomputes the smoothing weights.
// A nil observer disables per-reading tracing.
func NewDetector(cfg ConditionerConfig, policy ScoringPolicy, observer ScoreObserver) (*Detector, error) {
	conditioner, err := NewConditioner(cfg)
	if err != nil {
		return nil, err
	}
	scorer, err := NewScorer(policy, observer)
	if err != nil {
		return nil, err
	}
	return &Detector{conditioner: conditioner, scorer: scorer}, nil
}

// NewDefaultDetector builds a detector on the production tuning.
func NewDefaultDetector() (*Detector, error) {
	return NewDetector(DefaultConditionerConfig(), DefaultScoringPolicy(), nil)
}

// Detect conditions one batch and scores the result. Conditioning failures
// (a malformed timestamp slipping past the boundary) propagate; scoring
// cannot fail.
func (d *Detector) Detect(readings []Reading) (Summary, error) {
	conditioned, err := d.conditioner.Condition(readings)
	if err != nil {
		return Summary{}, fmt.Errorf("condition readings: %w", err)
	}
	return d.scorer.Score(conditioned), nil
}

// Condition exposes the conditioning stage alone, for callers that need the
// cleaned signal rather than a score.
func (d *Detector) Condition(readings []Reading) ([]Reading, error) {
	return d.conditioner.Condition(readings)
}
