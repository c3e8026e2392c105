package domain

import (
	"fmt"
	"math"
)

// MaxRiskScore is the ceiling of the combined risk scale.
const MaxRiskScore = 100.0

// Sigmoid parameterizes a logistic curve rising from 0 toward 1, centered at
// Pivot. Steepness sets how sharp the transition is. Variance damping and the
// wind mapping are both instances of this shape on different physical scales.
type Sigmoid struct {
	Pivot     float64
	Steepness float64
}

func (s Sigmoid) at(v float64) float64 {
	return 1.0 / (1.0 + math.Exp(-s.Steepness*(v-s.Pivot)))
}

// WindMode selects how wind folds into the risk score.
type WindMode string

const (
	// WindAdditive adds an independently weighted wind term to the channel
	// contributions.
	WindAdditive WindMode = "additive"

	// WindMultiplicative scales the channel contributions by a raw wind
	// multiplier instead of adding a term. Preserved from an earlier tuning
	// generation; it produces different numbers than WindAdditive for the
	// same input, so the two are never interchangeable.
	WindMultiplicative WindMode = "multiplicative"
)

// EmissionMode selects the alert emission policy.
type EmissionMode string

const (
	// EmitPerReading emits one event for every reading whose score clears
	// the alert threshold. A sustained incident alerts on every sample.
	EmitPerReading EmissionMode = "per_reading"

	// EmitPerIncident collapses a contiguous above-threshold run into a
	// single event using the incident state machine.
	EmitPerIncident EmissionMode = "per_incident"
)

// ScoringPolicy carries every scoring tunable. The algorithm is fixed; tuning
// generations differ only in this data (weights, pivots, thresholds, modes),
// never in parallel code paths.
type ScoringPolicy struct {
	// Channel weights. They may sum above MaxRiskScore; the final clamp is
	// the saturation policy, not a normalized probability.
	TempWeight  float64
	SmokeWeight float64
	WindWeight  float64

	// Variance damping per channel. A near-constant channel contributes
	// almost nothing regardless of individual deviations.
	TempDamping  Sigmoid
	SmokeDamping Sigmoid

	// WindRisk maps raw wind speed onto [0, 1]. Wind is not scored as an
	// anomaly against a baseline; fire risk is monotonic in raw speed.
	WindRisk Sigmoid

	// WindDivisor scales the multiplier used by WindMultiplicative:
	// base * (1 + wind/WindDivisor). Ignored under WindAdditive.
	WindDivisor float64

	// AlertThreshold opens an incident; ResetThreshold re-arms it and must
	// sit strictly below AlertThreshold.
	AlertThreshold float64
	ResetThreshold float64

	WindMode     WindMode
	EmissionMode EmissionMode
}

// DefaultScoringPolicy returns the production tuning: additive wind and
// incident hysteresis.
func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		TempWeight:     60,
		SmokeWeight:    60,
		WindWeight:     15,
		TempDamping:    Sigmoid{Pivot: 4.0, Steepness: 3.0},
		SmokeDamping:   Sigmoid{Pivot: 0.02, Steepness: 20.0},
		WindRisk:       Sigmoid{Pivot: 6.0, Steepness: 0.8},
		WindDivisor:    15,
		AlertThreshold: 70,
		ResetThreshold: 65,
		WindMode:       WindAdditive,
		EmissionMode:   EmitPerIncident,
	}
}

// Validate checks the policy invariants.
func (p ScoringPolicy) Validate() error {
	if p.TempWeight < 0 || p.SmokeWeight < 0 || p.WindWeight < 0 {
		return fmt.Errorf("scoring: channel weights must be non-negative")
	}
	if p.TempDamping.Steepness <= 0 || p.SmokeDamping.Steepness <= 0 || p.WindRisk.Steepness <= 0 {
		return fmt.Errorf("scoring: sigmoid steepness must be positive")
	}
	switch p.WindMode {
	case WindAdditive:
	case WindMultiplicative:
		if p.WindDivisor <= 0 {
			return fmt.Errorf("scoring: wind divisor must be positive in multiplicative mode")
		}
	default:
		return fmt.Errorf("scoring: unknown wind mode %q", p.WindMode)
	}
	switch p.EmissionMode {
	case EmitPerReading, EmitPerIncident:
	default:
		return fmt.Errorf("scoring: unknown emission mode %q", p.EmissionMode)
	}
	if p.ResetThreshold >= p.AlertThreshold {
		return fmt.Errorf("scoring: reset threshold %.1f must sit below alert threshold %.1f",
			p.ResetThreshold, p.AlertThreshold)
	}
	return nil
}

// Scorer converts conditioned batches into scored summaries under one fixed
// policy. It holds no per-batch state; concurrent calls with separate inputs
// are safe.
type Scorer struct {
	policy   ScoringPolicy
	observer ScoreObserver
}

// NewScorer validates the policy. A nil observer disables per-reading
// tracing.
func NewScorer(policy ScoringPolicy, observer ScoreObserver) (*Scorer, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{policy: policy, observer: observer}, nil
}

// Score computes batch statistics once, scores every reading against them,
// and applies the emission policy over the chronological scan. Empty input
// yields the zero summary.
func (s *Scorer) Score(conditioned []Reading) Summary {
	events := []Event{}
	if len(conditioned) == 0 {
		return Summary{Events: events, EventCount: 0, MaxScore: 0}
	}

	temps := make([]float64, len(conditioned))
	smokes := make([]float64, len(conditioned))
	for i, r := range conditioned {
		temps[i] = r.Temperature
		smokes[i] = r.Smoke
	}
	tempStats := computeStats(temps)
	smokeStats := computeStats(smokes)

	// Damping depends only on batch variance, so it is constant across the
	// scan.
	tempDamping := s.policy.TempDamping.at(tempStats.std)
	smokeDamping := s.policy.SmokeDamping.at(smokeStats.std)

	state := incidentIdle
	var maxScore float64
	for i, r := range conditioned {
		tempZ := oneSidedZ(r.Temperature, tempStats)
		smokeZ := oneSidedZ(r.Smoke, smokeStats)
		tempSeverity := severity(tempZ)
		smokeSeverity := severity(smokeZ)
		windScore := s.policy.WindRisk.at(r.Wind)

		base := s.policy.TempWeight*tempSeverity*tempDamping +
			s.policy.SmokeWeight*smokeSeverity*smokeDamping

		var risk float64
		switch s.policy.WindMode {
		case WindMultiplicative:
			risk = base * (1.0 + r.Wind/s.policy.WindDivisor)
		default:
			risk = base + s.policy.WindWeight*windScore
		}
		risk = roundTo(clamp(risk, 0, MaxRiskScore), 1)

		var emitted bool
		if s.policy.EmissionMode == EmitPerIncident {
			state, emitted = state.next(risk, s.policy.AlertThreshold, s.policy.ResetThreshold)
		} else {
			emitted = risk > s.policy.AlertThreshold
		}
		if emitted {
			events = append(events, Event{Timestamp: r.Timestamp, Score: risk})
		}
		if risk > maxScore {
			maxScore = risk
		}

		if s.observer != nil {
			s.observer.ObserveScore(ReadingScore{
				Index:         i,
				Reading:       r,
				TempZ:         tempZ,
				SmokeZ:        smokeZ,
				TempSeverity:  tempSeverity,
				SmokeSeverity: smokeSeverity,
				TempDamping:   tempDamping,
				SmokeDamping:  smokeDamping,
				WindScore:     windScore,
				Risk:          risk,
				Emitted:       emitted,
			})
		}
	}

	return Summary{Events: events, EventCount: len(events), MaxScore: maxScore}
}

// oneSidedZ returns the standardized deviation above the mean, floored at
// zero. A drop below the mean is never anomalous in this model; cooling air
// or clearing smoke is not a fire signal.
func oneSidedZ(v float64, stats channelStats) float64 {
	z := (v - stats.mean) / stats.std
	if z < 0 {
		return 0
	}
	return z
}

// severity maps a one-sided z-score onto [0, 1] via the folded normal CDF,
// 2*(phi(z)-0.5). One standard deviation above the mean already reads as
// roughly 0.68, deliberately harsher than a two-sided significance test.
func severity(z float64) float64 {
	if z <= 0 {
		return 0
	}
	return math.Min(1.0, math.Erf(z/math.Sqrt2))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
