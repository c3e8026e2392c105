package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cinderwatch/wildfire-detect-service/internal/domain"
)

// Tuning is the detection profile, optionally loaded from a YAML file over
// the compiled defaults. Keys omitted from the file keep their defaults, so a
// profile only needs to name what it changes.
type Tuning struct {
	Conditioner conditionerProfile `yaml:"conditioner"`
	Scoring     scoringProfile     `yaml:"scoring"`
}

type conditionerProfile struct {
	Window              int     `yaml:"window"`
	PolyOrder           int     `yaml:"poly_order"`
	SuppressSpikes      bool    `yaml:"suppress_spikes"`
	TempSpikeThreshold  float64 `yaml:"temp_spike_threshold"`
	SmokeSpikeThreshold float64 `yaml:"smoke_spike_threshold"`
}

type scoringProfile struct {
	TempWeight     float64        `yaml:"temp_weight"`
	SmokeWeight    float64        `yaml:"smoke_weight"`
	WindWeight     float64        `yaml:"wind_weight"`
	TempDamping    sigmoidProfile `yaml:"temp_damping"`
	SmokeDamping   sigmoidProfile `yaml:"smoke_damping"`
	WindRisk       sigmoidProfile `yaml:"wind_risk"`
	WindDivisor    float64        `yaml:"wind_divisor"`
	AlertThreshold float64        `yaml:"alert_threshold"`
	ResetThreshold float64        `yaml:"reset_threshold"`
	WindMode       string         `yaml:"wind_mode"`
	EmissionMode   string         `yaml:"emission_mode"`
}

type sigmoidProfile struct {
	Pivot     float64 `yaml:"pivot"`
	Steepness float64 `yaml:"steepness"`
}

// DefaultTuning returns the compiled-in production profile.
func DefaultTuning() Tuning {
	cc := domain.DefaultConditionerConfig()
	sp := domain.DefaultScoringPolicy()
	return Tuning{
		Conditioner: conditionerProfile{
			Window:              cc.Window,
			PolyOrder:           cc.PolyOrder,
			SuppressSpikes:      cc.SuppressSpikes,
			TempSpikeThreshold:  cc.TempSpikeThreshold,
			SmokeSpikeThreshold: cc.SmokeSpikeThreshold,
		},
		Scoring: scoringProfile{
			TempWeight:     sp.TempWeight,
			SmokeWeight:    sp.SmokeWeight,
			WindWeight:     sp.WindWeight,
			TempDamping:    sigmoidProfile{Pivot: sp.TempDamping.Pivot, Steepness: sp.TempDamping.Steepness},
			SmokeDamping:   sigmoidProfile{Pivot: sp.SmokeDamping.Pivot, Steepness: sp.SmokeDamping.Steepness},
			WindRisk:       sigmoidProfile{Pivot: sp.WindRisk.Pivot, Steepness: sp.WindRisk.Steepness},
			WindDivisor:    sp.WindDivisor,
			AlertThreshold: sp.AlertThreshold,
			ResetThreshold: sp.ResetThreshold,
			WindMode:       string(sp.WindMode),
			EmissionMode:   string(sp.EmissionMode),
		},
	}
}

// LoadTuning decodes a YAML profile over the defaults. An empty path returns
// the defaults unchanged; a missing or malformed file is an error rather than
// a silent fallback.
func LoadTuning(path string) (Tuning, error) {
	tuning := DefaultTuning()
	if path == "" {
		return tuning, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, &tuning); err != nil {
		return Tuning{}, fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	return tuning, nil
}

// Configs converts the profile into the domain configuration pair, running
// the domain validations so a bad profile fails at startup, not mid-batch.
func (t Tuning) Configs() (domain.ConditionerConfig, domain.ScoringPolicy, error) {
	cc := domain.ConditionerConfig{
		Window:              t.Conditioner.Window,
		PolyOrder:           t.Conditioner.PolyOrder,
		SuppressSpikes:      t.Conditioner.SuppressSpikes,
		TempSpikeThreshold:  t.Conditioner.TempSpikeThreshold,
		SmokeSpikeThreshold: t.Conditioner.SmokeSpikeThreshold,
	}
	if err := cc.Validate(); err != nil {
		return domain.ConditionerConfig{}, domain.ScoringPolicy{}, err
	}

	sp := domain.ScoringPolicy{
		TempWeight:     t.Scoring.TempWeight,
		SmokeWeight:    t.Scoring.SmokeWeight,
		WindWeight:     t.Scoring.WindWeight,
		TempDamping:    domain.Sigmoid{Pivot: t.Scoring.TempDamping.Pivot, Steepness: t.Scoring.TempDamping.Steepness},
		SmokeDamping:   domain.Sigmoid{Pivot: t.Scoring.SmokeDamping.Pivot, Steepness: t.Scoring.SmokeDamping.Steepness},
		WindRisk:       domain.Sigmoid{Pivot: t.Scoring.WindRisk.Pivot, Steepness: t.Scoring.WindRisk.Steepness},
		WindDivisor:    t.Scoring.WindDivisor,
		AlertThreshold: t.Scoring.AlertThreshold,
		ResetThreshold: t.Scoring.ResetThreshold,
		WindMode:       domain.WindMode(t.Scoring.WindMode),
		EmissionMode:   domain.EmissionMode(t.Scoring.EmissionMode),
	}
	if err := sp.Validate(); err != nil {
		return domain.ConditionerConfig{}, domain.ScoringPolicy{}, err
	}

	return cc, sp, nil
}
