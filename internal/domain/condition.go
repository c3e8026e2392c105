package domain

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// ConditionerConfig carries the signal-conditioning tunables. Zero values are
// not usable; start from DefaultConditionerConfig and override.
type ConditionerConfig struct {
	// Window and PolyOrder parameterize the Savitzky-Golay smoother. Window
	// must be odd and greater than PolyOrder.
	Window    int
	PolyOrder int

	// SuppressSpikes enables the pre-smoothing removal of isolated
	// single-sample peaks and dips.
	SuppressSpikes bool

	// Per-channel suppression thresholds. Temperature and smoke differ by
	// orders of magnitude in dynamic range, so they cannot share one value.
	TempSpikeThreshold  float64
	SmokeSpikeThreshold float64
}

// DefaultConditionerConfig returns the production tuning: a 13-sample
// quadratic smoother with spike suppression on.
func DefaultConditionerConfig() ConditionerConfig {
	return ConditionerConfig{
		Window:              13,
		PolyOrder:           2,
		SuppressSpikes:      true,
		TempSpikeThreshold:  10.0,
		SmokeSpikeThreshold: 0.6,
	}
}

// Validate checks the config invariants.
func (c ConditionerConfig) Validate() error {
	if c.Window < 1 || c.Window%2 == 0 {
		return fmt.Errorf("conditioner: window %d must be odd and positive", c.Window)
	}
	if c.PolyOrder < 0 || c.PolyOrder >= c.Window {
		return fmt.Errorf("conditioner: poly order %d must be in [0, %d)", c.PolyOrder, c.Window)
	}
	if c.SuppressSpikes && (c.TempSpikeThreshold <= 0 || c.SmokeSpikeThreshold <= 0) {
		return fmt.Errorf("conditioner: spike thresholds must be positive when suppression is enabled")
	}
	return nil
}

// Conditioner orders and denoises raw sensor batches: chronological sort,
// optional spike suppression, Savitzky-Golay smoothing per channel, and
// physical clipping of the smoke channel.
type Conditioner struct {
	cfg    ConditionerConfig
	filter *savgolFilter
}

// NewConditioner builds a conditioner, precomputing the smoothing weights.
func NewConditioner(cfg ConditionerConfig) (*Conditioner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	filter, err := newSavgolFilter(cfg.Window, cfg.PolyOrder)
	if err != nil {
		return nil, err
	}
	return &Conditioner{cfg: cfg, filter: filter}, nil
}

// Condition returns the conditioned batch in chronological order. The input
// slice is never mutated. An empty batch conditions to an empty batch; a
// malformed timestamp fails the whole call.
func (c *Conditioner) Condition(readings []Reading) ([]Reading, error) {
	if len(readings) == 0 {
		return []Reading{}, nil
	}

	sorted, err := sortChronologically(readings)
	if err != nil {
		return nil, err
	}

	temps := make([]float64, len(sorted))
	smokes := make([]float64, len(sorted))
	for i, r := range sorted {
		temps[i] = r.Temperature
		smokes[i] = r.Smoke
	}

	if c.cfg.SuppressSpikes {
		suppressSpikes(temps, c.cfg.TempSpikeThreshold)
		suppressSpikes(smokes, c.cfg.SmokeSpikeThreshold)
	}

	temps = c.filter.Apply(temps)
	smokes = c.filter.Apply(smokes)

	conditioned := make([]Reading, len(sorted))
	for i, r := range sorted {
		// Smoothing can overshoot near sharp transitions; smoke is physically
		// bounded so the conditioned signal must stay in [0, 1]. Temperature
		// is left unclipped (see the package doc).
		smoke := math.Min(MaxSmoke, math.Max(MinSmoke, smokes[i]))
		conditioned[i] = Reading{
			Timestamp:   r.Timestamp,
			Temperature: roundTo(temps[i], 2),
			Smoke:       roundTo(smoke, 4),
			Wind:        r.Wind,
		}
	}
	return conditioned, nil
}

// sortChronologically stable-sorts a copy of the batch by parsed timestamp.
// Every timestamp is parsed up front so a malformed one fails fast instead of
// corrupting the order.
func sortChronologically(readings []Reading) ([]Reading, error) {
	type keyed struct {
		at time.Time
		r  Reading
	}
	keys := make([]keyed, len(readings))
	for i, r := range readings {
		at, err := ParseTimestamp(r.Timestamp)
		if err != nil {
			return nil, err
		}
		keys[i] = keyed{at: at, r: r}
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].at.Before(keys[j].at)
	})

	sorted := make([]Reading, len(keys))
	for i, k := range keys {
		sorted[i] = k.r
	}
	return sorted, nil
}

// suppressSpikes replaces, in place, interior samples that exceed both
// neighbors (or are exceeded by both) by more than threshold with the mean of
// the neighbors. Boundary samples are never touched: with context on one side
// only, noise cannot be told apart from a genuine edge transient. The scan
// reads already-corrected neighbors, so a corrected sample takes part in the
// next comparison.
func suppressSpikes(signal []float64, threshold float64) {
	if len(signal) < 3 {
		return
	}
	for i := 1; i < len(signal)-1; i++ {
		prev, curr, next := signal[i-1], signal[i], signal[i+1]

		isPeak := curr-prev > threshold && curr-next > threshold
		isDip := prev-curr > threshold && next-curr > threshold

		if isPeak || isDip {
			signal[i] = (prev + next) / 2.0
		}
	}
}

// roundTo rounds half away from zero to the given number of decimals.
func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
