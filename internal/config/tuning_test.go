package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinderwatch/wildfire-detect-service/internal/domain"
)

func writeTuningFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestDefaultTuningMatchesDomainDefaults(t *testing.T) {
	cc, sp, err := DefaultTuning().Configs()
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultConditionerConfig(), cc)
	assert.Equal(t, domain.DefaultScoringPolicy(), sp)
}

func TestLoadTuning(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		tuning, err := LoadTuning("")
		require.NoError(t, err)
		assert.Equal(t, DefaultTuning(), tuning)
	})

	t.Run("partial profile overrides only named keys", func(t *testing.T) {
		path := writeTuningFile(t, `
conditioner:
  window: 9
scoring:
  alert_threshold: 80
  reset_threshold: 75
  emission_mode: per_reading
`)

		tuning, err := LoadTuning(path)
		require.NoError(t, err)

		cc, sp, err := tuning.Configs()
		require.NoError(t, err)

		assert.Equal(t, 9, cc.Window)
		assert.Equal(t, 2, cc.PolyOrder)
		assert.True(t, cc.SuppressSpikes)
		assert.Equal(t, 80.0, sp.AlertThreshold)
		assert.Equal(t, 75.0, sp.ResetThreshold)
		assert.Equal(t, domain.EmitPerReading, sp.EmissionMode)
		assert.Equal(t, 60.0, sp.TempWeight)
		assert.Equal(t, domain.Sigmoid{Pivot: 6.0, Steepness: 0.8}, sp.WindRisk)
	})

	t.Run("nested sigmoid override", func(t *testing.T) {
		path := writeTuningFile(t, `
scoring:
  smoke_damping:
    pivot: 0.05
    steepness: 15
`)

		tuning, err := LoadTuning(path)
		require.NoError(t, err)

		_, sp, err := tuning.Configs()
		require.NoError(t, err)
		assert.Equal(t, domain.Sigmoid{Pivot: 0.05, Steepness: 15}, sp.SmokeDamping)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := LoadTuning(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read tuning file")
	})

	t.Run("malformed YAML is an error", func(t *testing.T) {
		path := writeTuningFile(t, "conditioner: [not a map")
		_, err := LoadTuning(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse tuning file")
	})
}

func TestTuningConfigsValidation(t *testing.T) {
	t.Run("even window rejected", func(t *testing.T) {
		tuning := DefaultTuning()
		tuning.Conditioner.Window = 8

		_, _, err := tuning.Configs()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "window")
	})

	t.Run("inverted thresholds rejected", func(t *testing.T) {
		tuning := DefaultTuning()
		tuning.Scoring.ResetThreshold = 90

		_, _, err := tuning.Configs()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reset threshold")
	})

	t.Run("unknown emission mode rejected", func(t *testing.T) {
		tuning := DefaultTuning()
		tuning.Scoring.EmissionMode = "when-convenient"

		_, _, err := tuning.Configs()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "emission mode")
	})
}
