// Command genreadings generates the synthetic site recordings used by the
// detection test suites. Each dataset is written as a raw-readings envelope
// and then scored with the actual domain package, so the printed stats match
// real pipeline behavior and can be pasted into test assertions.
//
// Usage:
//
//	go run ./cmd/genreadings -out data/mock
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/cinderwatch/wildfire-detect-service/internal/domain"
)

var baseTime = time.Date(2026, time.July, 14, 10, 0, 0, 0, time.UTC)

const readingsPerSite = 120

// dataset describes one synthetic recording: two hours of per-minute samples
// whose channels are a pure function of the sample index, so regenerating
// produces byte-identical fixtures.
type dataset struct {
	name   string
	siteID string
	at     func(i int) (temperature, smoke, wind float64)
}

var datasets = []dataset{
	{
		// Stable meadow telemetry with small periodic wobbles. Nothing fires.
		name:   "calm_day",
		siteID: "site-meadow-2",
		at: func(i int) (float64, float64, float64) {
			temperature := roundTo(22.0+(float64(i%7)-3.0)*0.05, 2)
			wind := roundTo(2.0+float64(i%5)*0.2, 2)
			return temperature, 0.02, wind
		},
	},
	{
		// Two separated burn plateaus over a cold baseline. Hysteresis should
		// open exactly one incident per plateau.
		name:   "flat_rise_twice",
		siteID: "site-ridge-7",
		at: func(i int) (float64, float64, float64) {
			if (i >= 30 && i < 55) || (i >= 75 && i < 100) {
				return 95.0, 0.85, 3.0
			}
			return 15.0, 0.02, 3.0
		},
	},
	{
		// A slow linear temperature climb under sustained high wind. The peak
		// score must stay just below the alert threshold.
		name:   "slow_rise_windy",
		siteID: "site-canyon-3",
		at: func(i int) (float64, float64, float64) {
			return roundTo(18.0+float64(i)*40.0/119.0, 4), 0.03, 14.0
		},
	},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "data/mock", "output directory for dataset fixtures")
	flag.Parse()

	for _, ds := range datasets {
		env := buildEnvelope(ds)
		path := filepath.Join(*outDir, ds.name+".json")
		if err := writeJSON(path, env); err != nil {
			return fmt.Errorf("writing %s: %w", ds.name, err)
		}
		log.Printf("wrote %s: %d readings", path, len(env.Readings))
	}

	return printStats()
}

func buildEnvelope(ds dataset) domain.BatchEnvelope {
	readings := make([]domain.Reading, 0, readingsPerSite)
	for i := 0; i < readingsPerSite; i++ {
		temperature, smoke, wind := ds.at(i)
		readings = append(readings, domain.Reading{
			Timestamp:   baseTime.Add(time.Duration(i) * time.Minute).Format(time.RFC3339),
			Temperature: temperature,
			Smoke:       smoke,
			Wind:        wind,
		})
	}
	return domain.BatchEnvelope{SiteID: ds.siteID, Readings: readings}
}

// printStats scores every dataset under both emission policies.
func printStats() error {
	incident, err := domain.NewDefaultDetector()
	if err != nil {
		return err
	}

	policy := domain.DefaultScoringPolicy()
	policy.EmissionMode = domain.EmitPerReading
	perReading, err := domain.NewDetector(domain.DefaultConditionerConfig(), policy, nil)
	if err != nil {
		return err
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	for _, ds := range datasets {
		env := buildEnvelope(ds)

		incidents, err := incident.Detect(env.Readings)
		if err != nil {
			return fmt.Errorf("scoring %s: %w", ds.name, err)
		}
		perSample, err := perReading.Detect(env.Readings)
		if err != nil {
			return fmt.Errorf("scoring %s: %w", ds.name, err)
		}

		fmt.Printf("\n%s (%s):\n", ds.name, ds.siteID)
		fmt.Printf("  window: %s .. %s\n",
			env.Readings[0].Timestamp, env.Readings[len(env.Readings)-1].Timestamp)
		fmt.Printf("  per-incident: events=%d, max=%.1f\n", incidents.EventCount, incidents.MaxScore)
		for _, e := range incidents.Events {
			fmt.Printf("    onset %s score=%.1f\n", e.Timestamp, e.Score)
		}
		fmt.Printf("  per-reading: events=%d, max=%.1f\n", perSample.EventCount, perSample.MaxScore)
	}
	return nil
}

// roundTo rounds half away from zero, matching the conditioner's output
// rounding, so regenerated channel values are bit-stable.
func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
