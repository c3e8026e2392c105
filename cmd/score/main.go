// Command score runs the wildfire detector over a recorded readings file and
// prints the scoring summary. It accepts either a bare JSON array of readings
// or a site batch envelope, plus an optional YAML tuning profile, so a
// candidate profile can be checked against recorded telemetry before rollout.
//
// Usage:
//
//	go run ./cmd/score -in data/mock/flat_rise_twice.json
//	go run ./cmd/score -in readings.json -tuning profile.yaml -trace
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cinderwatch/wildfire-detect-service/internal/config"
	"github.com/cinderwatch/wildfire-detect-service/internal/domain"
)

func main() {
	in := flag.String("in", "", "path to a readings JSON file (array or site batch envelope)")
	tuningPath := flag.String("tuning", "", "optional YAML tuning profile")
	trace := flag.Bool("trace", false, "print the per-reading scoring breakdown")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*in, *tuningPath, *trace); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
}

func run(inPath, tuningPath string, trace bool) error {
	siteID, readings, err := loadReadings(inPath)
	if err != nil {
		return fmt.Errorf("load readings: %w", err)
	}
	if err := domain.ValidateBatch(readings); err != nil {
		return fmt.Errorf("validate readings: %w", err)
	}

	tuning, err := config.LoadTuning(tuningPath)
	if err != nil {
		return err
	}
	conditionerCfg, scoringPolicy, err := tuning.Configs()
	if err != nil {
		return err
	}

	table := &tableObserver{}
	var observer domain.ScoreObserver
	if trace {
		observer = table
	}

	detector, err := domain.NewDetector(conditionerCfg, scoringPolicy, observer)
	if err != nil {
		return err
	}

	summary, err := detector.Detect(readings)
	if err != nil {
		return fmt.Errorf("score readings: %w", err)
	}

	// ── Report ──
	if siteID != "" {
		fmt.Printf("site: %s\n", siteID)
	}
	fmt.Printf("readings: %d (%s .. %s)\n",
		len(readings), readings[0].Timestamp, readings[len(readings)-1].Timestamp)
	fmt.Printf("policy: emission=%s wind=%s alert=%.1f reset=%.1f\n",
		scoringPolicy.EmissionMode, scoringPolicy.WindMode,
		scoringPolicy.AlertThreshold, scoringPolicy.ResetThreshold)

	if trace {
		table.print(os.Stdout)
	}

	fmt.Printf("\nmax score: %.1f\n", summary.MaxScore)
	fmt.Printf("events: %d\n", summary.EventCount)
	for _, e := range summary.Events {
		fmt.Printf("  %s  score=%.1f\n", e.Timestamp, e.Score)
	}
	return nil
}

// loadReadings accepts either a bare JSON array of readings or a site batch
// envelope; envelopes also carry the site ID.
func loadReadings(path string) (string, []domain.Reading, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}

	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("[")) {
		var readings []domain.Reading
		if err := json.Unmarshal(data, &readings); err != nil {
			return "", nil, fmt.Errorf("parse readings array: %w", err)
		}
		return "", readings, nil
	}

	var env domain.BatchEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("parse batch envelope: %w", err)
	}
	return env.SiteID, env.Readings, nil
}

// ── Trace table ──

// tableObserver collects the per-reading breakdown during the scoring scan
// and prints it afterwards. Rows are conditioned values, not raw input.
type tableObserver struct {
	rows []domain.ReadingScore
}

func (o *tableObserver) ObserveScore(s domain.ReadingScore) {
	o.rows = append(o.rows, s)
}

func (o *tableObserver) print(w io.Writer) {
	fmt.Fprintf(w, "\n  idx  %-20s  %6s  %6s  %5s  %6s  %6s  %5s  %5s  %6s  %5s\n",
		"timestamp", "temp", "smoke", "wind", "temp_z", "smk_z", "sev_t", "sev_s", "wind_s", "risk")
	for _, r := range o.rows {
		marker := ""
		if r.Emitted {
			marker = "  ALERT"
		}
		fmt.Fprintf(w, "  %3d  %-20s  %6.2f  %6.4f  %5.1f  %6.2f  %6.2f  %5.3f  %5.3f  %6.3f  %5.1f%s\n",
			r.Index, r.Reading.Timestamp,
			r.Reading.Temperature, r.Reading.Smoke, r.Reading.Wind,
			r.TempZ, r.SmokeZ, r.TempSeverity, r.SmokeSeverity, r.WindScore,
			r.Risk, marker)
	}
}
