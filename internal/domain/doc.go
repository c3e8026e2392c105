// Package domain models multi-sensor wildfire telemetry and implements the
// two-stage analytical core: signal conditioning and anomaly scoring.
//
// # Sensor Model
//
// A Reading is one timestamped sample from a three-channel sensor site:
//
//	temperature  °C, valid range [-50, 100]
//	smoke        particulate fraction, valid range [0, 1]
//	wind         m/s, non-negative
//
// Timestamps are ISO-8601 strings; a trailing "Z" is read as UTC. Field
// ranges are enforced at the service boundary (HTTP schema, envelope
// validation) before a batch reaches the core. The core assumes validated
// input and only re-parses timestamps, which it needs for chronological
// ordering.
//
// # Conditioning
//
// Condition sorts a batch chronologically, optionally suppresses isolated
// single-sample spikes (interior samples exceeding both neighbors by a
// per-channel threshold are replaced with the neighbor mean), smooths the
// temperature and smoke channels with a Savitzky-Golay least-squares filter,
// and clips the smoothed smoke back into [0, 1]. Temperature is deliberately
// not clipped: the sensors report down to -50°C and flooring at zero would
// corrupt valid cold-weather data. Conditioned temperatures are rounded to
// 2 decimals and smoke to 4, so outputs are stable under re-runs.
//
// Batches shorter than the smoothing window pass through unsmoothed; the
// filter is undefined below its window size and identity is the safe
// fallback.
//
// # Scoring
//
// Score computes per-channel batch statistics once (mean and sample standard
// deviation, floored to keep constant channels finite), maps each reading's
// one-sided z-score through a folded normal CDF into a [0,1] severity, scales
// it by a variance-confidence damping sigmoid, adds or multiplies in a wind
// term depending on policy, and clamps the weighted sum into a [0,100] risk
// score. Events are emitted per qualifying reading, or once per incident when
// hysteresis is enabled (see incidentState).
//
// All tunables live in ConditionerConfig and ScoringPolicy; the algorithms
// themselves have no alternate code paths.
//
// # Report IDs
//
// Report IDs are deterministic SHA-256 hashes of site, window bounds,
// reading count, and max score. Reprocessing the same raw batch produces the
// same ID, which lets downstream consumers and the pipeline's dedupe guard
// treat redelivery as a no-op.
package domain
