package domain

import "math"

// statsEpsilon floors the sample standard deviation so z-scores stay finite
// on constant channels (a dead sensor or a perfectly calm day).
const statsEpsilon = 1e-6

// channelStats holds per-channel batch statistics, computed once per scoring
// call so the thresholds do not drift as readings are scanned.
type channelStats struct {
	mean float64
	std  float64
}

// computeStats returns the mean and sample standard deviation (N-1 divisor)
// of one channel. Batches with fewer than two samples have no defined spread
// and get the epsilon floor directly.
func computeStats(values []float64) channelStats {
	if len(values) == 0 {
		return channelStats{mean: 0, std: statsEpsilon}
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	std := statsEpsilon
	if len(values) > 1 {
		var sq float64
		for _, v := range values {
			d := v - mean
			sq += d * d
		}
		std = math.Sqrt(sq / float64(len(values)-1))
		if std < statsEpsilon {
			std = statsEpsilon
		}
	}

	return channelStats{mean: mean, std: std}
}
