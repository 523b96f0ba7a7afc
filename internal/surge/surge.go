// Package surge detects abnormal occupancy growth in a zone's recent
// sample history.
package surge

import "math"

const (
	// minSamples is the minimum history length before detection runs.
	minSamples = 5

	// zScoreSamples is the history length required for z-score detection.
	zScoreSamples = 10

	// zScoreThreshold flags the latest sample as a statistical outlier.
	zScoreThreshold = 2.5

	// growthThreshold flags sustained growth between the two windows.
	growthThreshold = 0.30
)

// Detect reports whether the history shows a surge and returns the
// growth rate between the last five samples and the five before them.
//
// Two signals can flag a surge:
//   - the latest sample sits more than 2.5 standard deviations above
//     the history mean (requires at least ten samples), or
//   - the recent-window mean exceeds the older-window mean by more
//     than 30%.
//
// With fewer than five samples the history is too short to judge and
// Detect returns (false, 0).
func Detect(history []int) (bool, float64) {
	if len(history) < minSamples {
		return false, 0.0
	}

	recent := history[len(history)-5:]
	var older []int
	if len(history) >= 10 {
		older = history[len(history)-10 : len(history)-5]
	} else {
		older = history[:5]
	}

	avgRecent := mean(recent)
	avgOlder := mean(older)

	growthRate := (avgRecent - avgOlder) / math.Max(avgOlder, 1)

	if len(history) >= zScoreSamples {
		meanAll := mean(history)
		stdAll := stddev(history, meanAll)
		if stdAll > 0 {
			z := (float64(history[len(history)-1]) - meanAll) / stdAll
			if z > zScoreThreshold {
				return true, growthRate
			}
		}
	}

	if growthRate > growthThreshold {
		return true, growthRate
	}

	return false, growthRate
}

func mean(samples []int) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum int
	for _, s := range samples {
		sum += s
	}
	return float64(sum) / float64(len(samples))
}

// stddev is the population standard deviation.
func stddev(samples []int, mean float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		d := float64(s) - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(samples)))
}
