// Package risk computes the Crowd Risk Index (CRI) and maps it to a
// risk level. The level thresholds live here so the scorer, the alert
// engine, and the API all share one ladder.
package risk

import "math"

// Level is a zone's qualitative risk band.
type Level string

const (
	LevelLow      Level = "LOW"
	LevelModerate Level = "MODERATE"
	LevelHigh     Level = "HIGH"
	LevelCritical Level = "CRITICAL"
)

// CRI thresholds for the risk ladder.
const (
	ThresholdCritical = 85
	ThresholdHigh     = 70
	ThresholdModerate = 50
)

// Component weights and caps for the CRI formula.
const (
	densityWeight   = 60
	predictedWeight = 20
	growthWeight    = 10
	timeWeight      = 10

	densityRatioCap   = 2.0
	predictedRatioCap = 1.5
)

// Score computes the Crowd Risk Index on a 0-100 scale.
//
// The weighted formula is 60% current density ratio, 20% predicted
// density ratio, 10% growth rate, and 10% time-of-day risk. Two hard
// overrides keep the index honest at the top end: a zone at or over
// capacity scores at least 85 (critical), and a zone at 90% of
// capacity scores at least 75.
func Score(current, capacity, predicted int, growthRate float64, hour int) int {
	cap64 := math.Max(float64(capacity), 1)

	densityRatio := math.Min(float64(current)/cap64, densityRatioCap)
	predictedRatio := math.Min(float64(predicted)/cap64, predictedRatioCap)

	growth := math.Min(math.Max(growthRate, 0), 1)

	cri := densityRatio*densityWeight +
		predictedRatio*predictedWeight +
		growth*growthWeight +
		timeRisk(hour)*timeWeight

	if current >= capacity {
		cri = math.Max(cri, 85)
	} else if float64(current) >= float64(capacity)*0.9 {
		cri = math.Max(cri, 75)
	}

	rounded := int(math.Round(cri))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

// timeRisk is the time-of-day risk factor: highest over lunch, raised
// through the class blocks either side of it, low outside opening hours.
func timeRisk(hour int) float64 {
	switch {
	case hour >= 12 && hour <= 14:
		return 0.8
	case (hour >= 9 && hour <= 11) || (hour > 14 && hour <= 16):
		return 0.5
	case hour < 8 || hour > 19:
		return 0.1
	default:
		return 0.3
	}
}

// LevelFor maps a CRI to its risk level.
func LevelFor(cri int) Level {
	switch {
	case cri >= ThresholdCritical:
		return LevelCritical
	case cri >= ThresholdHigh:
		return LevelHigh
	case cri >= ThresholdModerate:
		return LevelModerate
	default:
		return LevelLow
	}
}
