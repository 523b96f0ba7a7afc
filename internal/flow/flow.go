// Package flow estimates directed crowd movement between zones.
//
// The model is a density gradient: people drift from crowded zones
// toward emptier ones, with a time-of-day multiplier for how mobile the
// campus is. Each tick's edges enter a short smoothing window; the
// published set is either the latest tick or a per-edge average over
// the window, selected by configuration.
package flow

import (
	"math"
	"sync"
)

// Smoothing strategies.
const (
	SmoothingLatest  = "latest"
	SmoothingAverage = "average"
)

const (
	// smoothingWindow is the number of tick-sets kept for smoothing.
	smoothingWindow = 5

	// baseMobilityRate is the fraction of a zone's people in motion on a
	// normal hour; the time multiplier scales it.
	baseMobilityRate = 0.05

	// Volume label thresholds on intensity.
	highVolumeThreshold   = 0.7
	mediumVolumeThreshold = 0.3
)

// ZoneState is the per-zone input to the estimator for one tick.
type ZoneState struct {
	ID        string
	Name      string
	Current   int
	Capacity  int
	EstPeople int
}

// Edge is one directed movement between two zones.
type Edge struct {
	From      string  `json:"from"`
	FromName  string  `json:"from_name"`
	To        string  `json:"to"`
	ToName    string  `json:"to_name"`
	People    int     `json:"people"`
	Intensity float64 `json:"intensity"`
	Volume    string  `json:"volume"`
}

// Estimator computes and smooths flow edges.
//
// Thread Safety:
//   - Calculate and Smoothed are safe for concurrent use.
type Estimator struct {
	mu        sync.Mutex
	smoothing string
	window    [][]Edge
}

// NewEstimator creates an Estimator with the given smoothing strategy
// (SmoothingLatest or SmoothingAverage).
func NewEstimator(smoothing string) *Estimator {
	return &Estimator{smoothing: smoothing}
}

// Calculate computes the flow set for one tick, pushes it into the
// smoothing window, and returns the smoothed result.
func (e *Estimator) Calculate(zones []ZoneState, hour int) []Edge {
	edges := e.computeEdges(zones, hour)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.window = append(e.window, edges)
	if len(e.window) > smoothingWindow {
		e.window = e.window[1:]
	}

	return e.smoothedLocked()
}

// Smoothed returns the current smoothed flow set without advancing the
// window.
func (e *Estimator) Smoothed() []Edge {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.smoothedLocked()
}

func (e *Estimator) smoothedLocked() []Edge {
	if len(e.window) == 0 {
		return nil
	}
	latest := e.window[len(e.window)-1]
	if e.smoothing != SmoothingAverage {
		return cloneEdges(latest)
	}

	// Average people and intensity per edge over the window, keeping
	// only edges present in the latest tick.
	type acc struct {
		people    int
		intensity float64
		count     int
	}
	sums := make(map[[2]string]*acc)
	for _, set := range e.window {
		for _, edge := range set {
			key := [2]string{edge.From, edge.To}
			a := sums[key]
			if a == nil {
				a = &acc{}
				sums[key] = a
			}
			a.people += edge.People
			a.intensity += edge.Intensity
			a.count++
		}
	}

	out := make([]Edge, 0, len(latest))
	for _, edge := range latest {
		a := sums[[2]string{edge.From, edge.To}]
		avg := edge
		avg.People = a.people / a.count
		avg.Intensity = round2(a.intensity / float64(a.count))
		avg.Volume = volumeLabel(avg.Intensity)
		out = append(out, avg)
	}
	return out
}

// computeEdges runs the density-gradient model for one tick.
func (e *Estimator) computeEdges(zones []ZoneState, hour int) []Edge {
	timeFactor := 1.0
	switch {
	case hour >= 12 && hour <= 14:
		timeFactor = 1.5
	case hour >= 20 || hour < 7:
		timeFactor = 0.3
	}

	densities := make(map[string]float64, len(zones))
	for _, z := range zones {
		densities[z.ID] = float64(z.Current) / math.Max(float64(z.Capacity), 1)
	}

	var edges []Edge
	for _, src := range zones {
		srcDensity := densities[src.ID]

		type candidate struct {
			dst   ZoneState
			score float64
		}
		var candidates []candidate
		var totalScore float64

		for _, dst := range zones {
			if dst.ID == src.ID {
				continue
			}
			score := srcDensity - densities[dst.ID]
			if score > 0 {
				candidates = append(candidates, candidate{dst: dst, score: score})
				totalScore += score
			}
		}
		if totalScore == 0 {
			continue
		}

		for _, c := range candidates {
			prob := c.score / totalScore
			mobility := baseMobilityRate * timeFactor
			moving := int(float64(src.EstPeople) * prob * mobility)
			if moving < 1 {
				continue
			}

			intensity := round2(math.Min(c.score*2*timeFactor, 1.0))
			edges = append(edges, Edge{
				From:      src.ID,
				FromName:  src.Name,
				To:        c.dst.ID,
				ToName:    c.dst.Name,
				People:    moving,
				Intensity: intensity,
				Volume:    volumeLabel(intensity),
			})
		}
	}
	return edges
}

func volumeLabel(intensity float64) string {
	switch {
	case intensity > highVolumeThreshold:
		return "High"
	case intensity > mediumVolumeThreshold:
		return "Medium"
	default:
		return "Low"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func cloneEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}
