// Package occupancy simulates smoothed per-zone crowd counts.
//
// Each zone carries a continuous value that chases a schedule-driven
// target with inertia, plus bounded noise and occasional small bursts.
// The integer samples feed the surge detector and risk scorer.
package occupancy

import (
	"math/rand"
	"sync"

	"github.com/Phani347-06/crowdsense-core/internal/zone"
)

// Tuning constants for the state machine.
const (
	// initialFraction seeds each zone at a fraction of its base density
	// so startup does not begin from zero.
	initialFraction = 0.10

	// fastGapThreshold is the absolute distance to target above which the
	// fast adjustment speed applies.
	fastGapThreshold = 20.0

	fastSpeed = 0.15
	slowSpeed = 0.05

	// noiseAmplitude bounds the per-tick micro-fluctuation.
	noiseAmplitude = 1.5

	// burstChance is the per-tick probability of a small extra influx.
	burstChance = 0.05
	burstMin    = 2.0
	burstMax    = 5.0

	// targetJitterMin/Max randomise the target for day-to-day variance.
	targetJitterMin = 0.9
	targetJitterMax = 1.1

	// overCapacityLimit caps the value at a safety buffer above capacity.
	overCapacityLimit = 1.5

	// historyCap bounds the per-zone sample ring.
	historyCap = 100
)

// state is the per-zone continuous value and its sample history.
type state struct {
	value   float64
	history []int
}

// Machine evolves occupancy for a set of zones.
//
// The random source is injectable so tests can run deterministically.
//
// Thread Safety:
//   - Step and History are safe for concurrent use; the engine calls
//     Step from a single goroutine in practice.
type Machine struct {
	mu     sync.Mutex
	rng    *rand.Rand
	states map[string]*state
}

// NewMachine creates a Machine seeded at initialFraction of each zone's
// base density.
func NewMachine(zones []zone.Zone, rng *rand.Rand) *Machine {
	m := &Machine{
		rng:    rng,
		states: make(map[string]*state, len(zones)),
	}
	for _, z := range zones {
		m.states[z.ID] = &state{
			value: float64(z.BaseDensity) * initialFraction,
		}
	}
	return m
}

// Step advances one zone by one tick and returns the new device count.
//
// The target is base density scaled by the global and zone activity
// factors with uniform jitter. The value moves toward the target at the
// fast speed when the gap exceeds fastGapThreshold, otherwise the slow
// speed, then picks up noise and the occasional burst. The result is
// clamped to [0, overCapacityLimit * capacity].
func (m *Machine) Step(z zone.Zone, globalFactor, zoneFactor float64) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.states[z.ID]
	if !ok {
		s = &state{value: float64(z.BaseDensity) * initialFraction}
		m.states[z.ID] = s
	}

	target := float64(z.BaseDensity) * globalFactor * zoneFactor *
		m.uniform(targetJitterMin, targetJitterMax)

	diff := target - s.value
	speed := slowSpeed
	if diff > fastGapThreshold || diff < -fastGapThreshold {
		speed = fastSpeed
	}
	next := s.value + diff*speed

	noise := m.uniform(-noiseAmplitude, noiseAmplitude)
	if m.rng.Float64() < burstChance {
		noise += m.uniform(burstMin, burstMax)
	}
	next += noise

	if next < 0 {
		next = 0
	}
	if limit := float64(z.Capacity) * overCapacityLimit; next > limit {
		next = limit
	}

	s.value = next
	count := int(next)

	s.history = append(s.history, count)
	if len(s.history) > historyCap {
		s.history = s.history[len(s.history)-historyCap:]
	}

	return count
}

// History returns a copy of the zone's sample history, oldest first.
func (m *Machine) History(zoneID string) []int {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.states[zoneID]
	if !ok {
		return nil
	}
	out := make([]int, len(s.history))
	copy(out, s.history)
	return out
}

// Current returns the latest integer count for the zone, or 0 if the
// zone has not ticked yet.
func (m *Machine) Current(zoneID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.states[zoneID]
	if !ok || len(s.history) == 0 {
		return 0
	}
	return s.history[len(s.history)-1]
}

func (m *Machine) uniform(min, max float64) float64 {
	return min + m.rng.Float64()*(max-min)
}
