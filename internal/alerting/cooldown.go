package alerting

import (
	"sync"
	"time"
)

// cooldownState is the per-key state machine phase.
type cooldownState int

const (
	// stateQuiet means the key may fire.
	stateQuiet cooldownState = iota
	// stateCoolingDown means the key fired recently and is suppressed.
	stateCoolingDown
)

type cooldownKey struct {
	zoneID string
	event  EventType
}

type cooldownEntry struct {
	state   cooldownState
	firedAt time.Time
}

// CooldownTracker suppresses repeat firings of the same (zone, event)
// pair inside the cooldown window.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type CooldownTracker struct {
	mu      sync.Mutex
	window  time.Duration
	entries map[cooldownKey]*cooldownEntry

	// now is injectable for tests.
	now func() time.Time
}

// NewCooldownTracker creates a tracker with the given suppression window.
func NewCooldownTracker(window time.Duration) *CooldownTracker {
	return &CooldownTracker{
		window:  window,
		entries: make(map[cooldownKey]*cooldownEntry),
		now:     time.Now,
	}
}

// TryFire reports whether the (zone, event) key may fire now. A true
// result transitions the key to cooling-down and starts its window; a
// false result leaves the existing window running.
func (t *CooldownTracker) TryFire(zoneID string, event EventType) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := cooldownKey{zoneID: zoneID, event: event}
	now := t.now()

	entry, ok := t.entries[key]
	if !ok {
		t.entries[key] = &cooldownEntry{state: stateCoolingDown, firedAt: now}
		return true
	}

	// Expired windows fall back to quiet.
	if entry.state == stateCoolingDown && now.Sub(entry.firedAt) >= t.window {
		entry.state = stateQuiet
	}

	if entry.state == stateCoolingDown {
		return false
	}

	entry.state = stateCoolingDown
	entry.firedAt = now
	return true
}

// Remaining returns how much of the suppression window is left for a
// key, or zero if the key is quiet.
func (t *CooldownTracker) Remaining(zoneID string, event EventType) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[cooldownKey{zoneID: zoneID, event: event}]
	if !ok || entry.state != stateCoolingDown {
		return 0
	}
	remaining := t.window - t.now().Sub(entry.firedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}
