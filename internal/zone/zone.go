package zone

import (
	"sync"

	"github.com/Phani347-06/crowdsense-core/internal/infrastructure/config"
)

// Category classifies a zone's usage pattern, which selects its
// time-of-day activity curve.
type Category string

const (
	CategorySocial   Category = "social"
	CategoryStudy    Category = "study"
	CategoryAcademic Category = "academic"
)

// Zone is a monitored area of the campus.
//
// Identity, base density, and category are static configuration.
// Capacity is the one mutable field; operators adjust it at runtime
// when a space is partially closed or extended.
type Zone struct {
	ID          string
	Name        string
	Capacity    int
	BaseDensity int
	Category    Category
	CoordX      float64
	CoordY      float64
}

// Registry holds the configured zones and serves them to the rest of
// the system.
//
// Thread Safety:
//   - All methods are safe for concurrent use. Capacity updates take the
//     write lock; reads return copies.
type Registry struct {
	mu    sync.RWMutex
	zones map[string]*Zone
	order []string
}

// NewRegistry builds a Registry from zone configuration.
// Zone order follows the configuration file.
func NewRegistry(cfgs []config.ZoneConfig) *Registry {
	r := &Registry{
		zones: make(map[string]*Zone, len(cfgs)),
		order: make([]string, 0, len(cfgs)),
	}
	for _, zc := range cfgs {
		r.zones[zc.ID] = &Zone{
			ID:          zc.ID,
			Name:        zc.Name,
			Capacity:    zc.Capacity,
			BaseDensity: zc.BaseDensity,
			Category:    Category(zc.Category),
			CoordX:      zc.CoordX,
			CoordY:      zc.CoordY,
		}
		r.order = append(r.order, zc.ID)
	}
	return r
}

// Get returns a copy of the zone with the given ID.
func (r *Registry) Get(id string) (Zone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	z, ok := r.zones[id]
	if !ok {
		return Zone{}, ErrZoneNotFound
	}
	return *z, nil
}

// All returns copies of every zone in configuration order.
func (r *Registry) All() []Zone {
	r.mu.RLock()
	defer r.mu.RUnlock()

	zones := make([]Zone, 0, len(r.order))
	for _, id := range r.order {
		zones = append(zones, *r.zones[id])
	}
	return zones
}

// UpdateCapacity sets a new capacity for the zone.
// Capacity must be positive.
func (r *Registry) UpdateCapacity(id string, capacity int) error {
	if capacity <= 0 {
		return ErrInvalidCapacity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	z, ok := r.zones[id]
	if !ok {
		return ErrZoneNotFound
	}
	z.Capacity = capacity
	return nil
}

// Count returns the number of configured zones.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.zones)
}
