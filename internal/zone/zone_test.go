package zone

import (
	"errors"
	"testing"

	"github.com/Phani347-06/crowdsense-core/internal/infrastructure/config"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry([]config.ZoneConfig{
		{ID: "canteen", Name: "Student Canteen", Capacity: 200, BaseDensity: 100, Category: "social"},
		{ID: "lib", Name: "Main Library", Capacity: 500, BaseDensity: 250, Category: "study"},
		{ID: "dblock", Name: "D Block", Capacity: 400, BaseDensity: 200, Category: "academic"},
	})
}

func TestRegistry_Get(t *testing.T) {
	r := testRegistry(t)

	z, err := r.Get("canteen")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if z.Name != "Student Canteen" || z.Capacity != 200 || z.Category != CategorySocial {
		t.Errorf("Get() = %+v, unexpected fields", z)
	}

	if _, err := r.Get("nowhere"); !errors.Is(err, ErrZoneNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrZoneNotFound", err)
	}
}

func TestRegistry_All_PreservesOrder(t *testing.T) {
	r := testRegistry(t)

	zones := r.All()
	if len(zones) != 3 {
		t.Fatalf("All() returned %d zones, want 3", len(zones))
	}
	wantOrder := []string{"canteen", "lib", "dblock"}
	for i, want := range wantOrder {
		if zones[i].ID != want {
			t.Errorf("All()[%d].ID = %q, want %q", i, zones[i].ID, want)
		}
	}
}

func TestRegistry_UpdateCapacity(t *testing.T) {
	r := testRegistry(t)

	if err := r.UpdateCapacity("lib", 350); err != nil {
		t.Fatalf("UpdateCapacity() error = %v", err)
	}
	z, _ := r.Get("lib")
	if z.Capacity != 350 {
		t.Errorf("capacity after update = %d, want 350", z.Capacity)
	}

	if err := r.UpdateCapacity("lib", 0); !errors.Is(err, ErrInvalidCapacity) {
		t.Errorf("UpdateCapacity(0) error = %v, want ErrInvalidCapacity", err)
	}
	if err := r.UpdateCapacity("nowhere", 100); !errors.Is(err, ErrZoneNotFound) {
		t.Errorf("UpdateCapacity(unknown) error = %v, want ErrZoneNotFound", err)
	}
}

func TestRegistry_GetReturnsCopy(t *testing.T) {
	r := testRegistry(t)

	z, _ := r.Get("canteen")
	z.Capacity = 1

	fresh, _ := r.Get("canteen")
	if fresh.Capacity != 200 {
		t.Error("mutating a returned zone must not affect the registry")
	}
}
