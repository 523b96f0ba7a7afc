package forecast

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/Phani347-06/crowdsense-core/internal/zone"
)

func testInputs() Inputs {
	return Inputs{
		Zone: zone.Zone{
			ID:          "canteen",
			Capacity:    200,
			BaseDensity: 100,
			Category:    zone.CategorySocial,
		},
		Hour:         13,
		Minute:       0,
		Weekday:      time.Tuesday,
		Current:      120,
		GlobalFactor: 0.95,
	}
}

// stubPredictor returns a fixed value or error.
type stubPredictor struct {
	value int
	err   error
}

func (s *stubPredictor) Predict(_ context.Context, _ Inputs) (int, error) {
	return s.value, s.err
}

func TestFallback_Predict(t *testing.T) {
	f := NewFallback(rand.New(rand.NewSource(1)))
	in := testInputs()

	got, err := f.Predict(context.Background(), in)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	// base 100 * global 0.95 * social lunch spike 3.0 * jitter [0.9, 1.15]
	// = [256, 327]
	if got < 250 || got > 330 {
		t.Errorf("Predict() = %d, want lunch-peak range", got)
	}
}

func TestFallback_QuietHours(t *testing.T) {
	f := NewFallback(rand.New(rand.NewSource(2)))
	in := testInputs()
	in.Hour = 3

	got, _ := f.Predict(context.Background(), in)
	// base 100 * global 0.1 * social 0.1 = ~1
	if got > 5 {
		t.Errorf("night Predict() = %d, want near zero", got)
	}
}

func TestDamped_BlendsModelOutput(t *testing.T) {
	model := &stubPredictor{value: 200}
	d := NewDamped(model, NewFallback(rand.New(rand.NewSource(3))))
	in := testInputs()

	got, err := d.Predict(context.Background(), in)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	// scaled = 200 * 0.95 = 190; blended = 120*0.7 + 190*0.3 = 141
	if got < 140 || got > 141 {
		t.Errorf("Predict() = %d, want ~141", got)
	}
}

func TestDamped_ScaleFloor(t *testing.T) {
	model := &stubPredictor{value: 200}
	d := NewDamped(model, NewFallback(rand.New(rand.NewSource(4))))
	in := testInputs()
	in.GlobalFactor = 0.01 // below the 0.15 floor

	got, _ := d.Predict(context.Background(), in)
	// scaled = 200 * 0.15 = 30; blended = 120*0.7 + 30*0.3 = 93
	if got < 92 || got > 93 {
		t.Errorf("Predict() = %d, want ~93", got)
	}
}

func TestDamped_ClampsToCapacityLimit(t *testing.T) {
	model := &stubPredictor{value: 100000}
	d := NewDamped(model, NewFallback(rand.New(rand.NewSource(5))))
	in := testInputs()

	got, _ := d.Predict(context.Background(), in)
	if want := int(200 * 1.2); got != want {
		t.Errorf("Predict() = %d, want clamp %d", got, want)
	}
}

func TestDamped_ModelErrorFallsBack(t *testing.T) {
	model := &stubPredictor{err: errors.New("model unavailable")}
	d := NewDamped(model, &stubPredictor{value: 42})
	in := testInputs()

	got, err := d.Predict(context.Background(), in)
	if err != nil {
		t.Fatalf("Predict() must not surface model errors, got %v", err)
	}
	if got != 42 {
		t.Errorf("Predict() = %d, want fallback 42", got)
	}
}

func TestDamped_NilModelUsesFallback(t *testing.T) {
	d := NewDamped(nil, &stubPredictor{value: 42})

	got, err := d.Predict(context.Background(), testInputs())
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if got != 42 {
		t.Errorf("Predict() = %d, want fallback 42", got)
	}
}
