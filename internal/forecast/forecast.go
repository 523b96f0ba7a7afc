// Package forecast predicts near-term zone occupancy.
//
// A Predictor produces a raw density estimate; the Damped wrapper keeps
// any model honest by scaling it with the current activity level and
// blending it with the observed count. The Fallback predictor derives
// its estimate straight from the activity curves and serves as the
// safety net when a model fails: the prediction boundary never returns
// an error upward.
package forecast

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/Phani347-06/crowdsense-core/internal/activity"
	"github.com/Phani347-06/crowdsense-core/internal/zone"
)

// Inputs carries everything a predictor may need for one zone.
type Inputs struct {
	Zone    zone.Zone
	Hour    int
	Minute  int
	Weekday time.Weekday

	// Current is the latest observed count.
	Current int

	// History is the recent sample window, oldest first.
	History []int

	// GlobalFactor is the campus activity multiplier for this tick.
	GlobalFactor float64
}

// Predictor estimates the next occupancy for a zone.
type Predictor interface {
	Predict(ctx context.Context, in Inputs) (int, error)
}

// Fallback is the formula predictor: base density scaled by the
// activity curves with a little jitter. It never fails.
type Fallback struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFallback creates a Fallback with the given random source.
func NewFallback(rng *rand.Rand) *Fallback {
	return &Fallback{rng: rng}
}

// Predict implements Predictor.
func (f *Fallback) Predict(_ context.Context, in Inputs) (int, error) {
	gf := activity.GlobalFactor(in.Hour, in.Minute, in.Weekday)
	zf := activity.ZoneFactor(in.Zone.Category, in.Hour, in.Minute)

	f.mu.Lock()
	jitter := 0.9 + f.rng.Float64()*0.25
	f.mu.Unlock()

	return int(float64(in.Zone.BaseDensity) * gf * zf * jitter), nil
}

// Damping constants.
const (
	// minActivityScale floors the activity scaling so night-time
	// predictions do not collapse to zero.
	minActivityScale = 0.15

	// currentWeight and modelWeight blend the observed count with the
	// scaled model output.
	currentWeight = 0.7
	modelWeight   = 0.3

	// predictionCapacityLimit caps predictions relative to capacity.
	predictionCapacityLimit = 1.2
)

// Damped wraps a model Predictor with post-processing: the raw output
// is scaled by the activity factor, blended with the current count, and
// clamped to 120% of capacity. If the model errors (or no model is
// configured) the fallback's estimate is returned instead.
type Damped struct {
	model    Predictor
	fallback Predictor
}

// NewDamped builds the damping wrapper. model may be nil, in which case
// every prediction comes from fallback.
func NewDamped(model, fallback Predictor) *Damped {
	return &Damped{model: model, fallback: fallback}
}

// Predict implements Predictor. It never returns an error: any model
// failure falls through to the fallback.
func (d *Damped) Predict(ctx context.Context, in Inputs) (int, error) {
	if d.model == nil {
		v, _ := d.fallback.Predict(ctx, in)
		return clampPrediction(v, in.Zone.Capacity), nil
	}

	raw, err := d.model.Predict(ctx, in)
	if err != nil {
		v, _ := d.fallback.Predict(ctx, in)
		return clampPrediction(v, in.Zone.Capacity), nil
	}

	scaled := float64(raw) * math.Max(in.GlobalFactor, minActivityScale)
	blended := float64(in.Current)*currentWeight + scaled*modelWeight

	return clampPrediction(int(blended), in.Zone.Capacity), nil
}

func clampPrediction(v, capacity int) int {
	if v < 0 {
		return 0
	}
	if limit := int(float64(capacity) * predictionCapacityLimit); v > limit {
		return limit
	}
	return v
}
