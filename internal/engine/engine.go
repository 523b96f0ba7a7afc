// Package engine runs the tick loop that drives CrowdSense: every few
// seconds it advances each zone's occupancy, detects surges, predicts
// the next count, scores risk, estimates inter-zone flows, and hands
// the readings to the alerting engine. The resulting campus snapshot is
// swapped in atomically and fanned out to MQTT, telemetry, and the
// WebSocket feed.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/Phani347-06/crowdsense-core/internal/activity"
	"github.com/Phani347-06/crowdsense-core/internal/alerting"
	"github.com/Phani347-06/crowdsense-core/internal/flow"
	"github.com/Phani347-06/crowdsense-core/internal/forecast"
	"github.com/Phani347-06/crowdsense-core/internal/infrastructure/mqtt"
	"github.com/Phani347-06/crowdsense-core/internal/occupancy"
	"github.com/Phani347-06/crowdsense-core/internal/risk"
	"github.com/Phani347-06/crowdsense-core/internal/trend"
	"github.com/Phani347-06/crowdsense-core/internal/zone"
)

// Device counts overestimate nothing and undercount shared devices, so
// the people estimate scales the count up by a small uniform factor.
const (
	estPeopleMin = 1.25
	estPeopleMax = 1.35
)

// MessagePublisher is the broker surface the engine needs.
// Implemented by mqtt.Client.
type MessagePublisher interface {
	PublishJSON(topic string, v any, retained bool) error
}

// MetricsWriter is the telemetry surface the engine needs.
// Implemented by influxdb.Client. Writes must not block.
type MetricsWriter interface {
	WriteZoneMetrics(zoneID string, occupancy, predicted, cri int, growthRate float64, surge bool)
	WriteFlowMetric(fromZone, toZone string, people int, intensity float64)
	WriteAlertMetric(zoneID, eventType, severity string, cri int)
}

// Broadcaster pushes live updates to connected WebSocket clients.
type Broadcaster interface {
	BroadcastSnapshot(snap CampusSnapshot)
	BroadcastAlert(rec alerting.Record)
}

// Alerter evaluates one zone reading. Implemented by alerting.Engine.
type Alerter interface {
	HandleReading(ctx context.Context, r alerting.Reading) []alerting.Record
}

// TrendStore persists the per-minute snapshots.
type TrendStore interface {
	InsertBatch(ctx context.Context, snaps []trend.Snapshot) error
}

// SurgeDetector analyses a sample history.
type SurgeDetector func(history []int) (bool, float64)

// Logger is the minimal logging surface the engine needs.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options wires an Engine. Registry, Machine, Predictor, Flows, Detect,
// and Logger are required; the sinks (Publisher, Metrics, Broadcaster),
// Alerter, Fanout, and Trends may be nil.
type Options struct {
	Registry  *zone.Registry
	Machine   *occupancy.Machine
	Predictor forecast.Predictor
	Flows     *flow.Estimator
	Detect    SurgeDetector

	Alerter Alerter
	Fanout  *AlertFanout
	Trends  TrendStore

	Publisher   MessagePublisher
	Metrics     MetricsWriter
	Broadcaster Broadcaster

	Logger Logger
	Rand   *rand.Rand

	// MinInterval and MaxInterval bound the jittered inter-tick delay.
	MinInterval time.Duration
	MaxInterval time.Duration
}

// Engine owns the tick loop and the latest campus snapshot.
//
// Thread Safety:
//   - Run drives ticks from a single goroutine.
//   - Snapshot, Zone, and UpdateCapacity are safe to call concurrently
//     with the loop.
type Engine struct {
	registry  *zone.Registry
	machine   *occupancy.Machine
	predictor forecast.Predictor
	flows     *flow.Estimator
	detect    SurgeDetector

	alerter Alerter
	fanout  *AlertFanout
	trends  TrendStore

	publisher   MessagePublisher
	metrics     MetricsWriter
	broadcaster Broadcaster

	logger Logger
	rng    *rand.Rand
	topics mqtt.Topics

	minInterval time.Duration
	maxInterval time.Duration

	// now is injectable for tests.
	now func() time.Time

	mu              sync.RWMutex
	snapshot        CampusSnapshot
	lastTrendMinute int
}

// New creates an Engine from Options.
func New(opts Options) (*Engine, error) {
	switch {
	case opts.Registry == nil:
		return nil, fmt.Errorf("engine: registry is required")
	case opts.Machine == nil:
		return nil, fmt.Errorf("engine: occupancy machine is required")
	case opts.Predictor == nil:
		return nil, fmt.Errorf("engine: predictor is required")
	case opts.Flows == nil:
		return nil, fmt.Errorf("engine: flow estimator is required")
	case opts.Detect == nil:
		return nil, fmt.Errorf("engine: surge detector is required")
	case opts.Logger == nil:
		return nil, fmt.Errorf("engine: logger is required")
	case opts.MinInterval <= 0 || opts.MaxInterval < opts.MinInterval:
		return nil, fmt.Errorf("engine: intervals must satisfy 0 < min <= max")
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Engine{
		registry:        opts.Registry,
		machine:         opts.Machine,
		predictor:       opts.Predictor,
		flows:           opts.Flows,
		detect:          opts.Detect,
		alerter:         opts.Alerter,
		fanout:          opts.Fanout,
		trends:          opts.Trends,
		publisher:       opts.Publisher,
		metrics:         opts.Metrics,
		broadcaster:     opts.Broadcaster,
		logger:          opts.Logger,
		rng:             rng,
		minInterval:     opts.MinInterval,
		maxInterval:     opts.MaxInterval,
		now:             time.Now,
		lastTrendMinute: -1,
	}, nil
}

// Run drives the tick loop until the context is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine started",
		"zones", e.registry.Count(),
		"min_interval", e.minInterval,
		"max_interval", e.maxInterval,
	)

	for {
		e.safeTick(ctx)

		delay := e.minInterval +
			time.Duration(e.rng.Float64()*float64(e.maxInterval-e.minInterval))

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopped")
			return nil
		case <-time.After(delay):
		}
	}
}

// safeTick runs one tick with panic isolation: a bad tick is logged and
// skipped, never fatal to the loop.
func (e *Engine) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tick panicked", "panic", r)
		}
	}()
	e.Tick(ctx)
}

// Tick advances every zone by one step and publishes the result.
func (e *Engine) Tick(ctx context.Context) {
	now := e.now()
	hour, minute := now.Hour(), now.Minute()
	gf := activity.GlobalFactor(hour, minute, now.Weekday())

	zones := e.registry.All()
	snapshots := make([]ZoneSnapshot, 0, len(zones))
	states := make([]flow.ZoneState, 0, len(zones))

	for _, z := range zones {
		zf := activity.ZoneFactor(z.Category, hour, minute)
		count := e.machine.Step(z, gf, zf)
		history := e.machine.History(z.ID)
		surge, growth := e.detect(history)

		predicted, err := e.predictor.Predict(ctx, forecast.Inputs{
			Zone:         z,
			Hour:         hour,
			Minute:       minute,
			Weekday:      now.Weekday(),
			Current:      count,
			History:      history,
			GlobalFactor: gf,
		})
		if err != nil {
			// The damped predictor never errors; a custom model might.
			e.logger.Warn("prediction failed, using current count", "zone", z.ID, "error", err)
			predicted = count
		}

		estPeople := int(float64(count) * e.uniform(estPeopleMin, estPeopleMax))
		cri := risk.Score(count, z.Capacity, predicted, growth, hour)

		snapshots = append(snapshots, ZoneSnapshot{
			ZoneID:      z.ID,
			Name:        z.Name,
			Category:    string(z.Category),
			Capacity:    z.Capacity,
			DeviceCount: count,
			EstPeople:   estPeople,
			Predicted:   predicted,
			GrowthRate:  growth,
			Surge:       surge,
			CRI:         cri,
			RiskLevel:   risk.LevelFor(cri),
			CoordX:      z.CoordX,
			CoordY:      z.CoordY,
			UpdatedAt:   now,
		})
		states = append(states, flow.ZoneState{
			ID:        z.ID,
			Name:      z.Name,
			Current:   count,
			Capacity:  z.Capacity,
			EstPeople: estPeople,
		})
	}

	edges := e.flows.Calculate(states, hour)

	alertCount := 0
	if e.fanout != nil {
		alertCount = e.fanout.Count()
	}

	snap := CampusSnapshot{
		Timestamp: now,
		Zones:     snapshots,
		Flows:     edges,
	}

	// Alerts fire before the summary so this tick's firings are counted.
	if e.alerter != nil {
		for _, zs := range snapshots {
			e.alerter.HandleReading(ctx, alerting.Reading{
				ZoneID:    zs.ZoneID,
				ZoneName:  zs.Name,
				Current:   zs.DeviceCount,
				Capacity:  zs.Capacity,
				Predicted: zs.Predicted,
				CRI:       zs.CRI,
				Surge:     zs.Surge,
			})
		}
		if e.fanout != nil {
			alertCount = e.fanout.Count()
		}
	}
	snap.Summary = summarize(snapshots, alertCount)

	e.mu.Lock()
	e.snapshot = snap
	recordTrend := minute != e.lastTrendMinute
	if recordTrend {
		e.lastTrendMinute = minute
	}
	e.mu.Unlock()

	e.publish(snap)

	if recordTrend && e.trends != nil {
		e.recordTrend(ctx, snap)
	}
}

// publish fans the snapshot out to the side channels. Failures are
// logged and never interrupt the loop.
func (e *Engine) publish(snap CampusSnapshot) {
	if e.publisher != nil {
		// Snapshots are state topics; retained so late subscribers catch up.
		if err := e.publisher.PublishJSON(e.topics.CampusSnapshot(), snap, true); err != nil {
			e.logger.Warn("publishing campus snapshot failed", "error", err)
		}
		for _, zs := range snap.Zones {
			if err := e.publisher.PublishJSON(e.topics.ZoneSnapshot(zs.ZoneID), zs, true); err != nil {
				e.logger.Warn("publishing zone snapshot failed", "zone", zs.ZoneID, "error", err)
			}
		}
		if err := e.publisher.PublishJSON(e.topics.Flows(), snap.Flows, false); err != nil {
			e.logger.Warn("publishing flows failed", "error", err)
		}
	}

	if e.metrics != nil {
		for _, zs := range snap.Zones {
			e.metrics.WriteZoneMetrics(zs.ZoneID, zs.DeviceCount, zs.Predicted, zs.CRI, zs.GrowthRate, zs.Surge)
		}
		for _, edge := range snap.Flows {
			e.metrics.WriteFlowMetric(edge.From, edge.To, edge.People, edge.Intensity)
		}
	}

	if e.broadcaster != nil {
		e.broadcaster.BroadcastSnapshot(snap)
	}
}

// recordTrend persists one per-minute row per zone.
func (e *Engine) recordTrend(ctx context.Context, snap CampusSnapshot) {
	batch := make([]trend.Snapshot, 0, len(snap.Zones))
	for _, zs := range snap.Zones {
		batch = append(batch, trend.Snapshot{
			ZoneID:     zs.ZoneID,
			Occupancy:  zs.DeviceCount,
			Predicted:  zs.Predicted,
			CRI:        zs.CRI,
			RiskLevel:  zs.RiskLevel,
			RecordedAt: snap.Timestamp,
		})
	}
	if err := e.trends.InsertBatch(ctx, batch); err != nil {
		e.logger.Error("recording trend snapshots failed", "error", err)
	}
}

// Snapshot returns the latest campus snapshot.
func (e *Engine) Snapshot() CampusSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot
}

// Zone returns the latest snapshot for one zone.
func (e *Engine) Zone(zoneID string) (ZoneSnapshot, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, zs := range e.snapshot.Zones {
		if zs.ZoneID == zoneID {
			return zs, true
		}
	}
	return ZoneSnapshot{}, false
}

// ZoneHistory returns the zone's recent raw sample window, oldest first.
func (e *Engine) ZoneHistory(zoneID string) []int {
	return e.machine.History(zoneID)
}

// UpdateCapacity applies a new capacity to a zone and re-scores its
// current snapshot entry immediately, so the dashboard and the next
// alert evaluation see the new risk without waiting for a tick.
//
// Snapshot copies handed to readers share the published Zones backing
// array, so the re-score is committed copy-on-write: build a fresh
// zones slice, then replace the snapshot with a single assignment.
func (e *Engine) UpdateCapacity(zoneID string, capacity int) (ZoneSnapshot, error) {
	if err := e.registry.UpdateCapacity(zoneID, capacity); err != nil {
		return ZoneSnapshot{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.snapshot.Zones {
		if e.snapshot.Zones[i].ZoneID != zoneID {
			continue
		}

		zones := make([]ZoneSnapshot, len(e.snapshot.Zones))
		copy(zones, e.snapshot.Zones)

		zs := &zones[i]
		zs.Capacity = capacity
		// Growth is reset: the re-score reflects the capacity change, not
		// a new observation.
		zs.CRI = risk.Score(zs.DeviceCount, capacity, zs.Predicted, 0, e.now().Hour())
		zs.RiskLevel = risk.LevelFor(zs.CRI)
		zs.UpdatedAt = e.now()

		next := e.snapshot
		next.Zones = zones
		e.snapshot = next

		e.logger.Info("zone capacity updated",
			"zone", zoneID,
			"capacity", capacity,
			"cri", zs.CRI,
		)
		return *zs, nil
	}

	// The zone exists in the registry but has not ticked yet.
	return ZoneSnapshot{ZoneID: zoneID, Capacity: capacity}, nil
}

func (e *Engine) uniform(min, max float64) float64 {
	return min + e.rng.Float64()*(max-min)
}
