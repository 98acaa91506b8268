package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// GameMetrics records game progression counters and tick durations through
// the OpenTelemetry metric API. Counters are created lazily by name so the
// game logic does not need to know the full set up front.
type GameMetrics struct {
	meter metric.Meter

	mu       sync.Mutex
	counters map[string]metric.Int64Counter

	tickDuration metric.Float64Histogram
}

func NewGameMetrics(meter metric.Meter) (*GameMetrics, error) {
	hist, err := meter.Float64Histogram("game.tick.duration",
		metric.WithDescription("Wall time of one simulation tick"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create tick duration histogram: %w", err)
	}
	return &GameMetrics{
		meter:        meter,
		counters:     make(map[string]metric.Int64Counter),
		tickDuration: hist,
	}, nil
}

// IncrementCounter adds one to the named counter, creating it on first use.
func (m *GameMetrics) IncrementCounter(ctx context.Context, name string) {
	m.mu.Lock()
	counter, ok := m.counters[name]
	if !ok {
		var err error
		counter, err = m.meter.Int64Counter(name)
		if err != nil {
			m.mu.Unlock()
			return
		}
		m.counters[name] = counter
	}
	m.mu.Unlock()

	counter.Add(ctx, 1)
}

// RecordTickDuration records the wall time one tick took.
func (m *GameMetrics) RecordTickDuration(ctx context.Context, d time.Duration) {
	m.tickDuration.Record(ctx, float64(d)/float64(time.Millisecond))
}
