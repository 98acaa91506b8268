package application

import (
	"context"
	"time"
)

// MetricsRecorder はゲーム進行の計測窓口です。
type MetricsRecorder interface {
	IncrementCounter(ctx context.Context, name string)
	RecordTickDuration(ctx context.Context, d time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) IncrementCounter(context.Context, string)          {}
func (noopMetrics) RecordTickDuration(context.Context, time.Duration) {}
