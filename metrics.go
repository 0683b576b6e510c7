package rkmeans

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    stepHistogram prometheus.Histogram
//	    runCounter    prometheus.Counter
//	}
//
//	func (p *PrometheusCollector) RecordStep(step string, duration time.Duration, err error) {
//	    p.stepHistogram.Observe(duration.Seconds())
//	    // ... record error state, etc.
//	}
type MetricsCollector interface {
	// RecordStep is called after each parallel step.
	// step is "compute_distances" or "make_assignments", err is nil if successful.
	RecordStep(step string, duration time.Duration, err error)

	// RecordIteration is called after each assignment pass with the number
	// of coordinates that changed cluster.
	RecordIteration(moves int)

	// RecordRun is called once per run.
	RecordRun(iterations int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordStep(string, time.Duration, error) {}
func (NoopMetricsCollector) RecordIteration(int)                     {}
func (NoopMetricsCollector) RecordRun(int, time.Duration, error)     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	DistanceSteps      atomic.Int64
	DistanceTotalNanos atomic.Int64
	AssignSteps        atomic.Int64
	AssignTotalNanos   atomic.Int64
	StepErrors         atomic.Int64
	Iterations         atomic.Int64
	Moves              atomic.Int64
	RunCount           atomic.Int64
	RunErrors          atomic.Int64
	RunTotalNanos      atomic.Int64
}

// RecordStep implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStep(step string, duration time.Duration, err error) {
	switch step {
	case StepComputeDistances.String():
		b.DistanceSteps.Add(1)
		b.DistanceTotalNanos.Add(duration.Nanoseconds())
	case StepMakeAssignments.String():
		b.AssignSteps.Add(1)
		b.AssignTotalNanos.Add(duration.Nanoseconds())
	}
	if err != nil {
		b.StepErrors.Add(1)
	}
}

// RecordIteration implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIteration(moves int) {
	b.Iterations.Add(1)
	b.Moves.Add(int64(moves))
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(iterations int, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		DistanceSteps:    b.DistanceSteps.Load(),
		DistanceAvgNanos: avg(b.DistanceTotalNanos.Load(), b.DistanceSteps.Load()),
		AssignSteps:      b.AssignSteps.Load(),
		AssignAvgNanos:   avg(b.AssignTotalNanos.Load(), b.AssignSteps.Load()),
		StepErrors:       b.StepErrors.Load(),
		Iterations:       b.Iterations.Load(),
		Moves:            b.Moves.Load(),
		RunCount:         b.RunCount.Load(),
		RunErrors:        b.RunErrors.Load(),
		RunAvgNanos:      avg(b.RunTotalNanos.Load(), b.RunCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	DistanceSteps    int64
	DistanceAvgNanos int64
	AssignSteps      int64
	AssignAvgNanos   int64
	StepErrors       int64
	Iterations       int64
	Moves            int64
	RunCount         int64
	RunErrors        int64
	RunAvgNanos      int64
}
