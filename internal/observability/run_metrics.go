package observability

import (
	"sync/atomic"
	"time"
)

// RunMetrics tracks scheduler-driven finalizer runs with plain atomics so the
// scheduler binary can expose a cheap snapshot without a metrics registry.
type RunMetrics struct {
	fired   atomic.Uint64
	done    atomic.Uint64
	skipped atomic.Uint64
	failed  atomic.Uint64

	// duration stats (nanoseconds)
	durationCount atomic.Uint64
	durationTotal atomic.Int64
	durationMax   atomic.Int64
}

func NewRunMetrics() *RunMetrics {
	m := &RunMetrics{}
	m.durationMax.Store(0)
	return m
}

func (m *RunMetrics) IncFired() {
	m.fired.Add(1)
}
func (m *RunMetrics) IncDone() {
	m.done.Add(1)
}
func (m *RunMetrics) IncSkipped() {
	m.skipped.Add(1)
}
func (m *RunMetrics) IncFailed() {
	m.failed.Add(1)
}

func (m *RunMetrics) ObserveDuration(d time.Duration) {
	ns := d.Nanoseconds()
	m.durationCount.Add(1)
	m.durationTotal.Add(ns)

	// max update

	for {
		curr := m.durationMax.Load()

		if ns <= curr {
			return
		}

		if m.durationMax.CompareAndSwap(curr, ns) {
			return
		}
	}
}

type RunMetricsSnapShot struct {
	Fired           uint64
	Done            uint64
	Skipped         uint64
	Failed          uint64
	DurationCount   uint64
	AverageDuration time.Duration
	MaxDuration     time.Duration
}

func (m *RunMetrics) Snapshot() RunMetricsSnapShot {
	count := m.durationCount.Load()
	total := m.durationTotal.Load()
	max := m.durationMax.Load()

	var avg time.Duration

	if count > 0 {
		avg = time.Duration(total / int64(count))
	}

	return RunMetricsSnapShot{
		Fired:           m.fired.Load(),
		Done:            m.done.Load(),
		Skipped:         m.skipped.Load(),
		Failed:          m.failed.Load(),
		DurationCount:   count,
		AverageDuration: avg,
		MaxDuration:     time.Duration(max),
	}

}
