package checkqueue

import (
	"sync/atomic"
)

// MetricsPolicy defines hooks used by a CheckQueue to report round
// activity.
//
// Implementations must be safe for concurrent use. All methods are
// expected to be lightweight and non-blocking; they are called from the
// per-item dispatch path.
type MetricsPolicy interface {
	// IncEvaluated increments the total number of checks evaluated.
	IncEvaluated()

	// SetOutstanding records the current outstanding-check count.
	SetOutstanding(n int64)

	// IncRounds increments the total number of completed rounds.
	IncRounds()
}

// AtomicMetrics is a lock-free metrics implementation backed by atomics.
//
// Writes are optimized for hot paths. Reads are intended for cold-path
// observation (e.g. a CLI printing a summary after a round).
type AtomicMetrics struct {
	// evaluated is the total number of checks evaluated.
	evaluated atomic.Uint64

	_ [56]byte // padding to avoid false sharing

	// outstanding is the last observed outstanding-check count.
	outstanding atomic.Int64

	_ [56]byte // padding to avoid false sharing

	// rounds is the total number of completed rounds.
	rounds atomic.Uint64
}

// Evaluated returns the total number of checks evaluated.
func (m *AtomicMetrics) Evaluated() uint64 {
	return m.evaluated.Load()
}

// Outstanding returns the last observed outstanding-check count.
func (m *AtomicMetrics) Outstanding() int64 {
	return m.outstanding.Load()
}

// Rounds returns the total number of completed rounds.
func (m *AtomicMetrics) Rounds() uint64 {
	return m.rounds.Load()
}

// IncEvaluated increments the evaluated-checks counter by one.
func (m *AtomicMetrics) IncEvaluated() {
	m.evaluated.Add(1)
}

// SetOutstanding records the current outstanding-check count.
func (m *AtomicMetrics) SetOutstanding(n int64) {
	m.outstanding.Store(n)
}

// IncRounds increments the completed-rounds counter by one.
func (m *AtomicMetrics) IncRounds() {
	m.rounds.Add(1)
}

//------------- NoopMetrics ----------------------------------

// NoopMetrics is a MetricsPolicy implementation that discards all metric
// updates.
//
// It is the default when Options.Metrics is nil, and is appropriate when
// metrics collection is disabled and zero overhead is desired.
type NoopMetrics struct{}

func (m *NoopMetrics) IncEvaluated()        {}
func (m *NoopMetrics) SetOutstanding(int64) {}
func (m *NoopMetrics) IncRounds()           {}
