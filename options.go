package checkqueue

import (
	"context"
	"runtime"

	lg "github.com/Andrej220/go-utils/zlog"
)

// Options configure a CheckQueue.
//
// Zero-valued fields other than Workers are replaced with sensible
// defaults in FillDefaults. Workers is left alone: zero or negative is
// itself a meaningful choice ("no-worker mode", every round runs entirely
// on the master) and FillDefaults must not silently promote it to a
// worker count the caller didn't ask for. Use DefaultWorkers to compute a
// default explicitly.
type Options struct {
	// Workers records the intended pool size. Start does not read it: it
	// spawns the number of workers passed to it as n.
	Workers int

	// BatchSize is an advisory cap on how many items a worker may fold
	// into its local batch before contending on shared state. It is
	// carried for forward compatibility with a batched-claim dispatch
	// strategy; the current loop claims one index at a time.
	BatchSize uint32

	// Name identifies the worker pool in log output.
	Name string

	// PinWorkers, when true and running on Linux, pins each worker
	// goroutine's OS thread via PinToCPU to CPU (worker index modulo
	// runtime.NumCPU()), so workers share CPUs once they outnumber them.
	PinWorkers bool

	// Metrics receives lifecycle counters. Defaults to a no-op
	// implementation when nil.
	Metrics MetricsPolicy

	// Logger receives structured lifecycle logs. Defaults to the
	// background zlog logger when nil.
	Logger lg.ZLogger
}

// DefaultWorkers returns "hardware parallelism minus one": the master
// rejoins as an Nth worker during Wait, so GOMAXPROCS-1 background workers
// saturates available cores without oversubscription.
func DefaultWorkers() int {
	n := runtime.GOMAXPROCS(0) - 1
	if n < 0 {
		n = 0
	}
	return n
}

// FillDefaults replaces zero-valued fields, other than Workers, with
// defaults. Safe to call more than once.
func (o *Options) FillDefaults() {
	if o.Name == "" {
		o.Name = "checkqueue"
	}
	if o.Metrics == nil {
		o.Metrics = &NoopMetrics{}
	}
	if o.Logger == nil {
		o.Logger = lg.FromContext(context.Background())
	}
}
