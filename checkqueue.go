package checkqueue

import (
	"runtime"
	"sync"
	"sync/atomic"

	lg "github.com/Andrej220/go-utils/zlog"
)

// CheckQueue distributes independent boolean checks across a fixed pool
// of long-lived worker goroutines. One round at a time is active (see
// RoundController); the aggregate result of a round is the conjunction of
// every check evaluated during it.
//
// The zero value is not usable; construct with New.
type CheckQueue[T Checkable] struct {
	mu         sync.Mutex
	workerWait *sync.Cond
	masterWait *sync.Cond

	// items is the current round's pending sequence, appended to under
	// mu and never shrunk mid-round. It is read without mu on the
	// per-item dispatch path by caching the slice header locally and
	// refreshing it only when total has advanced — see loop.
	items []T

	// cursor is the next index to claim. Reset to 0 on every Add, so a
	// round with multiple Add calls rescans from the start rather than
	// only dispatching the newly appended tail; outstanding, not cursor,
	// is what Wait actually depends on, so the rescan only costs a few
	// wasted fetch-adds on indices other goroutines already claimed.
	cursor atomic.Uint64

	// total is the published size of items as of the most recent Add. It
	// must be atomic rather than a plain field: workers read it on the
	// hot dispatch path without holding mu, and Go's memory model gives no
	// visibility guarantee for a plain write/read pair across goroutines.
	total atomic.Uint64

	// outstanding counts items submitted but not yet fully evaluated.
	// Zero exactly when the round is drained.
	outstanding atomic.Int64

	// verdict is the round's running conjunction, guarded by mu.
	verdict bool

	// interrupt, once set, causes idle workers to exit their wait and
	// return.
	interrupt atomic.Bool

	// controlMu serializes RoundControllers: held for the entire
	// duration of one round.
	controlMu sync.Mutex

	started atomic.Bool
	wg      sync.WaitGroup

	opts Options
}

// New constructs an idle CheckQueue: no workers, no round in progress.
// Call Start to spawn workers before running rounds (or run entirely on
// the master with Start(0, ...)).
func New[T Checkable](opts Options) *CheckQueue[T] {
	opts.FillDefaults()
	q := &CheckQueue[T]{
		verdict: true,
		opts:    opts,
	}
	q.workerWait = sync.NewCond(&q.mu)
	q.masterWait = sync.NewCond(&q.mu)
	return q
}

// Start spawns n worker goroutines, each running loop(master=false), and
// clears the interrupt flag. Precondition: no workers currently exist and
// no round is in progress. If n <= 0, no goroutines are spawned and every
// subsequent round is executed entirely on the master.
func (q *CheckQueue[T]) Start(n int, name string) {
	if q.started.Load() {
		assertf(q.opts.Logger, "Start called while workers are already running")
	}
	q.interrupt.Store(false)
	if n <= 0 {
		return
	}
	if name == "" {
		name = q.opts.Name
	}
	q.started.Store(true)
	q.wg.Add(n)
	for i := 0; i < n; i++ {
		id := i
		go q.runWorker(id, name)
	}
}

func (q *CheckQueue[T]) runWorker(id int, name string) {
	defer q.wg.Done()
	logger := q.opts.Logger.With(lg.String("worker", name), lg.Int("worker_id", id))
	if q.opts.PinWorkers {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if err := PinToCPU(id % runtime.NumCPU()); err != nil {
			logger.Warn("failed to pin worker to cpu", lg.Any("error", err))
		}
	}
	logger.Info("worker started")
	q.loop(false)
	logger.Info("worker stopped")
}

// add moves each item in batch into the queue's pending sequence,
// increments outstanding by len(batch), publishes the new total, and
// wakes workers. Precondition: caller holds the control mutex (i.e. holds
// a RoundController). An empty batch is a no-op and does not notify.
func (q *CheckQueue[T]) add(batch []T) {
	if len(batch) == 0 {
		return
	}
	q.mu.Lock()
	q.items = append(q.items, batch...)
	newTotal := uint64(len(q.items))
	q.mu.Unlock()

	q.outstanding.Add(int64(len(batch)))
	q.opts.Metrics.SetOutstanding(q.outstanding.Load())
	q.total.Store(newTotal)
	q.cursor.Store(0)

	if len(batch) == 1 {
		q.workerWait.Signal()
	} else {
		q.workerWait.Broadcast()
	}
}

// wait runs loop(master=true) to drain the round and returns the
// aggregate verdict, resetting the shared verdict to true for the next
// round. Precondition: caller holds the control mutex.
func (q *CheckQueue[T]) wait() bool {
	verdict := q.loop(true)
	q.opts.Metrics.IncRounds()
	return verdict
}

// Interrupt sets the interrupt flag and wakes all workers; idle workers
// observing the flag exit loop and terminate. Safe to call at any time,
// but only meaningful once no further rounds will be started: it does not
// unblock a master currently blocked in Wait, since Wait only returns once
// the round has drained.
func (q *CheckQueue[T]) Interrupt() {
	// Set the flag under mu so a worker cannot check its wait predicate,
	// miss the flag, and then sleep through the broadcast.
	q.mu.Lock()
	q.interrupt.Store(true)
	q.mu.Unlock()
	q.workerWait.Broadcast()
}

// Stop joins every worker goroutine and forgets them. Precondition:
// Interrupt has been (or will promptly be) observed by all workers —
// typically called after Interrupt.
func (q *CheckQueue[T]) Stop() {
	q.wg.Wait()
	q.started.Store(false)
}

// loop is the shared dispatch algorithm run by both workers and the
// master, parameterized by the master flag so there is exactly one
// dispatch algorithm to get right instead of two that must agree.
func (q *CheckQueue[T]) loop(master bool) bool {
	ok := true
	var view []T
	var viewTotal uint64
	haveView := false

	for {
		i := q.cursor.Add(1) - 1
		total := q.total.Load()

		if i < total {
			if !haveView || total != viewTotal {
				q.mu.Lock()
				view = q.items
				q.mu.Unlock()
				viewTotal = total
				haveView = true
			}
			result := view[i].Check()
			ok = ok && result
			if !result {
				// Record the failure before this item stops counting as
				// outstanding, so a master that observes outstanding == 0
				// cannot return the verdict without it.
				q.mu.Lock()
				q.verdict = false
				q.mu.Unlock()
			}
			q.outstanding.Add(-1)
			q.opts.Metrics.IncEvaluated()
			q.opts.Metrics.SetOutstanding(q.outstanding.Load())
			continue
		}

		q.mu.Lock()
		if master {
			q.verdict = q.verdict && ok
			for q.outstanding.Load() != 0 {
				q.masterWait.Wait()
			}
			verdict := q.verdict
			q.verdict = true
			// Drop references to this round's items now that every one of
			// them has been evaluated, so a finished round doesn't pin
			// evaluated items in memory until the next Add overwrites the
			// slice.
			q.items = nil
			q.mu.Unlock()
			return verdict
		}

		if q.outstanding.Load() == 0 {
			q.masterWait.Signal()
		}
		if q.interrupt.Load() {
			q.mu.Unlock()
			return true
		}
		for !(q.interrupt.Load() || q.cursor.Load() < q.total.Load()) {
			q.workerWait.Wait()
		}
		ok = true
		haveView = false
		q.mu.Unlock()
	}
}
