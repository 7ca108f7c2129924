// Package checkqueue provides a parallel check queue: a concurrency
// primitive that distributes independent boolean predicate evaluations
// ("checks") across a fixed worker pool and lets one master goroutine submit
// batches and block until every submitted item has been evaluated.
//
// Design goals
//
// The package is designed around the following principles:
//
//   - One round, one verdict: the conjunction of every check evaluated
//     during the round, computed with short-circuit spirit but without
//     early cancellation of in-flight checks
//   - No locking on the per-item dispatch path beyond an amortized
//     snapshot refresh and the recording of a failed check
//   - Exactly one round active per queue at a time, enforced by a
//     dedicated control mutex rather than left to caller discipline
//   - Workers are long-lived across rounds; only the round's items and
//     verdict are reset between rounds
//
// Architecture overview
//
// Two types compose the package:
//
//  1. CheckQueue[T]
//     Owns the shared state: a mutex-guarded slice of pending items, an
//     atomic dispatch cursor, an atomic outstanding counter, a
//     mutex-guarded round verdict, and a pool of long-lived worker
//     goroutines. Workers and the master both run the same loop method,
//     parameterized by a master flag, so there is exactly one algorithm
//     to get right.
//
//  2. RoundController[T]
//     A scoped handle acquired before a round and released after it,
//     serializing rounds against a single CheckQueue via a dedicated
//     control mutex. Go has no destructors, so release happens in an
//     explicit Close method meant to be called with defer.
//
// Dispatch model
//
// Workers claim items by atomically incrementing a shared cursor; any
// worker that claims an index past the published total transitions to
// the drained branch and either waits for more work (worker) or waits for
// the outstanding counter to reach zero (master). This lets any number of
// workers dispatch without serializing through a mutex on the hot path;
// the mutex is taken only to publish new batches, to refresh a worker's
// snapshot of them after the total changes, to record a failed check, and
// to handle the drained branch.
//
// Error handling
//
// The queue has no error channel. A check's outcome is folded into the
// round's boolean verdict; there is no way for a failing check to
// terminate a worker or otherwise leak the outstanding counter. Violating
// a documented precondition (starting an already-started queue, waiting
// twice on one controller) is a programming error and panics after being
// logged. A second controller on a busy queue does not panic: its
// construction blocks until the first is closed.
//
// Intended use cases
//
// checkqueue is well suited for bulk validation phases where many
// independent predicates must all hold — signature verification across a
// block of transactions, validating a batch of uploaded records, or any
// similar fan-out-then-conjunct workload. It is not a general-purpose job
// queue: it has no prioritization, no per-item cancellation, no result
// collection beyond the aggregate boolean, and no dynamic resizing of the
// worker pool mid-round.
package checkqueue
