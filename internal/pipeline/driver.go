package pipeline

import (
	"context"
	"time"

	boff "github.com/Andrej220/go-utils/backoff"
	lg "github.com/Andrej220/go-utils/zlog"

	"github.com/Andrej220/go-utils/checkqueue"
)

const (
	defaultAttempts     = 3
	defaultInitialRetry = 200 * time.Millisecond
	defaultMaxRetry     = 5 * time.Second
)

// RetryPolicy governs how a Driver retries a transiently failing
// BatchSource.Next call. Item evaluation inside the queue itself never
// returns an error and is never retried, but fetching the next batch from
// an upstream producer is an I/O boundary and may legitimately fail
// transiently.
type RetryPolicy struct {
	Attempts int
	Initial  time.Duration
	Max      time.Duration
}

// DefaultRetryPolicy returns sensible defaults for retrying a batch fetch.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: defaultAttempts,
		Initial:  defaultInitialRetry,
		Max:      defaultMaxRetry,
	}
}

// Driver owns one CheckQueue/RoundController pair and runs rounds to
// completion against a BatchSource, the role a validation pipeline would
// otherwise fill by calling the queue directly.
type Driver[T checkqueue.Checkable] struct {
	Queue  *checkqueue.CheckQueue[T]
	Source BatchSource[T]
	Retry  RetryPolicy
	Logger lg.ZLogger
}

// RunRound drains Source into one round of Queue and returns the round's
// verdict. Batches are pulled until Source reports ok=false; a batch fetch
// that fails transiently is retried with exponential backoff before the
// round is abandoned.
func (d *Driver[T]) RunRound(ctx context.Context) (bool, error) {
	rc := checkqueue.NewRoundController[T](d.Queue)
	defer rc.Close()

	for {
		b, ok, err := d.fetchWithRetry(ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			break
		}
		rc.Add(b)
	}
	return rc.Wait(), nil
}

func (d *Driver[T]) fetchWithRetry(ctx context.Context) ([]T, bool, error) {
	pol := d.Retry
	if pol.Attempts <= 0 {
		pol = DefaultRetryPolicy()
	}

	bo := boff.New(pol.Initial, pol.Max, time.Now().UnixNano())
	logger := d.logger()

	var lastErr error
	for attempt := 1; attempt <= pol.Attempts; attempt++ {
		b, ok, err := d.Source.Next(ctx)
		if err == nil {
			return b, ok, nil
		}
		lastErr = err
		if attempt == pol.Attempts {
			break
		}

		delay := bo.Next()
		logger.Warn("batch fetch failed; backing off",
			lg.Int("attempt", attempt),
			lg.String("sleep", delay.String()),
			lg.Any("error", err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			return nil, false, ctx.Err()
		}
	}
	return nil, false, lastErr
}

func (d *Driver[T]) logger() lg.ZLogger {
	if d.Logger != nil {
		return d.Logger
	}
	return lg.FromContext(context.Background())
}
