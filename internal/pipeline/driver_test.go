package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Andrej220/go-utils/checkqueue"
)

type boolCheck struct {
	ok  bool
	ran *atomic.Int64
}

func (c boolCheck) Check() bool {
	if c.ran != nil {
		c.ran.Add(1)
	}
	return c.ok
}

func batch(n int, ok bool, counter *atomic.Int64) []boolCheck {
	out := make([]boolCheck, n)
	for i := range out {
		out[i] = boolCheck{ok: ok, ran: counter}
	}
	return out
}

// flakySource fails the first failsBefore calls to Next, then replays
// batches in order.
type flakySource struct {
	batches     [][]boolCheck
	pos         int
	failsBefore int
	calls       int
}

func (s *flakySource) Next(ctx context.Context) ([]boolCheck, bool, error) {
	s.calls++
	if s.calls <= s.failsBefore {
		return nil, false, errors.New("upstream unavailable")
	}
	if s.pos >= len(s.batches) {
		return nil, false, nil
	}
	b := s.batches[s.pos]
	s.pos++
	return b, true, nil
}

func newDriver(t *testing.T, workers int, src BatchSource[boolCheck]) *Driver[boolCheck] {
	t.Helper()
	q := checkqueue.New[boolCheck](checkqueue.Options{Workers: workers})
	q.Start(workers, "pipeline-test")
	t.Cleanup(func() {
		q.Interrupt()
		q.Stop()
	})
	return &Driver[boolCheck]{
		Queue:  q,
		Source: src,
		Retry:  RetryPolicy{Attempts: 4, Initial: time.Millisecond, Max: 10 * time.Millisecond},
	}
}

func TestRunRoundAllPass(t *testing.T) {
	var ran atomic.Int64
	src := NewSliceSource([][]boolCheck{batch(3, true, &ran), batch(4, true, &ran)})
	d := newDriver(t, 3, src)

	ok, err := d.RunRound(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true verdict")
	}
	if got := ran.Load(); got != 7 {
		t.Fatalf("expected 7 evaluations, got %d", got)
	}
}

func TestRunRoundTaintedByFailure(t *testing.T) {
	var ran atomic.Int64
	src := NewSliceSource([][]boolCheck{batch(2, true, &ran), {boolCheck{ok: false, ran: &ran}}})
	d := newDriver(t, 2, src)

	ok, err := d.RunRound(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected false verdict")
	}
}

func TestRunRoundRetriesTransientFetchFailure(t *testing.T) {
	var ran atomic.Int64
	src := &flakySource{batches: [][]boolCheck{batch(5, true, &ran)}, failsBefore: 2}
	d := newDriver(t, 2, src)

	ok, err := d.RunRound(context.Background())
	if err != nil {
		t.Fatalf("unexpected error after exhausting transient failures: %v", err)
	}
	if !ok {
		t.Fatalf("expected true verdict")
	}
	if got := ran.Load(); got != 5 {
		t.Fatalf("expected 5 evaluations, got %d", got)
	}
}

func TestRunRoundGivesUpAfterExhaustingRetries(t *testing.T) {
	src := &flakySource{failsBefore: 100}
	d := newDriver(t, 2, src)
	d.Retry = RetryPolicy{Attempts: 2, Initial: time.Millisecond, Max: time.Millisecond}

	_, err := d.RunRound(context.Background())
	if err == nil {
		t.Fatalf("expected an error once retries are exhausted")
	}
}

func TestRunRoundRespectsContextCancellation(t *testing.T) {
	src := &flakySource{failsBefore: 100}
	d := newDriver(t, 2, src)
	d.Retry = RetryPolicy{Attempts: 100, Initial: time.Hour, Max: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := d.RunRound(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
