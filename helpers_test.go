package warmup

import (
	"context"
	"sync"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Test helpers: fake clocks and a counting engine
// ---------------------------------------------------------------------------

// client stands in for an SDK instance.
type client struct {
	id int
}

// testTimer is a controllable timer.
type testTimer struct {
	ch      chan time.Time
	stopped bool
	mu      sync.Mutex
}

func newTestTimer() *testTimer {
	return &testTimer{ch: make(chan time.Time, 1)}
}

func (t *testTimer) C() <-chan time.Time { return t.ch }

func (t *testTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	was := !t.stopped
	t.stopped = true

	return was
}

func (t *testTimer) fire() {
	t.ch <- time.Now()
}

func (t *testTimer) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.stopped
}

// immediateClock records every requested pause and fires at once.
type immediateClock struct {
	mu        sync.Mutex
	durations []time.Duration
}

func (c *immediateClock) Now() time.Time { return time.Now() }

func (c *immediateClock) NewTimer(d time.Duration) Timer {
	c.mu.Lock()
	c.durations = append(c.durations, d)
	c.mu.Unlock()

	t := newTestTimer()
	t.fire()

	return t
}

func (c *immediateClock) getDurations() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]time.Duration, len(c.durations))
	copy(out, c.durations)

	return out
}

// manualClock hands out timers that only fire when the test says so. Each
// new timer is announced on created.
type manualClock struct {
	created   chan *testTimer
	mu        sync.Mutex
	durations []time.Duration
}

func newManualClock() *manualClock {
	return &manualClock{created: make(chan *testTimer, 16)}
}

func (c *manualClock) Now() time.Time { return time.Now() }

func (c *manualClock) NewTimer(d time.Duration) Timer {
	c.mu.Lock()
	c.durations = append(c.durations, d)
	c.mu.Unlock()

	t := newTestTimer()
	c.created <- t

	return t
}

// nextTimer waits for the loop to start a pause.
func (c *manualClock) nextTimer(t *testing.T) *testTimer {
	t.Helper()

	select {
	case tmr := <-c.created:
		return tmr
	case <-time.After(2 * time.Second):
		t.Fatal("no timer created within 2s")
		return nil
	}
}

// countingEngine counts calls and delegates each step to a per-call function.
// Call numbers are 1-based.
type countingEngine struct {
	bootstrap  func(ctx context.Context, n int) error
	construct  func(ctx context.Context, n int) (*client, error)
	mu         sync.Mutex
	bootstraps int
	constructs int
	configs    []string
}

func (e *countingEngine) Bootstrap(ctx context.Context) error {
	e.mu.Lock()
	e.bootstraps++
	n := e.bootstraps
	e.mu.Unlock()

	if e.bootstrap == nil {
		return nil
	}

	return e.bootstrap(ctx, n)
}

func (e *countingEngine) Construct(ctx context.Context, cfg string) (*client, error) {
	e.mu.Lock()
	e.constructs++
	n := e.constructs
	e.configs = append(e.configs, cfg)
	e.mu.Unlock()

	return e.construct(ctx, n)
}

func (e *countingEngine) counts() (bootstraps, constructs int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.bootstraps, e.constructs
}

// failUntil returns a construct function failing the first k-1 calls.
func failUntil(k int) func(context.Context, int) (*client, error) {
	return func(_ context.Context, n int) (*client, error) {
		if n < k {
			return nil, errFlaky
		}

		return &client{id: n}, nil
	}
}

// waitDone waits for the activation to stop running.
func waitDone[T any](t *testing.T, a *Activation[T]) {
	t.Helper()

	select {
	case <-a.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("activation did not finish within 2s")
	}
}

// recorder collects hook events as strings, safe for concurrent use.
type recorder struct {
	mu     sync.Mutex
	events []string
	errs   []error
}

func (r *recorder) add(ev string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, ev)
}

func (r *recorder) addErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errs = append(r.errs, err)
}

func (r *recorder) getEvents() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.events))
	copy(out, r.events)

	return out
}

func (r *recorder) getErrs() []error {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]error, len(r.errs))
	copy(out, r.errs)

	return out
}
