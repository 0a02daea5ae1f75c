package warmup

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Activation is one run of the retry sequence, from activation until a
// terminal phase or deactivation. It owns its stop flag and state, so a
// deactivated activation can never affect a newer one.
type Activation[T any] struct {
	ctx     context.Context
	lastErr error
	stop    chan struct{}
	done    chan struct{}
	changed chan struct{}
	setup   activationSetup[T]
	id      string
	state   State[T]
	mu      sync.Mutex
	stopped bool
}

// activationSetup is the per-activation copy of the initializer settings.
type activationSetup[T any] struct {
	clock   Clock
	release func(T)
	hooks   Hooks
	message string
	policy  RetryPolicy
}

// attemptFunc runs attempt n. active reports whether the activation is still
// live, so the attempt can skip its remaining stages after deactivation.
type attemptFunc[T any] func(ctx context.Context, n int, active func() bool) Outcome[T]

func newActivation[T any](ctx context.Context, s activationSetup[T]) *Activation[T] {
	return &Activation[T]{
		ctx:     ctx,
		setup:   s,
		id:      uuid.NewString(),
		state:   State[T]{Phase: PhaseLoading},
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		changed: make(chan struct{}),
	}
}

// ID returns the activation's unique identifier.
func (a *Activation[T]) ID() string { return a.id }

// Snapshot returns the observer's view of the activation.
func (a *Activation[T]) Snapshot() Snapshot[T] {
	a.mu.Lock()
	defer a.mu.Unlock()

	return snapshotOf(a.state)
}

// State returns the full state, including the attempt counter.
func (a *Activation[T]) State() State[T] {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state
}

// Active reports whether the activation has not been deactivated.
func (a *Activation[T]) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return !a.stopped
}

// Changed returns a channel closed at the next state change. Call it again
// after each notification to keep watching.
func (a *Activation[T]) Changed() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.changed
}

// Done returns a channel closed when the activation stops running, either in
// a terminal phase or after deactivation.
func (a *Activation[T]) Done() <-chan struct{} { return a.done }

// Wait blocks until the activation stops running or ctx ends. It returns
// [ErrDeactivated] when the activation stopped before a terminal phase.
func (a *Activation[T]) Wait(ctx context.Context) (Snapshot[T], error) {
	select {
	case <-a.done:
	case <-ctx.Done():
		return a.Snapshot(), ctx.Err()
	}

	snap := a.Snapshot()
	if !snap.Phase.Terminal() {
		return snap, ErrDeactivated
	}

	return snap, nil
}

// Deactivate stops the activation. No state change is published afterwards,
// whatever the in-flight attempt later returns. A ready instance is handed to
// the release function, if one was configured. Deactivate is idempotent.
func (a *Activation[T]) Deactivate() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}

	a.stopped = true
	close(a.stop)

	inst, ready := a.state.Instance, a.state.Phase == PhaseReady
	a.mu.Unlock()

	if ready && a.setup.release != nil {
		a.setup.release(inst)
	}

	a.setup.hooks.emitDeactivate(a.id)
}

// lastError returns the error of the most recent failed attempt.
func (a *Activation[T]) lastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.lastErr
}

// start launches the retry loop. The parent context ending is treated as a
// deactivation.
func (a *Activation[T]) start(attempt attemptFunc[T]) {
	a.setup.hooks.emitActivate(a.id)

	unwatch := context.AfterFunc(a.ctx, a.Deactivate)

	go func() {
		defer close(a.done)
		defer unwatch()

		a.run(attempt)
	}()
}

// Pattern: Bounded Retry. Attempts run strictly one after another; every
// resumption point re-checks the stop flag, and every state write is
// serialized with it.
func (a *Activation[T]) run(attempt attemptFunc[T]) {
	policy := a.setup.policy
	hooks := &a.setup.hooks
	st := State[T]{Phase: PhaseLoading}

	for {
		if !a.Active() {
			return
		}

		n := st.Attempts + 1
		hooks.emitAttempt(n, policy.MaxAttempts)

		begin := a.setup.clock.Now()

		out, ok := a.await(attempt, n)
		if !ok {
			return
		}

		hooks.emitAttemptDone(n, a.setup.clock.Now().Sub(begin), out.Err)

		st = Next(st, out, policy.MaxAttempts, a.setup.message)

		if !a.publish(st, out.Err) {
			a.discard(n, out)
			return
		}

		switch st.Phase {
		case PhaseReady:
			hooks.emitReady(n)
			return
		case PhaseDegraded:
			hooks.emitDegraded(st.Attempts, out.Err)
			return
		case PhaseLoading:
		}

		delay := policy.delay(st.Attempts)
		hooks.emitRetry(n, delay)

		if !a.sleep(delay) {
			return
		}
	}
}

// await runs one attempt on its own goroutine and waits for it or for
// deactivation. On deactivation the attempt keeps running and its result is
// discarded when it arrives.
func (a *Activation[T]) await(attempt attemptFunc[T], n int) (Outcome[T], bool) {
	results := make(chan Outcome[T], 1)

	go func() {
		results <- attempt(a.ctx, n, a.Active)
	}()

	select {
	case out := <-results:
		return out, true
	case <-a.stop:
		go func() {
			a.discard(n, <-results)
		}()

		return Outcome[T]{}, false
	}
}

// sleep waits d or until deactivation, reporting whether the loop may go on.
func (a *Activation[T]) sleep(d time.Duration) bool {
	timer := a.setup.clock.NewTimer(d)

	select {
	case <-timer.C():
		return true
	case <-a.stop:
		timer.Stop()
		return false
	}
}

// publish stores st unless the activation was deactivated.
func (a *Activation[T]) publish(st State[T], err error) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return false
	}

	a.state = st
	if err != nil {
		a.lastErr = err
	}

	close(a.changed)
	a.changed = make(chan struct{})

	return true
}

// discard drops the result of an attempt that finished after deactivation.
func (a *Activation[T]) discard(n int, out Outcome[T]) {
	if out.Err == nil && a.setup.release != nil {
		a.setup.release(out.Instance)
	}

	a.setup.hooks.emitStaleResult(n, out.Err)
}
