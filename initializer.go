package warmup

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"
)

// DefaultDegradedMessage is the advisory shown when the encryption client
// could not be initialized. The rest of the application keeps working.
const DefaultDegradedMessage = "Decryption unavailable. Draw rewards still work."

// ---------------------------------------------------------------------------
// Initializer[C, T]
// ---------------------------------------------------------------------------

// Initializer turns an [Engine] and a client configuration into activations,
// each of which runs the bounded bootstrap+construct retry sequence once. Use
// [NewInitializer] with functional options to configure it.
//
// At most one activation is current per initializer: [Initializer.Activate]
// deactivates the previous one before starting the next, mirroring an
// unmount followed by a mount.
//
// Pattern: Functional Options. Generic options (empty check, release) are
// carried as any and interpreted once the type parameters are known.
type Initializer[C, T any] struct {
	engine   Engine[C, T]
	cfg      C
	isEmpty  func(T) bool
	release  func(T)
	registry *Registry
	current  *Activation[T]
	clock    Clock
	hooks    Hooks
	name     string
	message  string
	policy   RetryPolicy
	crit     Criticality
	mu       sync.Mutex
}

// Name returns the initializer's name.
func (i *Initializer[C, T]) Name() string { return i.name }

// Policy returns the normalized retry policy.
func (i *Initializer[C, T]) Policy() RetryPolicy { return i.policy }

// Activate starts a new activation and returns it. The previous activation,
// if any, is deactivated first. Cancelling ctx deactivates the activation; ctx
// is also the context handed to the engine, and deactivation does not cancel
// it.
func (i *Initializer[C, T]) Activate(ctx context.Context) *Activation[T] {
	a := newActivation[T](ctx, activationSetup[T]{
		policy:  i.policy,
		hooks:   i.hooks,
		clock:   i.clock,
		message: i.message,
		release: i.release,
	})

	i.mu.Lock()
	prev := i.current
	i.current = a
	i.mu.Unlock()

	if prev != nil {
		prev.Deactivate()
	}

	a.start(i.attempt)

	return a
}

// Current returns the current activation, or nil if none was started.
func (i *Initializer[C, T]) Current() *Activation[T] {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.current
}

// Snapshot returns the current activation's snapshot. Before the first
// activation it reports loading, like a freshly mounted observer.
func (i *Initializer[C, T]) Snapshot() Snapshot[T] {
	if a := i.Current(); a != nil {
		return a.Snapshot()
	}

	return snapshotOf(State[T]{Phase: PhaseLoading})
}

// Deactivate deactivates the current activation, if any.
func (i *Initializer[C, T]) Deactivate() {
	if a := i.Current(); a != nil {
		a.Deactivate()
	}
}

// attempt runs bootstrap then construct once. Every failure, including an
// engine panic, is returned as an *AttemptError in the outcome. Construct is
// skipped when the activation was deactivated during bootstrap.
func (i *Initializer[C, T]) attempt(ctx context.Context, n int, active func() bool) (out Outcome[T]) {
	stage := StageBootstrap

	defer func() {
		if r := recover(); r != nil {
			out = Outcome[T]{Err: &AttemptError{Stage: stage, Attempt: n, Err: fmt.Errorf("%w: %v", ErrEnginePanic, r)}}
		}
	}()

	if i.policy.AttemptTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, i.policy.AttemptTimeout)
		defer cancel()
	}

	if err := i.engine.Bootstrap(ctx); err != nil {
		return Outcome[T]{Err: attemptFailure(ctx, StageBootstrap, n, err)}
	}

	if !active() {
		return Outcome[T]{Err: &AttemptError{Stage: StageBootstrap, Attempt: n, Err: ErrDeactivated}}
	}

	stage = StageConstruct

	inst, err := i.engine.Construct(ctx, i.cfg)
	if err != nil {
		return Outcome[T]{Err: attemptFailure(ctx, StageConstruct, n, err)}
	}

	stage = StageVerify

	if i.isEmpty(inst) {
		return Outcome[T]{Err: &AttemptError{Stage: StageVerify, Attempt: n, Err: ErrEmptyInstance}}
	}

	return Outcome[T]{Instance: inst}
}

func attemptFailure(ctx context.Context, stage Stage, n int, err error) error {
	// A deadline hit on our own attempt context is reported as a timeout.
	if errors.Is(err, context.DeadlineExceeded) && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %w", ErrAttemptTimeout, err)
	}

	return &AttemptError{Stage: stage, Attempt: n, Err: err}
}

// isZero is the default empty check: the zero value of T (nil pointer, nil
// interface, empty string, zero struct) is empty.
func isZero[T any](v T) bool {
	return reflect.ValueOf(&v).Elem().IsZero()
}

// ---------------------------------------------------------------------------
// Non-generic option descriptors, stored as any and interpreted by
// NewInitializer[C, T]
// ---------------------------------------------------------------------------

type (
	// optionFunc modifies the non-generic part of the setup.
	optionFunc func(*setup)

	// setup holds non-generic configuration collected during NewInitializer.
	setup struct {
		clock    Clock
		registry *Registry
		hooks    Hooks
		message  string
		policy   RetryPolicy
		crit     Criticality
	}

	// emptyCheckDesc holds a type-erased func(T) bool.
	emptyCheckDesc struct {
		fn any
	}

	// releaseDesc holds a type-erased func(T).
	releaseDesc struct {
		fn any
	}
)

// WithRetryPolicy replaces the whole retry policy.
func WithRetryPolicy(p RetryPolicy) any {
	return optionFunc(func(s *setup) {
		s.policy = p
	})
}

// WithAttempts sets the attempt ceiling.
func WithAttempts(n int) any {
	return optionFunc(func(s *setup) {
		s.policy.MaxAttempts = n
	})
}

// WithBackoff sets the strategy computing the pause between attempts.
func WithBackoff(b BackoffStrategy) any {
	return optionFunc(func(s *setup) {
		s.policy.Backoff = b
	})
}

// WithDelay sets a constant pause between attempts.
func WithDelay(d time.Duration) any {
	return WithBackoff(ConstantBackoff(d))
}

// WithMaxDelay caps the pause between attempts.
func WithMaxDelay(d time.Duration) any {
	return optionFunc(func(s *setup) {
		s.policy.MaxDelay = d
	})
}

// WithAttemptTimeout bounds each attempt through its context deadline.
func WithAttemptTimeout(d time.Duration) any {
	return optionFunc(func(s *setup) {
		s.policy.AttemptTimeout = d
	})
}

// WithClock sets the clock used for the pauses between attempts.
func WithClock(c Clock) any {
	return optionFunc(func(s *setup) {
		s.clock = c
	})
}

// WithHooks sets the lifecycle hooks.
func WithHooks(h Hooks) any {
	return optionFunc(func(s *setup) {
		s.hooks = h
	})
}

// WithRegistry sets an explicit registry for the initializer to register with.
// If not provided, named initializers auto-register with DefaultRegistry.
func WithRegistry(reg *Registry) any {
	return optionFunc(func(s *setup) {
		s.registry = reg
	})
}

// WithDegradedMessage sets the static advisory shown once attempts are
// exhausted.
func WithDegradedMessage(msg string) any {
	return optionFunc(func(s *setup) {
		s.message = msg
	})
}

// WithCriticality sets how a degraded initializer affects readiness. The
// default, [CriticalityDegraded], keeps the host ready.
func WithCriticality(c Criticality) any {
	return optionFunc(func(s *setup) {
		s.crit = c
	})
}

// WithEmptyCheck replaces the zero-value test deciding whether a constructed
// instance is empty. The type must match the initializer's instance type.
func WithEmptyCheck[T any](fn func(T) bool) any {
	return emptyCheckDesc{fn: fn}
}

// WithRelease sets a function releasing an instance the caller no longer
// owns: the ready instance of a deactivated activation, or an instance
// produced by an attempt whose result was suppressed. The type must match the
// initializer's instance type.
func WithRelease[T any](fn func(T)) any {
	return releaseDesc{fn: fn}
}

// ---------------------------------------------------------------------------
// NewInitializer[C, T]
// ---------------------------------------------------------------------------

// NewInitializer creates an [Initializer] with the given name, engine, client
// configuration and options. Options are applied in order, so later options
// override earlier ones (config-derived options first, code options last).
// Named initializers register with [DefaultRegistry] unless [WithRegistry]
// is given; an empty name keeps the initializer anonymous.
//
// It panics if a generic option's type does not match T.
func NewInitializer[C, T any](name string, engine Engine[C, T], cfg C, opts ...any) *Initializer[C, T] {
	s := setup{
		policy:  DefaultRetryPolicy(),
		message: DefaultDegradedMessage,
		crit:    CriticalityDegraded,
	}

	i := &Initializer[C, T]{
		name:    name,
		engine:  engine,
		cfg:     cfg,
		isEmpty: isZero[T],
	}

	for _, opt := range opts {
		switch desc := opt.(type) {
		case optionFunc:
			desc(&s)

		case emptyCheckDesc:
			fn, ok := desc.fn.(func(T) bool)
			if !ok {
				panic(fmt.Sprintf("warmup: WithEmptyCheck: got %T, want func(%T) bool", desc.fn, *new(T)))
			}

			if fn != nil {
				i.isEmpty = fn
			}

		case releaseDesc:
			fn, ok := desc.fn.(func(T))
			if !ok {
				panic(fmt.Sprintf("warmup: WithRelease: got %T, want func(%T)", desc.fn, *new(T)))
			}

			i.release = fn
		}
	}

	if s.clock == nil {
		s.clock = RealClock{}
	}

	i.clock = s.clock
	i.hooks = s.hooks
	i.policy = s.policy.normalized()
	i.message = s.message
	i.crit = s.crit

	if name != "" {
		i.registry = s.registry
		if i.registry == nil {
			i.registry = DefaultRegistry()
		}

		i.registry.Register(i)
	}

	return i
}
