package warmup

import (
	"context"
	"fmt"
)

// Init runs a single anonymous activation to completion and returns its
// instance. It is meant for callers with no observer to feed, such as CLIs and
// service start-up. When every attempt fails the error wraps both
// [ErrAttemptsExhausted] and the last attempt error; when ctx ends first it
// is ctx's error.
//
//nolint:ireturn // generic type parameter T, not an interface
func Init[C, T any](ctx context.Context, engine Engine[C, T], cfg C, opts ...any) (T, error) {
	var zero T

	a := NewInitializer[C, T]("", engine, cfg, opts...).Activate(ctx)

	snap, err := a.Wait(ctx)
	if err != nil {
		a.Deactivate()

		if ctx.Err() != nil {
			return zero, ctx.Err() //nolint:wrapcheck // preserving context error identity
		}

		return zero, err
	}

	if snap.Phase == PhaseDegraded {
		return zero, fmt.Errorf("%w: %w", ErrAttemptsExhausted, a.lastError())
	}

	return snap.Instance, nil
}
