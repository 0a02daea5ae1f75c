package warmup

import "context"

// Engine is the third-party client library an [Initializer] drives. Bootstrap
// performs any one-time setup of the underlying engine; Construct builds an
// instance from an opaque client configuration. Both may fail with any error;
// a panic is recovered and recorded as a failed attempt wrapping
// [ErrEnginePanic].
type Engine[C, T any] interface {
	Bootstrap(ctx context.Context) error
	Construct(ctx context.Context, cfg C) (T, error)
}

// EngineFuncs adapts a pair of functions into an [Engine]. A nil
// BootstrapFunc is a no-op.
type EngineFuncs[C, T any] struct {
	BootstrapFunc func(ctx context.Context) error
	ConstructFunc func(ctx context.Context, cfg C) (T, error)
}

// Bootstrap calls BootstrapFunc when set.
func (e EngineFuncs[C, T]) Bootstrap(ctx context.Context) error {
	if e.BootstrapFunc == nil {
		return nil
	}

	return e.BootstrapFunc(ctx)
}

// Construct calls ConstructFunc.
//
//nolint:ireturn // generic type parameter T, not an interface
func (e EngineFuncs[C, T]) Construct(ctx context.Context, cfg C) (T, error) {
	return e.ConstructFunc(ctx, cfg)
}
