package warmup

import "time"

// Hooks holds optional callbacks for initializer lifecycle events. All fields
// are nil by default; set only those you need. A Hooks value must not be
// mutated once passed to an initializer.
//
// Callbacks run on the activation goroutine, except OnStaleResult which runs
// on the goroutine draining an abandoned attempt, so implementations must be
// safe for concurrent use.
//
// Pattern: Observer. Logging and metrics subscribe to lifecycle events
// without the retry loop knowing about them.
type Hooks struct {
	OnActivate    func(id string)
	OnAttempt     func(attempt, maxAttempts int)
	OnAttemptDone func(attempt int, elapsed time.Duration, err error)
	OnRetry       func(attempt int, delay time.Duration)
	OnReady       func(attempt int)
	OnDegraded    func(attempts int, lastErr error)
	OnDeactivate  func(id string)
	OnStaleResult func(attempt int, err error)
}

// MergeHooks returns hooks that call every non-nil callback of hs in order.
func MergeHooks(hs ...Hooks) Hooks {
	var merged Hooks

	for _, h := range hs {
		merged.OnActivate = chain1(merged.OnActivate, h.OnActivate)
		merged.OnAttempt = chain2(merged.OnAttempt, h.OnAttempt)
		merged.OnAttemptDone = chain3(merged.OnAttemptDone, h.OnAttemptDone)
		merged.OnRetry = chain2(merged.OnRetry, h.OnRetry)
		merged.OnReady = chain1(merged.OnReady, h.OnReady)
		merged.OnDegraded = chain2(merged.OnDegraded, h.OnDegraded)
		merged.OnDeactivate = chain1(merged.OnDeactivate, h.OnDeactivate)
		merged.OnStaleResult = chain2(merged.OnStaleResult, h.OnStaleResult)
	}

	return merged
}

func chain1[A any](a, b func(A)) func(A) {
	if a == nil {
		return b
	}

	if b == nil {
		return a
	}

	return func(x A) { a(x); b(x) }
}

func chain2[A, B any](a, b func(A, B)) func(A, B) {
	if a == nil {
		return b
	}

	if b == nil {
		return a
	}

	return func(x A, y B) { a(x, y); b(x, y) }
}

func chain3[A, B, C any](a, b func(A, B, C)) func(A, B, C) {
	if a == nil {
		return b
	}

	if b == nil {
		return a
	}

	return func(x A, y B, z C) { a(x, y, z); b(x, y, z) }
}

func (h *Hooks) emitActivate(id string) {
	if h.OnActivate != nil {
		h.OnActivate(id)
	}
}

func (h *Hooks) emitAttempt(attempt, maxAttempts int) {
	if h.OnAttempt != nil {
		h.OnAttempt(attempt, maxAttempts)
	}
}

func (h *Hooks) emitAttemptDone(attempt int, elapsed time.Duration, err error) {
	if h.OnAttemptDone != nil {
		h.OnAttemptDone(attempt, elapsed, err)
	}
}

func (h *Hooks) emitRetry(attempt int, delay time.Duration) {
	if h.OnRetry != nil {
		h.OnRetry(attempt, delay)
	}
}

func (h *Hooks) emitReady(attempt int) {
	if h.OnReady != nil {
		h.OnReady(attempt)
	}
}

func (h *Hooks) emitDegraded(attempts int, lastErr error) {
	if h.OnDegraded != nil {
		h.OnDegraded(attempts, lastErr)
	}
}

func (h *Hooks) emitDeactivate(id string) {
	if h.OnDeactivate != nil {
		h.OnDeactivate(id)
	}
}

func (h *Hooks) emitStaleResult(attempt int, err error) {
	if h.OnStaleResult != nil {
		h.OnStaleResult(attempt, err)
	}
}
