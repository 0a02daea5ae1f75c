package warmup

import "fmt"

// ---------------------------------------------------------------------------
// Phase
// ---------------------------------------------------------------------------

// Phase is the coarse initialization status of an activation.
type Phase int

const (
	// PhaseLoading means attempts are in progress or pending.
	PhaseLoading Phase = iota
	// PhaseReady means an instance was constructed. Terminal.
	PhaseReady
	// PhaseDegraded means every attempt failed and the optional feature
	// backed by the instance is unavailable. Terminal.
	PhaseDegraded
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseDegraded:
		return "degraded"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText encodes the phase as its name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range []Phase{PhaseLoading, PhaseReady, PhaseDegraded} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}

	return fmt.Errorf("unknown phase %q", text)
}

// Terminal reports whether no further transition can leave p.
func (p Phase) Terminal() bool {
	return p == PhaseReady || p == PhaseDegraded
}

// ---------------------------------------------------------------------------
// State, Outcome and the transition function
// ---------------------------------------------------------------------------

type (
	// State is the full initialization state of one activation.
	State[T any] struct {
		// Instance is set only in PhaseReady.
		Instance T
		// Reason is the advisory message, set only in PhaseDegraded.
		Reason string
		// Attempts counts the attempts consumed so far.
		Attempts int
		Phase    Phase
	}

	// Outcome is the result of a single attempt. A nil Err means both steps
	// succeeded with a non-empty instance.
	Outcome[T any] struct {
		Instance T
		Err      error
	}
)

// Next computes the state following cur once an attempt has produced out.
// Terminal states are returned unchanged. A successful outcome moves to
// PhaseReady; a failed one consumes an attempt and stays in PhaseLoading
// until maxAttempts attempts have been used, then moves to PhaseDegraded
// with reason as the advisory message.
func Next[T any](cur State[T], out Outcome[T], maxAttempts int, reason string) State[T] {
	if cur.Phase.Terminal() {
		return cur
	}

	next := State[T]{Attempts: cur.Attempts + 1}

	if out.Err == nil {
		next.Phase = PhaseReady
		next.Instance = out.Instance

		return next
	}

	if next.Attempts >= maxAttempts {
		next.Phase = PhaseDegraded
		next.Reason = reason

		return next
	}

	next.Phase = PhaseLoading

	return next
}

// ---------------------------------------------------------------------------
// Snapshot: the read-only view handed to observers
// ---------------------------------------------------------------------------

// Snapshot is the observer's view of an activation: the instance when ready,
// a loading flag, and a static advisory message when degraded. Underlying
// attempt errors never appear here.
type Snapshot[T any] struct {
	Instance  T      `json:"-"`
	Error     string `json:"error,omitempty"`
	Phase     Phase  `json:"phase"`
	Attempts  int    `json:"attempts"`
	IsLoading bool   `json:"is_loading"`
}

// Ready reports whether the snapshot carries an instance.
func (s Snapshot[T]) Ready() bool { return s.Phase == PhaseReady }

func snapshotOf[T any](st State[T]) Snapshot[T] {
	return Snapshot[T]{
		Instance:  st.Instance,
		Error:     st.Reason,
		Phase:     st.Phase,
		Attempts:  st.Attempts,
		IsLoading: st.Phase == PhaseLoading,
	}
}
