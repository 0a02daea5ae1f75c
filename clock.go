package warmup

import "time"

// Clock abstracts the timers used between attempts so that retry pacing can
// be tested without sleeping. Production code uses [RealClock].
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// NewTimer returns a [Timer] that fires once after d.
	NewTimer(d time.Duration) Timer
}

// Timer is the subset of [time.Timer] the initializer needs.
type Timer interface {
	// C delivers the firing time.
	C() <-chan time.Time
	// Stop prevents the timer from firing and reports whether it was still
	// active.
	Stop() bool
}

// RealClock is a stateless [Clock] backed by the [time] package.
type RealClock struct{}

// Now returns [time.Now].
func (RealClock) Now() time.Time { return time.Now() }

// NewTimer wraps [time.NewTimer].
func (RealClock) NewTimer(d time.Duration) Timer {
	return realTimer{t: time.NewTimer(d)}
}

type realTimer struct {
	t *time.Timer
}

func (r realTimer) C() <-chan time.Time { return r.t.C }
func (r realTimer) Stop() bool          { return r.t.Stop() }
