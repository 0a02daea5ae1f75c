package warmup

import (
	"testing"
	"time"
)

func TestRealClockNow(t *testing.T) {
	c := RealClock{}
	before := time.Now()
	got := c.Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Fatalf("Now() = %v, want between %v and %v", got, before, after)
	}
}

func TestRealClockNewTimerFires(t *testing.T) {
	tmr := RealClock{}.NewTimer(10 * time.Millisecond)

	select {
	case ts := <-tmr.C():
		if ts.IsZero() {
			t.Fatal("timer fired with zero time")
		}
	case <-time.After(time.Second):
		t.Fatal("timer did not fire within 1s")
	}
}

func TestRealClockNewTimerStop(t *testing.T) {
	tmr := RealClock{}.NewTimer(time.Hour)

	if !tmr.Stop() {
		t.Fatal("Stop() = false, want true for unfired timer")
	}

	if tmr.Stop() {
		t.Fatal("second Stop() = true, want false")
	}
}

func TestFakeClocksSatisfyInterface(t *testing.T) {
	var _ Clock = (*immediateClock)(nil)
	var _ Clock = (*manualClock)(nil)
	var _ Timer = (*testTimer)(nil)
}
