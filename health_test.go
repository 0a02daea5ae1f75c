package warmup

import (
	"context"
	"testing"
)

func TestHealthStatusLifecycle(t *testing.T) {
	clk := newManualClock()
	reg := NewRegistry()

	initr := NewInitializer[string, *client]("relayer", &countingEngine{construct: failUntil(100)}, "cfg",
		WithRegistry(reg),
		WithClock(clk),
		WithAttempts(2),
		WithCriticality(CriticalityCritical),
	)

	if s := initr.HealthStatus(); s.State != "inactive" || !s.Healthy {
		t.Fatalf("before activation: %+v, want healthy inactive", s)
	}

	a := initr.Activate(context.Background())

	clk.nextTimer(t).fire()
	waitDone(t, a)

	s := initr.HealthStatus()
	if s.Healthy || s.State != "degraded" || s.Criticality != CriticalityCritical {
		t.Fatalf("degraded: %+v, want unhealthy critical", s)
	}

	if s.Message != DefaultDegradedMessage || s.Attempts != 2 || s.Name != "relayer" {
		t.Fatalf("degraded: %+v, want default message after 2 attempts", s)
	}

	a.Deactivate()

	if s = initr.HealthStatus(); s.State != "inactive" || !s.Healthy {
		t.Fatalf("after deactivation: %+v, want healthy inactive", s)
	}
}

func TestHealthStatusLoadingAndReady(t *testing.T) {
	clk := newManualClock()

	initr := NewInitializer[string, *client]("", &countingEngine{construct: failUntil(2)}, "cfg", WithClock(clk))

	a := initr.Activate(context.Background())
	defer a.Deactivate()

	tmr := clk.nextTimer(t)

	if s := initr.HealthStatus(); s.State != "loading" || !s.Healthy || s.Attempts != 1 {
		t.Fatalf("loading: %+v, want healthy loading after 1 attempt", s)
	}

	tmr.fire()
	waitDone(t, a)

	if s := initr.HealthStatus(); s.State != "ready" || !s.Healthy || s.Criticality != CriticalityNone {
		t.Fatalf("ready: %+v, want healthy ready", s)
	}
}

func TestCriticalityText(t *testing.T) {
	for _, c := range []Criticality{CriticalityNone, CriticalityDegraded, CriticalityCritical} {
		text, err := c.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", c, err)
		}

		var back Criticality
		if err = back.UnmarshalText(text); err != nil || back != c {
			t.Fatalf("round trip of %v gave %v, %v", c, back, err)
		}
	}

	var c Criticality
	if err := c.UnmarshalText([]byte("fatal")); err == nil {
		t.Fatal("expected error for unknown criticality")
	}

	if _, ok := ParseCriticality("fatal"); ok {
		t.Fatal("ParseCriticality accepted an unknown level")
	}
}
