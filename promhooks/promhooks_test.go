package promhooks_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/warmup"
	"github.com/byte4ever/warmup/promhooks"
)

// instantClock fires every pause at once.
type instantClock struct{}

type firedTimer struct{ ch chan time.Time }

func (t firedTimer) C() <-chan time.Time { return t.ch }
func (firedTimer) Stop() bool            { return false }

func (instantClock) Now() time.Time { return time.Now() }

func (instantClock) NewTimer(time.Duration) warmup.Timer {
	ch := make(chan time.Time, 1)
	ch <- time.Now()

	return firedTimer{ch: ch}
}

func engine(failures int) warmup.EngineFuncs[string, *string] {
	calls := 0

	return warmup.EngineFuncs[string, *string]{
		ConstructFunc: func(_ context.Context, cfg string) (*string, error) {
			calls++
			if calls <= failures {
				return nil, errors.New("relayer unreachable")
			}

			return &cfg, nil
		},
	}
}

func run(t *testing.T, c *promhooks.Collector, name string, failures int) *warmup.Activation[*string] {
	t.Helper()

	a := warmup.NewInitializer[string, *string]("", engine(failures), "cfg",
		warmup.WithClock(instantClock{}),
		warmup.WithHooks(c.Hooks(name)),
	).Activate(context.Background())

	select {
	case <-a.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("activation did not finish")
	}

	return a
}

func TestCollectorReady(t *testing.T) {
	reg := prometheus.NewRegistry()

	c, err := promhooks.New(reg)
	require.NoError(t, err)

	a := run(t, c, "relayer", 1)

	require.InDelta(t, 2, counter(t, reg, "warmup_attempts_total"), 0)
	require.InDelta(t, 1, counter(t, reg, "warmup_retries_total"), 0)
	require.InDelta(t, promhooks.PhaseReady, gauge(t, reg, "relayer"), 0)

	a.Deactivate()
	require.InDelta(t, promhooks.PhaseInactive, gauge(t, reg, "relayer"), 0)
}

func TestCollectorDegraded(t *testing.T) {
	reg := prometheus.NewRegistry()

	c, err := promhooks.New(reg)
	require.NoError(t, err)

	run(t, c, "relayer", 10)

	require.InDelta(t, promhooks.PhaseDegraded, gauge(t, reg, "relayer"), 0)

	failures := `
# HELP warmup_attempt_failures_total Total number of failed initialization attempts by failing step
# TYPE warmup_attempt_failures_total counter
warmup_attempt_failures_total{initializer="relayer",stage="construct"} 3
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(failures), "warmup_attempt_failures_total"))

	count, err := testutil.GatherAndCount(reg, "warmup_attempt_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestNewReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()

	first, err := promhooks.New(reg)
	require.NoError(t, err)

	second, err := promhooks.New(reg)
	require.NoError(t, err)

	run(t, first, "a", 0)
	run(t, second, "b", 0)

	count, err := testutil.GatherAndCount(reg, "warmup_attempts_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestHooksStartInactive(t *testing.T) {
	reg := prometheus.NewRegistry()

	c, err := promhooks.New(reg)
	require.NoError(t, err)

	c.Hooks("idle")
	require.InDelta(t, promhooks.PhaseInactive, gauge(t, reg, "idle"), 0)
}

// counter sums the samples of the counter family called name.
func counter(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	var sum float64

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}

		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
	}

	return sum
}

func gauge(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != "warmup_phase" {
			continue
		}

		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "initializer" && lp.GetValue() == name {
					return m.GetGauge().GetValue()
				}
			}
		}
	}

	t.Fatalf("phase gauge for %s not found", name)

	return 0
}
