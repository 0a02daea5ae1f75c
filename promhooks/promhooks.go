package promhooks

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/byte4ever/warmup"
)

// Phase gauge values.
const (
	PhaseInactive = -1
	PhaseLoading  = 0
	PhaseReady    = 1
	PhaseDegraded = 2
)

// Collector holds the metric vectors shared by every initializer it observes.
type Collector struct {
	attempts *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
	retries  *prometheus.CounterVec
	stale    *prometheus.CounterVec
	phase    *prometheus.GaugeVec
}

// New creates a Collector and registers its metrics with reg. Metrics already
// registered by an earlier Collector on the same registerer are reused.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "warmup",
				Name:      "attempts_total",
				Help:      "Total number of initialization attempts started",
			},
			[]string{"initializer"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "warmup",
				Name:      "attempt_failures_total",
				Help:      "Total number of failed initialization attempts by failing step",
			},
			[]string{"initializer", "stage"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "warmup",
				Name:      "attempt_duration_seconds",
				Help:      "Duration of initialization attempts in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"initializer"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "warmup",
				Name:      "retries_total",
				Help:      "Total number of retries scheduled after a failed attempt",
			},
			[]string{"initializer"},
		),
		stale: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "warmup",
				Name:      "stale_results_total",
				Help:      "Total number of attempt results discarded after deactivation",
			},
			[]string{"initializer"},
		),
		phase: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "warmup",
				Name:      "phase",
				Help:      "Initialization phase (-1=inactive, 0=loading, 1=ready, 2=degraded)",
			},
			[]string{"initializer"},
		),
	}

	var err error

	if c.attempts, err = register(reg, c.attempts); err != nil {
		return nil, err
	}

	if c.failures, err = register(reg, c.failures); err != nil {
		return nil, err
	}

	if c.duration, err = register(reg, c.duration); err != nil {
		return nil, err
	}

	if c.retries, err = register(reg, c.retries); err != nil {
		return nil, err
	}

	if c.stale, err = register(reg, c.stale); err != nil {
		return nil, err
	}

	if c.phase, err = register(reg, c.phase); err != nil {
		return nil, err
	}

	return c, nil
}

// register registers col, returning the already registered collector when an
// identical one exists.
func register[V prometheus.Collector](reg prometheus.Registerer, col V) (V, error) {
	err := reg.Register(col)
	if err == nil {
		return col, nil
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(V); ok {
			return existing, nil
		}
	}

	return col, fmt.Errorf("promhooks: register: %w", err)
}

// Hooks returns warmup hooks recording the lifecycle of the initializer
// called name.
func (c *Collector) Hooks(name string) warmup.Hooks {
	phase := c.phase.WithLabelValues(name)
	phase.Set(PhaseInactive)

	return warmup.Hooks{
		OnActivate: func(string) {
			phase.Set(PhaseLoading)
		},
		OnAttempt: func(int, int) {
			c.attempts.WithLabelValues(name).Inc()
		},
		OnAttemptDone: func(_ int, elapsed time.Duration, err error) {
			c.duration.WithLabelValues(name).Observe(elapsed.Seconds())

			if err == nil {
				return
			}

			stage := "unknown"
			if s, ok := warmup.StageOf(err); ok {
				stage = s.String()
			}

			c.failures.WithLabelValues(name, stage).Inc()
		},
		OnRetry: func(int, time.Duration) {
			c.retries.WithLabelValues(name).Inc()
		},
		OnReady: func(int) {
			phase.Set(PhaseReady)
		},
		OnDegraded: func(int, error) {
			phase.Set(PhaseDegraded)
		},
		OnDeactivate: func(string) {
			phase.Set(PhaseInactive)
		},
		OnStaleResult: func(int, error) {
			c.stale.WithLabelValues(name).Inc()
		},
	}
}
