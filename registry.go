package warmup

import (
	"sync"
	"sync/atomic"
)

// ---------------------------------------------------------------------------
// ReadinessStatus
// ---------------------------------------------------------------------------

type (
	// ReadinessStatus is the result of checking all registered initializers.
	ReadinessStatus struct {
		Initializers []Status `json:"initializers"`
		Ready        bool     `json:"ready"`
	}

	// Registry tracks HealthReporter instances and stores initializer
	// configurations loaded from files.
	//
	// Pattern: Singleton. DefaultRegistry uses sync.OnceValue for safe lazy
	// init; explicit registries serve tests and multi-tenant hosts.
	Registry struct {
		reporters atomic.Pointer[[]HealthReporter]
		configs   map[string]InitializerConfig
		mu        sync.Mutex
	}
)

//nolint:gochecknoglobals // singleton via sync.OnceValue
var defaultRegistry = sync.OnceValue(NewRegistry)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}

	var empty []HealthReporter

	r.reporters.Store(&empty)

	return r
}

// Register adds a HealthReporter to the registry. A reporter with the same
// name replaces the earlier one, so re-creating an initializer does not leave
// a stale entry behind.
func (r *Registry) Register(hr HealthReporter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := *r.reporters.Load()

	// Copy-on-write: readers may be iterating the old slice.
	updated := make([]HealthReporter, 0, len(old)+1)
	for _, existing := range old {
		if existing.Name() != hr.Name() {
			updated = append(updated, existing)
		}
	}

	updated = append(updated, hr)
	r.reporters.Store(&updated)
}

// Reporters returns the registered reporters in registration order.
func (r *Registry) Reporters() []HealthReporter {
	return *r.reporters.Load()
}

// CheckReadiness builds a ReadinessStatus over every registered reporter.
// Ready is false if any initializer is unhealthy with CriticalityCritical.
func (r *Registry) CheckReadiness() ReadinessStatus {
	reporters := *r.reporters.Load()

	status := ReadinessStatus{
		Ready:        true,
		Initializers: make([]Status, 0, len(reporters)),
	}

	for _, hr := range reporters {
		s := hr.HealthStatus()
		status.Initializers = append(status.Initializers, s)

		if s.Criticality == CriticalityCritical && !s.Healthy {
			status.Ready = false
		}
	}

	return status
}

// DefaultRegistry returns the package-level registry, creating it on first
// call.
func DefaultRegistry() *Registry {
	return defaultRegistry()
}
