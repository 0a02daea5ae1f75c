package warmup

import "fmt"

// ---------------------------------------------------------------------------
// HealthReporter interface
// ---------------------------------------------------------------------------

type (
	// HealthReporter is implemented by every Initializer[C, T]. The interface
	// is non-generic so initializers of different types share one registry.
	HealthReporter interface {
		// Name returns the initializer's name.
		Name() string
		// HealthStatus returns the current health of the initializer.
		HealthStatus() Status
	}

	// Criticality represents how an unhealthy initializer affects readiness.
	Criticality int

	// Status is the health of one initializer.
	Status struct {
		Name        string      `json:"name"`
		State       string      `json:"state"`
		Message     string      `json:"message,omitempty"`
		Attempts    int         `json:"attempts"`
		Criticality Criticality `json:"criticality"`
		Healthy     bool        `json:"healthy"`
	}
)

const (
	// CriticalityNone means the initializer has no effect on readiness.
	CriticalityNone Criticality = iota
	// CriticalityDegraded means the host still serves with a feature
	// disabled.
	CriticalityDegraded
	// CriticalityCritical means the host cannot serve without the instance.
	CriticalityCritical
)

// String returns the criticality level as a human-readable string.
func (c Criticality) String() string {
	switch c {
	case CriticalityDegraded:
		return "degraded"
	case CriticalityCritical:
		return "critical"
	default:
		return "none"
	}
}

// MarshalText encodes the level as its name.
func (c Criticality) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a level name.
func (c *Criticality) UnmarshalText(text []byte) error {
	parsed, ok := ParseCriticality(string(text))
	if !ok {
		return fmt.Errorf("unknown criticality %q", text)
	}

	*c = parsed

	return nil
}

// ParseCriticality maps a level name back to its [Criticality].
func ParseCriticality(s string) (Criticality, bool) {
	switch s {
	case "none":
		return CriticalityNone, true
	case "degraded":
		return CriticalityDegraded, true
	case "critical":
		return CriticalityCritical, true
	default:
		return CriticalityNone, false
	}
}

// ---------------------------------------------------------------------------
// HealthStatus on Initializer[C, T]
// ---------------------------------------------------------------------------

// HealthStatus derives the initializer's health from its current activation.
// Only a degraded activation is unhealthy, and it carries the configured
// criticality.
func (i *Initializer[C, T]) HealthStatus() Status {
	status := Status{
		Name:    i.name,
		Healthy: true,
		State:   "inactive",
	}

	a := i.Current()
	if a == nil || !a.Active() {
		return status
	}

	st := a.State()
	status.State = st.Phase.String()
	status.Attempts = st.Attempts

	if st.Phase == PhaseDegraded {
		status.Healthy = false
		status.Criticality = i.crit
		status.Message = st.Reason
	}

	return status
}
