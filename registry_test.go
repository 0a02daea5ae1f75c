package warmup

import (
	"sync"
	"testing"
)

// stubReporter is a fixed HealthReporter.
type stubReporter struct {
	name   string
	status Status
}

func (s stubReporter) Name() string         { return s.name }
func (s stubReporter) HealthStatus() Status { return s.status }

func TestRegistryRegisterReplacesSameName(t *testing.T) {
	reg := NewRegistry()

	reg.Register(stubReporter{name: "a", status: Status{Name: "a", State: "loading"}})
	reg.Register(stubReporter{name: "b"})
	reg.Register(stubReporter{name: "a", status: Status{Name: "a", State: "ready"}})

	reporters := reg.Reporters()
	if len(reporters) != 2 {
		t.Fatalf("len(Reporters()) = %d, want 2", len(reporters))
	}

	if reporters[0].Name() != "b" || reporters[1].HealthStatus().State != "ready" {
		t.Fatalf("reporters = %v, want b then the newer a", reporters)
	}
}

func TestCheckReadiness(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		ready  bool
	}{
		{name: "healthy critical", status: Status{Healthy: true, Criticality: CriticalityCritical}, ready: true},
		{name: "degraded optional", status: Status{Healthy: false, Criticality: CriticalityDegraded}, ready: true},
		{name: "unhealthy none", status: Status{Healthy: false, Criticality: CriticalityNone}, ready: true},
		{name: "degraded critical", status: Status{Healthy: false, Criticality: CriticalityCritical}, ready: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			reg.Register(stubReporter{name: "x", status: tt.status})

			rs := reg.CheckReadiness()
			if rs.Ready != tt.ready {
				t.Fatalf("Ready = %v, want %v", rs.Ready, tt.ready)
			}

			if len(rs.Initializers) != 1 {
				t.Fatalf("len(Initializers) = %d, want 1", len(rs.Initializers))
			}
		})
	}
}

func TestEmptyRegistryIsReady(t *testing.T) {
	rs := NewRegistry().CheckReadiness()
	if !rs.Ready || len(rs.Initializers) != 0 {
		t.Fatalf("readiness = %+v, want ready with no initializers", rs)
	}
}

func TestNamedInitializerUsesDefaultRegistry(t *testing.T) {
	NewInitializer[string, *client]("default-registry-test", &countingEngine{construct: failUntil(1)}, "cfg")

	found := false

	for _, hr := range DefaultRegistry().Reporters() {
		if hr.Name() == "default-registry-test" {
			found = true
		}
	}

	if !found {
		t.Fatal("named initializer not registered with DefaultRegistry")
	}

	if first, second := DefaultRegistry(), DefaultRegistry(); first != second {
		t.Fatal("DefaultRegistry() not a singleton")
	}
}

func TestRegistryConcurrentUse(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup

	for i := range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			reg.Register(stubReporter{name: string(rune('a' + i))})
			_ = reg.CheckReadiness()
		}()
	}

	wg.Wait()

	if n := len(reg.Reporters()); n != 20 {
		t.Fatalf("len(Reporters()) = %d, want 20", n)
	}
}
