package warmup

import (
	"math"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Interface compile checks
// ---------------------------------------------------------------------------

func TestBackoffStrategyInterfaceCompliance(t *testing.T) {
	var _ BackoffStrategy = ConstantBackoff(time.Second)
	var _ BackoffStrategy = ExponentialBackoff(time.Second)
	var _ BackoffStrategy = LinearBackoff(time.Second)
	var _ BackoffStrategy = ExponentialJitterBackoff(time.Second)
	var _ BackoffStrategy = BackoffFunc(func(int) time.Duration { return time.Second })
}

// ---------------------------------------------------------------------------
// Deterministic strategies
// ---------------------------------------------------------------------------

func TestConstantBackoff(t *testing.T) {
	b := ConstantBackoff(DefaultRetryDelay)
	for retry := range 10 {
		if got := b.Delay(retry); got != DefaultRetryDelay {
			t.Fatalf("retry %d: Delay() = %v, want %v", retry, got, DefaultRetryDelay)
		}
	}
}

func TestExponentialBackoff(t *testing.T) {
	b := ExponentialBackoff(500 * time.Millisecond)

	want := []time.Duration{
		500 * time.Millisecond,
		time.Second,
		2 * time.Second,
		4 * time.Second,
	}

	for i, w := range want {
		if got := b.Delay(i); got != w {
			t.Fatalf("retry %d: Delay() = %v, want %v", i, got, w)
		}
	}
}

func TestExponentialBackoffSaturates(t *testing.T) {
	b := ExponentialBackoff(time.Hour)

	if got := b.Delay(200); got != time.Duration(math.MaxInt64) {
		t.Fatalf("Delay(200) = %v, want saturation at MaxInt64", got)
	}
}

func TestLinearBackoffSaturates(t *testing.T) {
	b := LinearBackoff(time.Duration(math.MaxInt64 / 2))

	if got := b.Delay(10); got != time.Duration(math.MaxInt64) {
		t.Fatalf("Delay(10) = %v, want saturation at MaxInt64", got)
	}
}

func TestLinearBackoff(t *testing.T) {
	b := LinearBackoff(time.Second)

	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}

	for i, w := range want {
		if got := b.Delay(i); got != w {
			t.Fatalf("retry %d: Delay() = %v, want %v", i, got, w)
		}
	}
}

// ---------------------------------------------------------------------------
// ExponentialJitterBackoff
// ---------------------------------------------------------------------------

func TestExponentialJitterBackoffBounds(t *testing.T) {
	base := 100 * time.Millisecond
	b := ExponentialJitterBackoff(base)

	for retry := range 5 {
		ceiling := time.Duration(float64(base) * math.Pow(2, float64(retry)))
		for range 100 {
			if got := b.Delay(retry); got < 0 || got > ceiling {
				t.Fatalf("retry %d: Delay() = %v, want in [0, %v]", retry, got, ceiling)
			}
		}
	}
}

func TestExponentialJitterBackoffSaturatedCeiling(t *testing.T) {
	b := ExponentialJitterBackoff(time.Second)

	for _, retry := range []int{40, 63, 200} {
		if got := b.Delay(retry); got < 0 {
			t.Fatalf("retry %d: Delay() = %v, want non-negative", retry, got)
		}
	}
}

func TestExponentialJitterBackoffZeroBase(t *testing.T) {
	b := ExponentialJitterBackoff(0)
	for retry := range 5 {
		if got := b.Delay(retry); got != 0 {
			t.Fatalf("retry %d: Delay() = %v, want 0", retry, got)
		}
	}
}

// ---------------------------------------------------------------------------
// Benchmarks
// ---------------------------------------------------------------------------

func BenchmarkExponentialJitterBackoff(b *testing.B) {
	s := ExponentialJitterBackoff(100 * time.Millisecond)
	for b.Loop() {
		s.Delay(5)
	}
}
