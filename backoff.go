package warmup

import (
	"math"
	"math/rand/v2"
	"time"
)

// BackoffStrategy computes the pause before a retry. The argument is the
// 0-indexed retry number: 0 is the pause after the first failed attempt.
type BackoffStrategy interface {
	Delay(retry int) time.Duration
}

// BackoffFunc adapts a plain function into a [BackoffStrategy].
type BackoffFunc func(retry int) time.Duration

// Delay calls f.
func (f BackoffFunc) Delay(retry int) time.Duration { return f(retry) }

// ConstantBackoff waits d before every retry. This is the behavior of the
// relayer SDK hook: a fixed two second pause.
func ConstantBackoff(d time.Duration) BackoffStrategy {
	return BackoffFunc(func(int) time.Duration { return d })
}

// ExponentialBackoff waits base * 2^retry.
func ExponentialBackoff(base time.Duration) BackoffStrategy {
	return BackoffFunc(func(retry int) time.Duration {
		return scaled(base, math.Pow(2, float64(retry)))
	})
}

// LinearBackoff waits step * (retry + 1).
func LinearBackoff(step time.Duration) BackoffStrategy {
	return BackoffFunc(func(retry int) time.Duration {
		return scaled(step, float64(retry+1))
	})
}

// ExponentialJitterBackoff waits a uniformly random duration in
// [0, base * 2^retry], spreading retries of many clients over time.
func ExponentialJitterBackoff(base time.Duration) BackoffStrategy {
	return BackoffFunc(func(retry int) time.Duration {
		ceiling := scaled(base, math.Pow(2, float64(retry)))
		if ceiling <= 0 {
			return 0
		}

		// Int64N takes an exclusive bound; at saturation there is no room for +1.
		if ceiling == math.MaxInt64 {
			return time.Duration(rand.Int64N(math.MaxInt64))
		}

		return time.Duration(rand.Int64N(int64(ceiling) + 1))
	})
}

// scaled multiplies d by f, saturating instead of overflowing.
func scaled(d time.Duration, f float64) time.Duration {
	v := float64(d) * f
	if v >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}

	if v <= math.MinInt64 {
		return time.Duration(math.MinInt64)
	}

	return time.Duration(v)
}
