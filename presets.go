package warmup

import "time"

// Pattern: Factory Function. Each preset produces a ready-made option bundle
// for a common start-up profile.

// RelayerSDK returns the options matching the frontend relayer SDK hook:
// three attempts, a constant two second pause and the default advisory
// message.
func RelayerSDK() []any {
	return []any{
		WithRetryPolicy(DefaultRetryPolicy()),
		WithDegradedMessage(DefaultDegradedMessage),
	}
}

// Patient returns options for engines that are slow to come up: five
// attempts with 500ms exponential backoff capped at 10s, each attempt bounded
// to 30s.
func Patient() []any {
	return []any{
		WithRetryPolicy(RetryPolicy{
			MaxAttempts:    5,
			Backoff:        ExponentialBackoff(500 * time.Millisecond),
			MaxDelay:       10 * time.Second,
			AttemptTimeout: 30 * time.Second,
		}),
	}
}

// FailFast returns options for a single attempt, degrading at once on failure.
func FailFast() []any {
	return []any{
		WithAttempts(1),
	}
}
