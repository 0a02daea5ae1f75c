package warmup

import (
	"errors"
	"fmt"
	"time"
)

// RetryPolicy bounds and paces the attempts of one activation.
type RetryPolicy struct {
	// Backoff computes the pause between attempts. Nil means no pause.
	Backoff BackoffStrategy
	// MaxAttempts is the attempt ceiling. Values below 1 mean a single
	// attempt.
	MaxAttempts int
	// MaxDelay caps each pause. Zero means no cap.
	MaxDelay time.Duration
	// AttemptTimeout bounds each attempt through its context deadline.
	// Zero means attempts are not bounded.
	AttemptTimeout time.Duration
}

const (
	// DefaultMaxAttempts is the attempt ceiling used by the relayer SDK hook.
	DefaultMaxAttempts = 3
	// DefaultRetryDelay is the pause between attempts used by the relayer
	// SDK hook.
	DefaultRetryDelay = 2 * time.Second
)

// DefaultRetryPolicy returns three attempts with a constant two second pause.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		Backoff:     ConstantBackoff(DefaultRetryDelay),
	}
}

// Validate reports configuration errors that normalization would otherwise
// paper over. It is used when policies come from configuration files.
func (p RetryPolicy) Validate() error {
	var errs []error

	if p.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_attempts must be positive, got %d", p.MaxAttempts))
	}

	if p.MaxDelay < 0 {
		errs = append(errs, fmt.Errorf("max_delay must not be negative, got %v", p.MaxDelay))
	}

	if p.AttemptTimeout < 0 {
		errs = append(errs, fmt.Errorf("attempt_timeout must not be negative, got %v", p.AttemptTimeout))
	}

	return errors.Join(errs...)
}

// normalized returns a copy safe to run: at least one attempt and a non-nil
// backoff.
func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	if p.Backoff == nil {
		p.Backoff = ConstantBackoff(0)
	}

	return p
}

// delay returns the capped pause after the given number of failed attempts.
func (p RetryPolicy) delay(failed int) time.Duration {
	d := p.Backoff.Delay(failed - 1)

	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}

	if d < 0 {
		d = 0
	}

	return d
}
