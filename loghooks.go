package warmup

import (
	"log/slog"
	"time"
)

// LogHooks returns hooks that write the initializer's lifecycle to logger as
// structured records. Attempt errors are logged at warn level; they are the
// only place the underlying failure detail is kept.
func LogHooks(logger *slog.Logger, name string) Hooks {
	log := logger.With(slog.String("initializer", name))

	return Hooks{
		OnActivate: func(id string) {
			log.Debug("activation started", slog.String("activation", id))
		},
		OnAttempt: func(attempt, maxAttempts int) {
			log.Info("initializing",
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", maxAttempts),
			)
		},
		OnAttemptDone: func(attempt int, elapsed time.Duration, err error) {
			if err == nil {
				log.Info("instance created",
					slog.Int("attempt", attempt),
					slog.Duration("elapsed", elapsed),
				)

				return
			}

			attrs := []any{
				slog.Int("attempt", attempt),
				slog.Duration("elapsed", elapsed),
				slog.Any("error", err),
			}
			if stage, ok := StageOf(err); ok {
				attrs = append(attrs, slog.String("stage", stage.String()))
			}

			log.Warn("initialization attempt failed", attrs...)
		},
		OnRetry: func(attempt int, delay time.Duration) {
			log.Info("retrying", slog.Int("after_attempt", attempt), slog.Duration("delay", delay))
		},
		OnReady: func(attempt int) {
			log.Info("instance ready", slog.Int("attempts", attempt))
		},
		OnDegraded: func(attempts int, lastErr error) {
			log.Error("initialization gave up, running degraded",
				slog.Int("attempts", attempts),
				slog.Any("error", lastErr),
			)
		},
		OnDeactivate: func(id string) {
			log.Debug("activation stopped", slog.String("activation", id))
		},
		OnStaleResult: func(attempt int, err error) {
			log.Debug("discarded result of stopped activation",
				slog.Int("attempt", attempt),
				slog.Any("error", err),
			)
		},
	}
}
