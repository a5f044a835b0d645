package credstore

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	kerrors "github.com/credforge/credkit/errors"
)

// withRetry executes fn with exponential backoff. Only transient errors
// (unavailable, timeout, conflict) are retried.
func withRetry(ctx context.Context, cfg *Config, fn func(context.Context) error) error {
	if cfg.RetryAttempts <= 0 {
		return fn(ctx)
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.RetryAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return wrapError(ctx.Err(), "cancelled before retry")
		default:
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}
		if attempt >= cfg.RetryAttempts {
			break
		}

		sleep := backoffFor(cfg.RetryInitialBackoff, attempt, cfg.RetryMaxBackoff)
		if cfg.Logger != nil {
			cfg.Logger.Warn("retrying store operation",
				"attempt", attempt+1,
				"max_attempts", cfg.RetryAttempts+1,
				"backoff", sleep,
				"error", err,
			)
		}

		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return wrapError(ctx.Err(), "cancelled during retry backoff")
		}
	}

	return kerrors.Wrap(lastErr, kerrors.GetCode(lastErr), "maximum retry attempts exceeded")
}

// backoffFor doubles the initial backoff per attempt, caps it, and adds
// up to 10% jitter to avoid synchronized retries.
func backoffFor(initial time.Duration, attempt int, max time.Duration) time.Duration {
	backoff := float64(initial) * math.Pow(2, float64(attempt))
	if backoff > float64(max) {
		backoff = float64(max)
	}
	backoff += backoff * 0.1 * (2*rand.Float64() - 1)
	return time.Duration(backoff)
}
