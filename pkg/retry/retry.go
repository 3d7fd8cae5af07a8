// Package retry wraps remote calls with bounded retries, exponential
// backoff, and jitter. Failures are retried until the attempt budget is
// exhausted unless a classifier marks them permanent.
package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/drivesync/drivesync/pkg/errors"
	"github.com/drivesync/drivesync/pkg/logging"
)

// Defaults mirror the conservative policy the Drive API documentation
// recommends for rate-limited clients.
const (
	DefaultMaxAttempts    = 6
	DefaultInitialBackoff = 1 * time.Second
	DefaultMultiplier     = 2.0
	DefaultMaxBackoff     = 60 * time.Second
)

// Policy controls how an operation is retried. The zero value is not
// useful; construct with Default and override fields as needed.
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	Multiplier     float64
	MaxBackoff     time.Duration
	Jitter         bool

	// Retryable classifies an error: false means the error is permanent
	// and surfaces immediately without further attempts. When nil, every
	// error is treated as retryable.
	Retryable func(error) bool

	// sleep is replaceable in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// Default returns a Policy with the standard backoff parameters and the
// permanent-failure classifier from the errors package.
func Default() Policy {
	return Policy{
		MaxAttempts:    DefaultMaxAttempts,
		InitialBackoff: DefaultInitialBackoff,
		Multiplier:     DefaultMultiplier,
		MaxBackoff:     DefaultMaxBackoff,
		Jitter:         true,
		Retryable:      func(err error) bool { return !errors.IsPermanent(err) },
	}
}

// Do runs fn under the policy. On success it returns nil immediately. A
// permanent error is returned as-is without further attempts. When the
// attempt budget is exhausted the last error is wrapped in a
// RETRY_EXHAUSTED error carrying the operation name and attempt count.
func (p Policy) Do(ctx context.Context, operation string, fn func() error) error {
	logger := logging.GetLogger("retry")
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	backoff := p.InitialBackoff
	attempt := 0
	var lastErr error

	for attempt < p.MaxAttempts {
		if err := ctx.Err(); err != nil {
			return err
		}

		attempt++
		start := time.Now()
		err := fn()
		elapsed := time.Since(start)

		if err == nil {
			logger.Debug().
				Str("event", "retry_success").
				Str("operation", operation).
				Int("attempt", attempt).
				Dur("elapsed", elapsed).
				Msg("Operation succeeded")
			return nil
		}

		lastErr = err
		logger.Warn().
			Str("event", "retry_error").
			Str("operation", operation).
			Int("attempt", attempt).
			Dur("elapsed", elapsed).
			Err(err).
			Msg("Operation failed")

		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt >= p.MaxAttempts {
			break
		}

		wait := backoff
		if p.Jitter {
			wait = time.Duration(rand.Float64() * float64(backoff))
		}
		if wait > p.MaxBackoff {
			wait = p.MaxBackoff
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}

		backoff = time.Duration(float64(backoff) * p.Multiplier)
		if backoff > p.MaxBackoff {
			backoff = p.MaxBackoff
		}
	}

	return errors.Wrapf(lastErr, errors.ErrRetryExhausted,
		"%s failed after %d attempts", operation, attempt).
		WithDetail("operation", operation).
		WithDetail("attempts", attempt)
}

// DoValue runs fn under the policy and returns its value on success.
func DoValue[T any](ctx context.Context, p Policy, operation string, fn func() (T, error)) (T, error) {
	var result T
	err := p.Do(ctx, operation, func() error {
		var err error
		result, err = fn()
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// sleepCtx blocks for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
