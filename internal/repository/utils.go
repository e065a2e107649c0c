package repository

import (
	"context"
	"errors"
	"time"

	"github.com/osse101/StreamRealm_Go/internal/domain"
	"github.com/osse101/StreamRealm_Go/internal/logger"
)

// SafeRollback rolls back a transaction and logs any error
func SafeRollback(ctx context.Context, tx Tx) {
	if err := tx.Rollback(ctx); err != nil {
		if err.Error() != domain.ErrMsgTxClosed {
			logger.FromContext(ctx).Error("Failed to rollback transaction", "error", err)
		}
	}
}

// RetryPolicy bounds how often a conflicting transaction is rerun
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy is used when callers pass a zero policy
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 8,
	BaseDelay:   75 * time.Millisecond,
	MaxDelay:    1200 * time.Millisecond,
}

// WithRetry runs fn until it succeeds, returns a non-conflict error, or attempts run out.
// onRetry is called before each rerun and may be nil.
func WithRetry(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) error, onRetry func(attempt int, err error)) error {
	if policy.MaxAttempts <= 0 {
		policy = DefaultRetryPolicy
	}

	delay := policy.BaseDelay
	var err error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil || !errors.Is(err, ErrConflict) {
			return err
		}
		if attempt == policy.MaxAttempts {
			break
		}
		if onRetry != nil {
			onRetry(attempt, err)
		}
		if sleepErr := sleepWithContext(ctx, delay); sleepErr != nil {
			return sleepErr
		}
		delay *= 2
		if policy.MaxDelay > 0 && delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}
	}
	return err
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
