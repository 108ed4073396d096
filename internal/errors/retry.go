package errors

import (
	"context"
	"time"
)

// RetryUntil calls fn with a fixed delay between attempts for as long as fn
// returns an error that shouldRetry accepts. There is no attempt limit: the
// loop ends on success, on a non-retryable error, or when ctx is done.
// A nil shouldRetry uses IsRetryable.
func RetryUntil[T any](ctx context.Context, delay time.Duration, shouldRetry func(error) bool, fn func() (T, error)) (T, error) {
	if shouldRetry == nil {
		shouldRetry = IsRetryable
	}

	var zero T
	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !shouldRetry(err) {
			return zero, err
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}
}
