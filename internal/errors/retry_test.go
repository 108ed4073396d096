package errors

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryUntil_RetriesRetryableErrorsWithoutLimit(t *testing.T) {
	// Given: a function that is locked for 20 attempts
	var attempts atomic.Int32
	fn := func() (string, error) {
		if attempts.Add(1) <= 20 {
			return "", LockedError("a.txt", nil)
		}
		return "ok", nil
	}

	// When: retrying until success
	v, err := RetryUntil(context.Background(), time.Millisecond, nil, fn)

	// Then: it keeps going past any fixed retry count
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, int32(21), attempts.Load())
}

func TestRetryUntil_StopsOnNonRetryableError(t *testing.T) {
	attempts := 0
	_, err := RetryUntil(context.Background(), time.Millisecond, nil, func() (int, error) {
		attempts++
		return 0, ErrFileNotFound
	})

	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.Equal(t, 1, attempts)
}

func TestRetryUntil_RespectsContextCancellation(t *testing.T) {
	// Given: a function that is always locked
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	// When: retrying
	start := time.Now()
	_, err := RetryUntil(ctx, 5*time.Millisecond, func(error) bool { return true }, func() (int, error) {
		return 0, errors.New("locked")
	})

	// Then: cancellation ends the loop promptly
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
