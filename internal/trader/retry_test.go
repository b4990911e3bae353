// ====================================
// File: internal/trader/retry_test.go
// ====================================
package trader

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fastRetry(policy RetryPolicy) *RetryDriver {
	policy.InitialInterval = time.Millisecond
	policy.MaxInterval = 2 * time.Millisecond
	return NewRetryDriver(policy, zap.NewNop())
}

func TestRetryRunsUntilSuccess(t *testing.T) {
	d := fastRetry(RetryPolicy{})

	attempts := 0
	err := d.Run(context.Background(), "test", func() error {
		attempts++
		if attempts < 5 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, attempts)
}

func TestRetryHonorsMaxTries(t *testing.T) {
	d := fastRetry(RetryPolicy{MaxTries: 3})

	attempts := 0
	err := d.Run(context.Background(), "test", func() error {
		attempts++
		return errors.New("always fails")
	})
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	d := fastRetry(RetryPolicy{})

	sentinel := errors.New("bad input")
	attempts := 0
	err := d.Run(context.Background(), "test", func() error {
		attempts++
		return backoff.Permanent(sentinel)
	})
	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, attempts)
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	d := fastRetry(RetryPolicy{})

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx, "test", func() error {
			attempts++
			if attempts == 2 {
				cancel()
			}
			return errors.New("transient")
		})
	}()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("retry loop did not stop on cancellation")
	}
}
