// ===============================
// File: internal/trader/retry.go
// ===============================
package trader

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// RetryPolicy controls how submission failures are retried. The zero value
// retries forever with exponential backoff; cancellation comes from the
// caller's context, never from the policy itself.
type RetryPolicy struct {
	// MaxTries caps attempts when non-zero. Zero means unbounded.
	MaxTries uint

	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// RetryDriver runs submission operations under a RetryPolicy. It is the
// single place retries happen: pricing and signing failures are marked
// permanent by the operations themselves and surface immediately.
type RetryDriver struct {
	policy RetryPolicy
	logger *zap.Logger
}

// NewRetryDriver creates a driver with the given policy.
func NewRetryDriver(policy RetryPolicy, logger *zap.Logger) *RetryDriver {
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = 500 * time.Millisecond
	}
	if policy.MaxInterval <= 0 {
		policy.MaxInterval = 10 * time.Second
	}
	return &RetryDriver{
		policy: policy,
		logger: logger.Named("retry"),
	}
}

// Run executes op until it succeeds, the policy's attempt cap is reached,
// or ctx is cancelled.
func (d *RetryDriver) Run(ctx context.Context, name string, op func() error) error {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = d.policy.InitialInterval
	expo.MaxInterval = d.policy.MaxInterval

	operation := func() (struct{}, error) {
		return struct{}{}, op()
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(expo),
		backoff.WithNotify(func(err error, next time.Duration) {
			d.logger.Warn("Operation failed, retrying",
				zap.String("operation", name),
				zap.Duration("next_attempt_in", next),
				zap.Error(err))
		}),
	}
	if d.policy.MaxTries > 0 {
		opts = append(opts, backoff.WithMaxTries(d.policy.MaxTries))
	}

	_, err := backoff.Retry(ctx, operation, opts...)
	return err
}
