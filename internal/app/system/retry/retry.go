// Package retry gives store calls a single bounded retry on transient
// infrastructure errors.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Policy bounds the retry. The zero value retries once after ~100ms and
// gives up after 2s.
type Policy struct {
	Initial    time.Duration
	MaxElapsed time.Duration
	Log        *zap.Logger
}

const (
	defaultInitial    = 100 * time.Millisecond
	defaultMaxElapsed = 2 * time.Second

	// one attempt plus one retry
	maxTries = 2
)

// Do runs fn, retrying it once if it fails with a transient error.
// Non-transient errors are returned immediately and unchanged.
func Do[T any](ctx context.Context, p Policy, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Initial
	if b.InitialInterval <= 0 {
		b.InitialInterval = defaultInitial
	}
	maxElapsed := p.MaxElapsed
	if maxElapsed <= 0 {
		maxElapsed = defaultMaxElapsed
	}

	return backoff.Retry(ctx, func() (T, error) {
		v, err := fn(ctx)
		if err != nil && !IsTransient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(maxTries),
		backoff.WithMaxElapsedTime(maxElapsed),
		backoff.WithNotify(func(err error, wait time.Duration) {
			if p.Log != nil {
				p.Log.Warn("transient store error, retrying",
					zap.String("operation", op),
					zap.Duration("backoff", wait),
					zap.Error(err))
			}
		}),
	)
}

// Exec is Do for functions with no result.
func Exec(ctx context.Context, p Policy, op string, fn func(ctx context.Context) error) error {
	_, err := Do(ctx, p, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// IsTransient reports whether err is worth one more attempt: network
// failures, timeouts (including server selection), and errors the
// server labels retryable.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	var le mongo.LabeledError
	if errors.As(err, &le) {
		return le.HasErrorLabel("RetryableWriteError") || le.HasErrorLabel("TransientTransactionError")
	}
	return false
}
