// Package retry runs storage calls under bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:      3,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
	}
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	if p.MaxInterval > 0 {
		exp.MaxInterval = p.MaxInterval
	}
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, p.MaxRetries), ctx)
}

// Do calls op until it succeeds, returns an error for which retryable is false,
// or the policy is exhausted. onRetry, if set, runs before each retry.
func Do(ctx context.Context, p Policy, retryable func(error) bool, onRetry func(error, time.Duration), op func() error) error {
	wrapped := func() error {
		err := op()
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	var notify backoff.Notify
	if onRetry != nil {
		notify = backoff.Notify(onRetry)
	}

	err := backoff.RetryNotify(wrapped, p.backOff(ctx), notify)
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Err
	}
	return err
}
