package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"myblog/internal/domain"
)

// RetryPolicy bounds the exponential backoff applied around repository calls.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
	}
}

func (p RetryPolicy) normalize() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.InitialInterval <= 0 {
		p.InitialInterval = def.InitialInterval
	}
	if p.MaxInterval < p.InitialInterval {
		p.MaxInterval = p.InitialInterval
	}
	return p
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, p.MaxRetries), ctx)
}

// withRetry runs op until it succeeds, fails with a business rule error, or the policy is exhausted.
// Exhaustion is reported as domain.ErrStorageUnavailable.
func withRetry[T any](ctx context.Context, p RetryPolicy, op func() (T, error)) (T, error) {
	v, err := backoff.RetryWithData(func() (T, error) {
		v, err := op()
		if err != nil && domain.IsDomain(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, p.backOff(ctx))
	if err == nil || domain.IsDomain(err) {
		return v, err
	}
	var zero T
	if errors.Is(err, context.Canceled) {
		return zero, err
	}
	return zero, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
}

func doWithRetry(ctx context.Context, p RetryPolicy, op func() error) error {
	_, err := withRetry(ctx, p, func() (struct{}, error) {
		return struct{}{}, op()
	})
	return err
}
