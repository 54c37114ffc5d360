package common

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// RetryableFunc is one attempt of an operation.
type RetryableFunc func() error

type retryConfig struct {
	maxRetries   int
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
	retryIf      func(error) bool
}

// Option configures Do.
type Option func(*retryConfig)

// WithMaxRetries sets how many times Do retries after the first attempt.
// Zero disables retrying.
func WithMaxRetries(n int) Option {
	return func(c *retryConfig) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithInitialDelay sets the delay before the first retry.
func WithInitialDelay(d time.Duration) Option {
	return func(c *retryConfig) {
		if d > 0 {
			c.initialDelay = d
		}
	}
}

// WithMaxDelay caps the backoff delay.
func WithMaxDelay(d time.Duration) Option {
	return func(c *retryConfig) {
		if d > 0 {
			c.maxDelay = d
		}
	}
}

// WithMultiplier sets the exponential backoff factor.
func WithMultiplier(m float64) Option {
	return func(c *retryConfig) {
		if m > 0 {
			c.multiplier = m
		}
	}
}

// WithRetryIf limits retrying to errors accepted by fn. Other errors are
// returned immediately.
func WithRetryIf(fn func(error) bool) Option {
	return func(c *retryConfig) {
		if fn != nil {
			c.retryIf = fn
		}
	}
}

func defaultRetryConfig() *retryConfig {
	return &retryConfig{
		maxRetries:   2,
		initialDelay: 300 * time.Millisecond,
		maxDelay:     5 * time.Second,
		multiplier:   2.0,
		retryIf:      func(error) bool { return true },
	}
}

// Do runs fn, retrying with exponential backoff while it fails with a
// retryable error. Cancelling ctx stops the backoff wait.
func Do(ctx context.Context, fn RetryableFunc, opts ...Option) error {
	if fn == nil {
		return errors.New("retry: function cannot be nil")
	}

	cfg := defaultRetryConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	err := fn()
	for attempt := 1; err != nil && attempt <= cfg.maxRetries; attempt++ {
		if !cfg.retryIf(err) {
			return err
		}

		timer := time.NewTimer(backoff(attempt, cfg))
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry aborted (attempt %d/%d): %w", attempt, cfg.maxRetries, ctx.Err())
		case <-timer.C:
		}

		err = fn()
	}

	if err != nil && cfg.maxRetries > 0 && cfg.retryIf(err) {
		return fmt.Errorf("retry failed after %d attempts: %w", cfg.maxRetries+1, err)
	}
	return err
}

// backoff = initialDelay * multiplier^(attempt-1), capped at maxDelay
func backoff(attempt int, cfg *retryConfig) time.Duration {
	delay := float64(cfg.initialDelay) * math.Pow(cfg.multiplier, float64(attempt-1))
	if time.Duration(delay) > cfg.maxDelay {
		return cfg.maxDelay
	}
	return time.Duration(delay)
}
