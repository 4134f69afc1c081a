package errors

import (
	"context"
	"time"
)

// RetryConfig configures caller-side retry of retryable deposit errors.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryConfig returns default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	}
}

// RetryFunc is a function that can be retried
type RetryFunc func() error

// Retry runs fn until it succeeds, fails with a non-retryable error, or the
// attempts run out. The last error is returned with its original code.
func Retry(ctx context.Context, fn RetryFunc, cfg *RetryConfig) error {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}
	config := *cfg
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}

	var lastErr error
	delay := config.InitialDelay

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}
		if attempt == config.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * config.Multiplier)
		if delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}

	var depErr *DepositError
	if As(lastErr, &depErr) {
		return depErr.WithContext("attempts", config.MaxAttempts)
	}
	return lastErr
}
