package utils

import (
	"errors"
	"fmt"
	"time"
)

// RetryConfig holds the parameters for the retry strategy.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *Logger
}

// Do executes fn with exponential back-off, retrying timeouts only. Any
// other error aborts immediately: a non-timeout failure from the upstream
// API is treated as permanent for this row.
func (r *RetryConfig) Do(operationName string, fn func() error) error {
	var lastErr error
	delay := r.BaseDelay

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !errors.Is(lastErr, ErrTimeout) {
			return fmt.Errorf("%s failed: %w", operationName, lastErr)
		}

		if attempt < r.MaxAttempts {
			r.Logger.Warn("[retry] %s attempt %d/%d timed out — retrying in %v",
				operationName, attempt, r.MaxAttempts, delay)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, r.MaxAttempts, lastErr)
}
