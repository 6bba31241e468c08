package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"
)

// RetryConfig bounds a retried operation: total attempts, initial delay, and
// multiplicative backoff between attempts.
type RetryConfig struct {
	Attempts int
	Delay    time.Duration
	Backoff  float64
}

// Retry runs fn up to cfg.Attempts times, backing off between failures.
// Context cancellation aborts the wait immediately and wins over further
// attempts.
func Retry(ctx context.Context, cfg RetryConfig, name string, fn func(context.Context) error) error {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	if cfg.Backoff < 1 {
		cfg.Backoff = 2
	}

	delay := cfg.Delay
	var lastErr error
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == cfg.Attempts {
			break
		}

		log.Printf("[PIPELINE] %s attempt %d/%d failed: %v", name, attempt, cfg.Attempts, lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * cfg.Backoff)
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, cfg.Attempts, lastErr)
}
