// Package retry provides a small reusable retry policy for outbound calls.
package retry

import (
	"context"
	"time"
)

// Policy retries an operation up to Attempts times, sleeping
// Backoff(attempt) between failures. The zero Policy runs the operation
// exactly once.
type Policy struct {
	Attempts int
	Backoff  func(attempt int) time.Duration
}

// Exponential returns a backoff function of base<<attempt (base, 2*base,
// 4*base, ...).
func Exponential(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return base << uint(attempt)
	}
}

// Do runs op until it succeeds, attempts are exhausted, or ctx is done.
// It returns the last error from op, or ctx.Err() if the context ended
// while waiting to retry.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 && p.Backoff != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Backoff(attempt - 1)):
			}
		}
		if err = op(); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}
