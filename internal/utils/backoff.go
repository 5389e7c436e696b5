package utils

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// ExponentialWithJitter returns a random delay in [0, min(base*2^attempt, ceiling)).
func ExponentialWithJitter(base, ceiling time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}
	delay := ceiling
	if attempt < 30 {
		if d := base << attempt; d > 0 && d < ceiling {
			delay = d
		}
	}
	if delay <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(delay)))
}

// SleepWithContext sleeps for d unless ctx is done first.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context done: %w", ctx.Err())
	}
}
