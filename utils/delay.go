package utils

import (
	"context"
	"math/rand"
	"time"
)

// RandomDelay sleeps for a random duration between min and max, or until
// ctx is done.
func RandomDelay(ctx context.Context, min, max time.Duration) error {
	sleep := min
	if diff := max - min; diff > 0 {
		sleep += time.Duration(rand.Int63n(int64(diff)))
	}
	if sleep <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(sleep)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
