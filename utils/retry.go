package utils

import (
	"fmt"
	"time"
)

// Retry runs fn up to maxRetries times, stopping at the first success.
// Between failed attempts it waits base, 2*base, 4*base, ...
//
// Only used for acquiring resources (browser launch, database pool).
// Page interactions never retry the same operation; they fall back to
// alternate locators instead.
//
// Usage:
//
//	err := utils.Retry(3, 2*time.Second, func() error {
//	    return session.Start()
//	})
func Retry(maxRetries int, base time.Duration, fn func() error) error {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt < maxRetries {
			wait := base * time.Duration(1<<uint(attempt-1))
			Warn("Attempt %d/%d failed: %v, retrying in %v", attempt, maxRetries, lastErr, wait)
			time.Sleep(wait)
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", maxRetries, lastErr)
}
