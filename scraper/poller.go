package scraper

import (
	"car-rental-scraper/browser"
	"context"
	"time"
)

// Condition is one presence check. It must not block for long.
type Condition func(ctx context.Context) bool

// WaitForAny evaluates conds every interval until one holds or timeout
// elapses. Running out of time is an ordinary false, as is ctx ending.
func WaitForAny(ctx context.Context, interval, timeout time.Duration, conds ...Condition) bool {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	deadline := time.Now().Add(timeout)

	for {
		for _, c := range conds {
			if c(ctx) {
				return true
			}
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}

		wait := interval
		if remaining < wait {
			wait = remaining
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return false
		case <-t.C:
		}
	}
}

// Present holds when loc matches at least one element in f.
func Present(f browser.Finder, loc browser.Locator) Condition {
	return func(ctx context.Context) bool {
		els, err := browser.FindMatching(ctx, f, loc)
		return err == nil && len(els) > 0
	}
}

// AnyPresent builds one Present condition per locator.
func AnyPresent(f browser.Finder, locs []browser.Locator) []Condition {
	conds := make([]Condition, 0, len(locs))
	for _, loc := range locs {
		conds = append(conds, Present(f, loc))
	}
	return conds
}

// CountChanged holds once the locators match a different number of
// elements than before.
func CountChanged(f browser.Finder, locs []browser.Locator, before int) Condition {
	return func(ctx context.Context) bool {
		return browser.Count(ctx, f, locs) != before
	}
}
