package browser

import (
	"context"
	"errors"
)

// FindMatching runs loc against f and applies its Contains filter.
// Elements that go stale while their text is read are dropped.
func FindMatching(ctx context.Context, f Finder, loc Locator) ([]Element, error) {
	els, err := f.Find(ctx, loc)
	if err != nil || loc.Contains == "" {
		return els, err
	}

	out := make([]Element, 0, len(els))
	for _, el := range els {
		text, err := el.Text(ctx)
		if err != nil {
			if errors.Is(err, ErrStale) {
				continue
			}
			return out, err
		}
		if loc.MatchesText(text) {
			out = append(out, el)
		}
	}
	return out, nil
}

// Count returns how many elements the locators match in total.
// Locators that fail to evaluate count as zero.
func Count(ctx context.Context, f Finder, locs []Locator) int {
	n := 0
	for _, loc := range locs {
		els, err := FindMatching(ctx, f, loc)
		if err != nil {
			continue
		}
		n += len(els)
	}
	return n
}
