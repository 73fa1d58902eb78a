package scraper

import (
	"car-rental-scraper/browser"
	"car-rental-scraper/utils"
	"context"
	"errors"
	"strings"
)

// FirstNonEmpty tries the candidates in order and returns the first
// non-empty, trimmed text or attribute value found in container.
// Missing elements, unsupported locators and nodes that go stale while
// being read all count as no match; the result is "" when nothing matches.
func FirstNonEmpty(ctx context.Context, container browser.Finder, candidates ...browser.Locator) string {
	for _, loc := range candidates {
		if vs := values(ctx, container, loc, 1); len(vs) > 0 {
			return vs[0]
		}
	}
	return ""
}

// AllNonEmpty returns the non-empty values of every candidate, in
// candidate order, at most limit of them (0 means no limit).
func AllNonEmpty(ctx context.Context, container browser.Finder, limit int, candidates ...browser.Locator) []string {
	var out []string
	for _, loc := range candidates {
		rest := 0
		if limit > 0 {
			rest = limit - len(out)
			if rest <= 0 {
				break
			}
		}
		out = append(out, values(ctx, container, loc, rest)...)
	}
	return out
}

func values(ctx context.Context, container browser.Finder, loc browser.Locator, limit int) []string {
	els, err := container.Find(ctx, loc)
	if err != nil {
		utils.Debug("locator %s skipped: %v", loc, err)
		return nil
	}

	var out []string
	for _, el := range els {
		v, ok := read(ctx, el, loc)
		if !ok {
			continue
		}
		out = append(out, v)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// read returns the trimmed value of el for loc, and false when the element
// yields nothing usable.
func read(ctx context.Context, el browser.Element, loc browser.Locator) (string, bool) {
	var (
		v   string
		err error
	)
	if loc.Attr != "" {
		v, err = el.Attr(ctx, loc.Attr)
	} else {
		v, err = el.Text(ctx)
	}
	if err != nil {
		if errors.Is(err, browser.ErrStale) {
			utils.Debug("stale element under %s", loc)
		} else {
			utils.Debug("read %s: %v", loc, err)
		}
		return "", false
	}

	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}

	if loc.Contains != "" {
		match := v
		// An attribute read still filters on the element's text.
		if loc.Attr != "" {
			text, err := el.Text(ctx)
			if err != nil {
				return "", false
			}
			match = text
		}
		if !loc.MatchesText(match) {
			return "", false
		}
	}
	return v, true
}

// ExtractField resolves one field against a container, applying the
// field's join, clean-up and default.
func ExtractField(ctx context.Context, container browser.Finder, f Field) string {
	var v string
	if f.Join != "" {
		v = strings.Join(AllNonEmpty(ctx, container, 0, f.Locators...), f.Join)
	} else {
		v = FirstNonEmpty(ctx, container, f.Locators...)
	}

	if v != "" && f.Clean != nil {
		v = strings.TrimSpace(f.Clean(v))
	}
	if v == "" {
		v = f.Default
	}
	return v
}
