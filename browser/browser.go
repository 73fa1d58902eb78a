// Package browser is the automation capability the scraper is written
// against. A Session is one open browser (or one parsed document); an
// Element is a handle to a node inside it.
//
// Two backends exist: a chromedp session that drives a real Chrome, and a
// goquery session over static HTML used for saved pages and tests.
package browser

import (
	"context"
	"errors"
)

var (
	// ErrStale reports a node that was detached or re-rendered between
	// being located and being read.
	ErrStale = errors.New("stale element reference")

	// ErrUnsupportedLocator is returned when a backend cannot evaluate a
	// locator kind in the requested scope.
	ErrUnsupportedLocator = errors.New("unsupported locator")

	// ErrNoPage is returned by a static session asked for a URL it holds no
	// document for.
	ErrNoPage = errors.New("no document for url")
)

// KeyEnter is the key sequence that submits a focused input.
const KeyEnter = "\r"

// Finder locates elements within some scope: a whole page or one element's
// subtree. Not finding anything is an empty slice, not an error.
// Find only locates; a locator's Attr and Contains are applied by callers.
type Finder interface {
	Find(ctx context.Context, loc Locator) ([]Element, error)
}

type Element interface {
	Finder

	// Text returns the rendered text of the node, untrimmed.
	Text(ctx context.Context) (string, error)
	// Attr returns the attribute value, or "" when it is absent.
	Attr(ctx context.Context, name string) (string, error)

	Click(ctx context.Context) error
	Clear(ctx context.Context) error
	SendKeys(ctx context.Context, keys string) error
	// Select sets a <select> element to the option with the given value.
	Select(ctx context.Context, value string) error
	ScrollIntoView(ctx context.Context) error
}

type Session interface {
	Finder

	Navigate(ctx context.Context, url string) error
	Title(ctx context.Context) (string, error)
	// Source returns the serialized document.
	Source(ctx context.Context) (string, error)
	Close() error
}
