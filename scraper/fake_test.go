package scraper

import (
	"car-rental-scraper/browser"
	"context"
)

// fakeNode is an in-memory element whose reads can be made to fail.
type fakeNode struct {
	text     string
	attrs    map[string]string
	err      error
	children map[string][]browser.Element
	clicks   int
}

func (n *fakeNode) Find(ctx context.Context, loc browser.Locator) ([]browser.Element, error) {
	if loc.IsSelf() {
		return []browser.Element{n}, nil
	}
	return n.children[loc.Selector], nil
}

func (n *fakeNode) Text(ctx context.Context) (string, error) {
	return n.text, n.err
}

func (n *fakeNode) Attr(ctx context.Context, name string) (string, error) {
	return n.attrs[name], n.err
}

func (n *fakeNode) Click(ctx context.Context) error {
	n.clicks++
	return n.err
}

func (n *fakeNode) Clear(ctx context.Context) error                 { return n.err }
func (n *fakeNode) SendKeys(ctx context.Context, keys string) error { return n.err }
func (n *fakeNode) Select(ctx context.Context, value string) error  { return n.err }
func (n *fakeNode) ScrollIntoView(ctx context.Context) error        { return nil }
