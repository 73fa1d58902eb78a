package browser

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// StaticSession serves pre-rendered HTML. It stands in for a browser when
// scraping saved result pages and in tests. Only CSS locators are supported;
// clicks do nothing and typed text lands in the element's value attribute.
type StaticSession struct {
	mu       sync.Mutex
	pages    map[string]string
	fallback string
	doc      *goquery.Document
}

// NewStaticSession serves pages keyed by URL.
func NewStaticSession(pages map[string]string) *StaticSession {
	cp := make(map[string]string, len(pages))
	for k, v := range pages {
		cp[k] = v
	}
	return &StaticSession{pages: cp}
}

// NewStaticSessionFromFile serves the saved page at path for every URL.
func NewStaticSessionFromFile(path string) (*StaticSession, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read saved page: %w", err)
	}
	return &StaticSession{pages: map[string]string{}, fallback: string(data)}, nil
}

func (s *StaticSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	html, ok := s.pages[url]
	if !ok {
		if s.fallback == "" {
			return fmt.Errorf("navigate %s: %w", url, ErrNoPage)
		}
		html = s.fallback
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("parse %s: %w", url, err)
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

func (s *StaticSession) current() (*goquery.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, fmt.Errorf("no page loaded: %w", ErrNoPage)
	}
	return s.doc, nil
}

func (s *StaticSession) Title(ctx context.Context) (string, error) {
	doc, err := s.current()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc.Find("title").First().Text()), nil
}

func (s *StaticSession) Source(ctx context.Context) (string, error) {
	doc, err := s.current()
	if err != nil {
		return "", err
	}
	return doc.Html()
}

func (s *StaticSession) Find(ctx context.Context, loc Locator) ([]Element, error) {
	doc, err := s.current()
	if err != nil {
		return nil, err
	}
	if loc.IsSelf() {
		return nil, fmt.Errorf("%w: self locator on a page", ErrUnsupportedLocator)
	}
	return findIn(doc.Selection, loc)
}

func (s *StaticSession) Close() error {
	s.mu.Lock()
	s.doc = nil
	s.mu.Unlock()
	return nil
}

func findIn(root *goquery.Selection, loc Locator) ([]Element, error) {
	if loc.By != ByCSS {
		return nil, fmt.Errorf("%w: %s in static html", ErrUnsupportedLocator, loc.By)
	}

	sel := root.Find(loc.Selector)
	out := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &staticElement{sel: s})
	})
	return out, nil
}

type staticElement struct {
	sel *goquery.Selection
}

func (e *staticElement) Find(ctx context.Context, loc Locator) ([]Element, error) {
	if loc.IsSelf() {
		return []Element{e}, nil
	}
	return findIn(e.sel, loc)
}

// Text collapses whitespace runs the way a rendered page would show them.
func (e *staticElement) Text(ctx context.Context) (string, error) {
	return strings.Join(strings.Fields(e.sel.Text()), " "), nil
}

func (e *staticElement) Attr(ctx context.Context, name string) (string, error) {
	v, _ := e.sel.Attr(name)
	return v, nil
}

func (e *staticElement) Click(ctx context.Context) error {
	return nil
}

func (e *staticElement) Clear(ctx context.Context) error {
	e.sel.SetAttr("value", "")
	return nil
}

func (e *staticElement) SendKeys(ctx context.Context, keys string) error {
	keys = strings.TrimSuffix(keys, KeyEnter)
	v, _ := e.sel.Attr("value")
	e.sel.SetAttr("value", v+keys)
	return nil
}

func (e *staticElement) Select(ctx context.Context, value string) error {
	opts := e.sel.Find("option")
	found := false
	opts.Each(func(_ int, o *goquery.Selection) {
		if v, _ := o.Attr("value"); v == value {
			o.SetAttr("selected", "selected")
			found = true
		} else {
			o.RemoveAttr("selected")
		}
	})
	if !found {
		return fmt.Errorf("no option with value %q", value)
	}
	return nil
}

func (e *staticElement) ScrollIntoView(ctx context.Context) error {
	return nil
}
