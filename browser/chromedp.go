package browser

import (
	"car-rental-scraper/utils"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

type ChromeOptions struct {
	Headless          bool
	UserAgent         string
	NavigationTimeout time.Duration
}

// ChromeSession drives one Chrome tab over the DevTools protocol.
type ChromeSession struct {
	opts        ChromeOptions
	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	closeOnce   sync.Once
}

// NewChromeSession starts Chrome and opens a tab. The browser process is
// running when this returns without error; callers must Close it.
func NewChromeSession(opts ChromeOptions) (*ChromeSession, error) {
	utils.Info("Launching Chrome browser...")

	allocCtx, allocCancel := chromedp.NewExecAllocator(
		context.Background(),
		utils.LaunchOpts(opts.Headless, opts.UserAgent)...,
	)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	s := &ChromeSession{
		opts:        opts,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
	}

	chromedp.ListenTarget(tabCtx, s.onEvent)

	// The first Run allocates the browser.
	if err := chromedp.Run(tabCtx, utils.HideWebDriver()); err != nil {
		s.Close()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	utils.Success("Browser ready")
	return s, nil
}

func (s *ChromeSession) onEvent(ev interface{}) {
	switch e := ev.(type) {
	case *page.EventJavascriptDialogOpening:
		utils.Info("Alert text: %s", e.Message)
		// Handling the dialog from inside the listener would deadlock.
		go func() {
			if err := chromedp.Run(s.tabCtx, page.HandleJavaScriptDialog(true)); err != nil {
				utils.Warn("Could not accept dialog: %v", err)
				return
			}
			utils.Debug("Alert accepted")
		}()
	}
}

func (s *ChromeSession) Close() error {
	s.closeOnce.Do(func() {
		utils.Info("Closing browser...")
		s.tabCancel()
		s.allocCancel()
	})
	return nil
}

// run executes actions on the tab, bounded by both the tab and ctx.
func (s *ChromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.tabCtx)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return classify(err)
}

func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	if s.opts.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.NavigationTimeout)
		defer cancel()
	}

	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (s *ChromeSession) Title(ctx context.Context) (string, error) {
	var title string
	err := s.run(ctx, chromedp.Title(&title))
	return title, err
}

func (s *ChromeSession) Source(ctx context.Context) (string, error) {
	var html string
	err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (s *ChromeSession) Find(ctx context.Context, loc Locator) ([]Element, error) {
	return s.find(ctx, loc, nil)
}

func (s *ChromeSession) find(ctx context.Context, loc Locator, parent *cdp.Node) ([]Element, error) {
	if loc.IsSelf() {
		if parent == nil {
			return nil, fmt.Errorf("%w: self locator on a page", ErrUnsupportedLocator)
		}
		return []Element{&chromeElement{s: s, node: parent}}, nil
	}

	var opts []chromedp.QueryOption
	switch loc.By {
	case ByCSS:
		opts = append(opts, chromedp.ByQueryAll)
	case ByXPath:
		// DOM.performSearch always searches the whole document.
		if parent != nil {
			return nil, fmt.Errorf("%w: xpath scoped to an element", ErrUnsupportedLocator)
		}
		opts = append(opts, chromedp.BySearch)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLocator, loc.By)
	}
	if parent != nil {
		opts = append(opts, chromedp.FromNode(parent))
	}
	opts = append(opts, chromedp.AtLeast(0))

	var nodes []*cdp.Node
	if err := s.run(ctx, chromedp.Nodes(loc.Selector, &nodes, opts...)); err != nil {
		return nil, err
	}

	out := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &chromeElement{s: s, node: n})
	}
	return out, nil
}

type chromeElement struct {
	s    *ChromeSession
	node *cdp.Node
}

func (e *chromeElement) call(ctx context.Context, fn string, res interface{}, args ...interface{}) error {
	return e.s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(e.node.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		return chromedp.CallFunctionOn(fn, res, func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
			return p.WithObjectID(obj.ObjectID)
		}, args...).Do(ctx)
	}))
}

func (e *chromeElement) Find(ctx context.Context, loc Locator) ([]Element, error) {
	return e.s.find(ctx, loc, e.node)
}

func (e *chromeElement) Text(ctx context.Context) (string, error) {
	var text string
	err := e.call(ctx, `function() { return this.innerText || this.textContent || ''; }`, &text)
	return text, err
}

func (e *chromeElement) Attr(ctx context.Context, name string) (string, error) {
	var v string
	err := e.call(ctx, `function(name) {
		const v = this.getAttribute(name);
		return v === null ? '' : v;
	}`, &v, name)
	return v, err
}

func (e *chromeElement) Click(ctx context.Context) error {
	return e.call(ctx, `function() { this.click(); }`, nil)
}

func (e *chromeElement) Clear(ctx context.Context) error {
	return e.call(ctx, `function() {
		this.value = '';
		this.dispatchEvent(new Event('input', { bubbles: true }));
	}`, nil)
}

func (e *chromeElement) SendKeys(ctx context.Context, keys string) error {
	return e.s.run(ctx, chromedp.SendKeys([]cdp.NodeID{e.node.NodeID}, keys, chromedp.ByNodeID))
}

func (e *chromeElement) Select(ctx context.Context, value string) error {
	var ok bool
	err := e.call(ctx, `function(v) {
		this.value = v;
		this.dispatchEvent(new Event('change', { bubbles: true }));
		return this.value === v;
	}`, &ok, value)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no option with value %q", value)
	}
	return nil
}

func (e *chromeElement) ScrollIntoView(ctx context.Context) error {
	return e.call(ctx, `function() { this.scrollIntoView({ block: 'center' }); }`, nil)
}

// Messages Chrome answers with when a node id no longer resolves.
var staleMarkers = []string{
	"could not find node",
	"node with given id",
	"no node found",
	"cannot find context with specified id",
	"node is detached",
}

func classify(err error) error {
	if err == nil || errors.Is(err, ErrStale) {
		return err
	}
	msg := strings.ToLower(err.Error())
	for _, m := range staleMarkers {
		if strings.Contains(msg, m) {
			return fmt.Errorf("%w: %v", ErrStale, err)
		}
	}
	return err
}
