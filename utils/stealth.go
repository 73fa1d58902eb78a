package utils

import (
	"context"
	"math/rand"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Desktop Chrome identities, one picked per launch when none is configured.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/137.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/137.0.0.0 Safari/537.36",
}

func RandomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// LaunchFlags are the Chrome command-line switches a session starts with.
func LaunchFlags(headless bool) map[string]interface{} {
	flags := map[string]interface{}{
		"disable-blink-features": "AutomationControlled",
		"disable-dev-shm-usage":  true,
		"disable-gpu":            true,
		"no-sandbox":             true,
		"lang":                   "en-CA",
	}
	if headless {
		flags["headless"] = "new"
	}
	return flags
}

// LaunchOpts turns LaunchFlags into allocator options. An empty userAgent
// picks one at random.
func LaunchOpts(headless bool, userAgent string) []chromedp.ExecAllocatorOption {
	if userAgent == "" {
		userAgent = RandomUserAgent()
	}

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(userAgent),
	}
	for name, value := range LaunchFlags(headless) {
		opts = append(opts, chromedp.Flag(name, value))
	}
	return opts
}

const maskAutomationJS = `(() => {
	Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
	Object.defineProperty(navigator, 'languages', { get: () => ['en-CA', 'en'] });
	window.chrome = window.chrome || { runtime: {} };
})();`

// HideWebDriver registers the navigator patch on the tab. Chrome replays it
// in every document the tab loads from then on.
func HideWebDriver() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(maskAutomationJS).Do(ctx)
		return err
	})
}
