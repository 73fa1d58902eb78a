package scraper

import (
	"car-rental-scraper/browser"
	"car-rental-scraper/models"
	"car-rental-scraper/services"
	"car-rental-scraper/utils"
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Options struct {
	Timing Timing
	// NavigationInterval is the minimum gap between two page loads.
	NavigationInterval time.Duration
	MaxLoadMore        int
	Direct             bool
	// StartURL replaces the site's own start URL when set.
	StartURL string
	// Offline runs against saved pages: no banners, form, pagination or crawl.
	Offline bool
}

// Runner drives a Site through one session:
// page loaded, form filled, results polled, cards extracted, more loaded,
// secondary pages crawled.
type Runner struct {
	session browser.Session
	opts    Options
	limiter *rate.Limiter
}

func NewRunner(session browser.Session, opts Options) *Runner {
	limit := rate.Inf
	if opts.NavigationInterval > 0 {
		limit = rate.Every(opts.NavigationInterval)
	}
	return &Runner{
		session: session,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Run scrapes one site. Only a failure to load the first page is returned
// as an error; everything after that degrades to fewer records.
func (r *Runner) Run(ctx context.Context, site *Site) (models.ScrapeResult, error) {
	result := models.ScrapeResult{Site: site.Name}
	if err := site.Validate(); err != nil {
		return result, err
	}

	utils.Section(strings.ToUpper(site.Name))

	target, useForm := r.target(site)
	if err := r.navigate(ctx, target); err != nil {
		return result, err
	}

	if !r.opts.Offline {
		r.dismiss(ctx, site)
	}
	r.probe(ctx, site)

	if useForm && !r.opts.Offline && len(site.Form) > 0 {
		seq := NewSequencer(r.session, site.Vars, r.opts.Timing)
		if err := seq.Run(ctx, site.Form); err != nil {
			// Results may already be on screen; carry on.
			utils.Warn("Form interaction failed: %v", err)
		} else {
			utils.Success("Form filled and submitted")
		}
	}

	collector := services.NewCollector(site.KeyFields)
	r.scrapeCards(ctx, site, collector, &result)
	result.Records = collector.Records()

	if len(site.Crawl) > 0 && !r.opts.Offline {
		result.CrawlRecords = r.crawl(ctx, site)
	}

	utils.L().Info("site done",
		zap.String("site", site.Name),
		zap.Int("records", len(result.Records)),
		zap.Int("crawl_records", len(result.CrawlRecords)),
		zap.Int("cards_seen", result.CardsSeen),
		zap.Int("failed", result.Failed),
		zap.Int("dropped", result.Dropped),
	)

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("%s interrupted: %w", site.Name, err)
	}
	return result, nil
}

func (r *Runner) target(site *Site) (string, bool) {
	if r.opts.Direct && site.DirectURL != "" {
		return site.DirectURL, false
	}

	url := site.StartURL
	if r.opts.StartURL != "" {
		url = r.opts.StartURL
	}
	if url == "" {
		return site.DirectURL, false
	}
	return url, site.FormURLMarker == "" || strings.Contains(url, site.FormURLMarker)
}

func (r *Runner) navigate(ctx context.Context, url string) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	utils.Info("Opening %s", url)
	return r.session.Navigate(ctx, url)
}

// dismiss clicks away the first cookie banner or interstitial that shows up.
func (r *Runner) dismiss(ctx context.Context, site *Site) {
	if len(site.Dismiss) == 0 {
		return
	}

	t := r.opts.Timing
	if !WaitForAny(ctx, t.PollInterval, t.DismissTimeout, AnyPresent(r.session, site.Dismiss)...) {
		utils.Debug("No banner to dismiss")
		return
	}
	if clickFirst(ctx, r.session, site.Dismiss) {
		utils.Success("Banner dismissed")
	}
}

// probe warns when the page looks like an access-denied interstitial.
func (r *Runner) probe(ctx context.Context, site *Site) bool {
	if len(site.BlockMarkers) == 0 {
		return false
	}

	src, err := r.session.Source(ctx)
	if err != nil {
		utils.Debug("Could not read page source: %v", err)
		return false
	}

	lower := strings.ToLower(src)
	for _, m := range site.BlockMarkers {
		if strings.Contains(lower, strings.ToLower(m)) {
			utils.Warn("Page looks blocked (%q on page)", m)
			return true
		}
	}
	return false
}

func (r *Runner) scrapeCards(ctx context.Context, site *Site, collector *services.Collector, result *models.ScrapeResult) {
	t := r.opts.Timing

	if !WaitForAny(ctx, t.PollInterval, t.GridTimeout, AnyPresent(r.session, site.Cards)...) {
		utils.Warn("No vehicle cards found on page")
		return
	}

	for round := 0; ; round++ {
		if len(site.BeforeExtract) > 0 {
			if err := NewSequencer(r.session, site.Vars, t).Run(ctx, site.BeforeExtract); err != nil {
				utils.Debug("Before-extract steps: %v", err)
			}
		}

		cards := r.collectCards(ctx, site)
		added := 0

		for i, card := range cards {
			if site.MaxCards > 0 && i >= site.MaxCards {
				break
			}
			result.CardsSeen++

			rec, err := extractCard(ctx, card, site.Fields)
			if err != nil {
				result.Failed++
				utils.Warn("Could not extract card %d: %v", i+1, err)
				continue
			}
			if missing := missingField(rec, site.RequiredFields); missing != "" {
				result.Dropped++
				utils.Debug("Card %d dropped: no %s", i+1, missing)
				continue
			}
			if collector.Add(rec) {
				added++
				utils.Success("%s | %s", truncate(rec.Get(site.TitleField), 30), priceLabel(rec, site.PriceFields))
			}
		}

		utils.Info("Round %d: %d cards, %d new offers, %d total", round+1, len(cards), added, collector.Len())

		if ctx.Err() != nil || r.opts.Offline || (round > 0 && added == 0) || round >= r.opts.MaxLoadMore {
			return
		}

		before := browser.Count(ctx, r.session, site.Cards)
		if !clickFirst(ctx, r.session, site.LoadMore) {
			return
		}
		if !WaitForAny(ctx, t.MorePollInterval, t.MoreTimeout, CountChanged(r.session, site.Cards, before)) {
			utils.Debug("Card count unchanged after load more")
		}
	}
}

func (r *Runner) collectCards(ctx context.Context, site *Site) []browser.Element {
	var cards []browser.Element
	for _, loc := range site.Cards {
		els, err := browser.FindMatching(ctx, r.session, loc)
		if err != nil || len(els) == 0 {
			continue
		}
		utils.Debug("Found %d cards using %s", len(els), loc)
		cards = append(cards, els...)
		if !site.UnionCards {
			break
		}
	}
	return cards
}

// extractCard builds one record. A panic inside a backend is turned into
// an error so one bad card does not end the run.
func extractCard(ctx context.Context, card browser.Element, fields []Field) (rec models.Record, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic during extraction: %v", p)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec = make(models.Record, len(fields))
	for _, f := range fields {
		rec[f.Name] = ExtractField(ctx, card, f)
	}
	return rec, nil
}

func (r *Runner) crawl(ctx context.Context, site *Site) []models.Record {
	t := r.opts.Timing
	collector := services.NewCollector(CrawlColumns)

	for i, p := range site.Crawl {
		if ctx.Err() != nil {
			break
		}
		if i > 0 {
			if err := utils.RandomDelay(ctx, t.MinDelay, t.MaxDelay); err != nil {
				break
			}
		}

		utils.Info("Crawling page %d: %s", i+1, p.URL)
		if err := r.navigate(ctx, p.URL); err != nil {
			utils.Warn("Error crawling page %d: %v", i+1, err)
			collector.Add(models.Record{"page_title": "Error", "section": p.Label, "content": "Failed to load page", "url": err.Error()})
			continue
		}
		WaitForAny(ctx, t.PollInterval, t.GridTimeout, Present(r.session, browser.CSS("body")))

		title, err := r.session.Title(ctx)
		if err != nil {
			utils.Debug("No title on %s: %v", p.URL, err)
		}

		for _, f := range p.Fields {
			section := f.Name
			if p.Label != "" {
				section = p.Label + " - " + f.Name
			}

			if f.Limit > 0 {
				for j, v := range AllNonEmpty(ctx, r.session, f.Limit, f.Locators...) {
					if f.Clean != nil {
						v = f.Clean(v)
					}
					collector.Add(crawlRecord(title, fmt.Sprintf("%s %d", section, j+1), v, p.URL))
				}
				continue
			}

			v := ExtractField(ctx, r.session, f)
			if v == "" {
				utils.Debug("Could not find %s on %s", f.Name, p.URL)
				continue
			}
			collector.Add(crawlRecord(title, section, v, p.URL))
		}
	}

	return collector.Records()
}

func crawlRecord(title, section, content, url string) models.Record {
	return models.Record{
		"page_title": strings.TrimSpace(title),
		"section":    section,
		"content":    strings.TrimSpace(content),
		"url":        url,
	}
}

// clickFirst clicks the first element any of the locators matches and
// reports whether a click went through.
func clickFirst(ctx context.Context, f browser.Finder, locs []browser.Locator) bool {
	for _, loc := range locs {
		els, err := browser.FindMatching(ctx, f, loc)
		if err != nil {
			continue
		}
		for _, el := range els {
			if err := el.ScrollIntoView(ctx); err != nil {
				utils.Debug("scroll %s: %v", loc, err)
			}
			if err := el.Click(ctx); err != nil {
				utils.Debug("click %s: %v", loc, err)
				continue
			}
			utils.Debug("Clicked %s", loc)
			return true
		}
	}
	return false
}

// missingField names the first required field that is empty. A single
// character counts as empty: it is always layout noise, never a name.
func missingField(rec models.Record, required []string) string {
	for _, f := range required {
		if len(strings.TrimSpace(rec.Get(f))) < 2 {
			return f
		}
	}
	return ""
}

func priceLabel(rec models.Record, fields []string) string {
	for _, f := range fields {
		if v := rec.Get(f); v != "" {
			return v
		}
	}
	return "no price"
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
