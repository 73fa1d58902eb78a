package scraper

import (
	"car-rental-scraper/browser"
	"car-rental-scraper/models"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Site describes how to scrape one rental website. It is data only: one
// Runner drives every site.
type Site struct {
	Name string

	StartURL string
	// DirectURL opens a results page without going through the form.
	DirectURL string
	// FormURLMarker limits the form to start URLs containing it.
	FormURLMarker string
	Form          []Step
	// Vars fill {{name}} placeholders in step values.
	Vars map[string]string

	Dismiss      []browser.Locator
	BlockMarkers []string

	Cards []browser.Locator
	// UnionCards collects matches of every card locator. Otherwise the
	// first locator that matches anything wins.
	UnionCards bool
	MaxCards   int

	Fields         []Field
	RequiredFields []string
	KeyFields      []string
	Columns        []string

	BeforeExtract []Step
	LoadMore      []browser.Locator

	Output string

	Crawl       []CrawlPage
	CrawlOutput string

	TitleField    string
	PriceFields   []string
	CurrencyField string
}

// Field maps one record column to its candidate locators.
type Field struct {
	Name     string
	Locators []browser.Locator
	Clean    func(string) string
	Default  string
	// Join, when set, concatenates every non-empty match of all locators
	// instead of taking the first one.
	Join string
	// Limit, for crawl fields, emits up to Limit matches as separate rows.
	Limit int
}

// CrawlPage is a secondary page whose headline content is recorded.
type CrawlPage struct {
	URL    string
	Label  string
	Fields []Field
}

// CrawlColumns is the column set of crawl records.
var CrawlColumns = []string{"page_title", "section", "content", "url"}

func (s *Site) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("site has no name")
	}
	if s.StartURL == "" && s.DirectURL == "" {
		return fmt.Errorf("site %s: no start url", s.Name)
	}
	if len(s.Cards) == 0 {
		return fmt.Errorf("site %s: no card locators", s.Name)
	}
	if len(s.Columns) == 0 || len(s.KeyFields) == 0 {
		return fmt.Errorf("site %s: columns and key fields are required", s.Name)
	}
	known := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		known[f.Name] = true
	}
	for _, k := range s.KeyFields {
		if !known[k] {
			return fmt.Errorf("site %s: key field %q is not extracted", s.Name, k)
		}
	}
	return nil
}

// Offers converts records into the site-independent view.
func (s *Site) Offers(records []models.Record) []models.Offer {
	out := make([]models.Offer, 0, len(records))
	for _, r := range records {
		raw := ""
		for _, f := range s.PriceFields {
			if v := r.Get(f); v != "" {
				raw = v
				break
			}
		}
		out = append(out, models.Offer{
			Site:     s.Name,
			Key:      r.Key(s.KeyFields),
			Title:    r.Get(s.TitleField),
			RawPrice: raw,
			Price:    ParsePrice(raw),
			Currency: r.Get(s.CurrencyField),
			Fields:   r,
		})
	}
	return out
}

// ParsePrice reads the first number out of a price string such as
// "$1,234.50" or "CAD 89.99/day". Unparseable input yields 0.
func ParsePrice(raw string) float64 {
	cleaned := strings.NewReplacer("$", " ", ",", "", "€", " ", "£", " ").Replace(raw)
	for _, part := range strings.Fields(cleaned) {
		end := 0
		for end < len(part) && (part[end] >= '0' && part[end] <= '9' || part[end] == '.') {
			end++
		}
		if end == 0 {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimRight(part[:end], "."), 64)
		if err == nil {
			return v
		}
	}
	return 0
}

// Timing holds the waits a Runner applies. Every wait has its own deadline;
// there is no budget across a whole run.
type Timing struct {
	GridTimeout      time.Duration
	PollInterval     time.Duration
	MoreTimeout      time.Duration
	MorePollInterval time.Duration
	DismissTimeout   time.Duration
	StepTimeout      time.Duration
	MinDelay         time.Duration
	MaxDelay         time.Duration
}
