// Package swiftride holds the selectors for swiftride.net, a car
// subscription catalogue, and the informational pages crawled after it.
package swiftride

import (
	"car-rental-scraper/browser"
	"car-rental-scraper/scraper"
	"strings"
)

const (
	Base     = "https://swiftride.net"
	StartURL = Base + "/cars"
)

var Columns = []string{"name", "year", "price", "price_period", "basics", "features"}

// Site returns the SwiftRide definition; query is typed into the catalogue
// search box ("honda" when empty).
func Site(query string) *scraper.Site {
	if strings.TrimSpace(query) == "" {
		query = "honda"
	}

	return &scraper.Site{
		Name:     "swiftride",
		StartURL: StartURL,
		Form: []scraper.Step{
			{Action: scraper.ActionType, Locator: browser.CSS("input[placeholder='Search by make, model, or year...']"), Value: "{{query}}"},
			{Action: scraper.ActionPressEnter, Locator: browser.CSS("input[placeholder='Search by make, model, or year...']")},
		},
		Vars: map[string]string{"query": query},

		// Tried in order; the first that matches anything is used.
		Cards: []browser.Locator{
			browser.CSS("div[class*='rounded-lg border text-card-foreground shadow-sm flex flex-col w-full cursor-pointer']"),
			browser.CSS("div[role='button'][tabindex='0']"),
			browser.CSS("div[class*='car-item'], div[class*='vehicle-item']"),
			browser.CSS("div[class*='car-card'], div[class*='vehicle-card']"),
			browser.CSS("div[class*='car'], div[class*='vehicle']"),
		},
		MaxCards: 10,

		Fields: []scraper.Field{
			{Name: "name", Locators: []browser.Locator{
				browser.CSS("h3[class*='text-[#57E667]']"),
				browser.CSS("h3"),
				browser.CSS("h2"),
				browser.CSS("h1"),
			}},
			{Name: "year", Locators: []browser.Locator{
				browser.CSS("p[class*='text-gray-400']"),
			}},
			{Name: "price", Locators: []browser.Locator{
				browser.CSS("span[class*='text-3xl font-bold text-white']"),
			}},
			{Name: "price_period", Locators: []browser.Locator{
				browser.CSS("span[class*='text-sm text-gray-400 font-medium']"),
			}},
			{Name: "basics", Join: " | ", Locators: []browser.Locator{
				browser.CSS("div[class*='inline-flex items-center text-xs bg-gray-800']"),
			}},
			// The year line stands in when a card has no feature blurb.
			{Name: "features", Locators: []browser.Locator{
				browser.CSS("p[class*='text-xs text-gray-400 leading-relaxed']"),
				browser.CSS("p[class*='text-gray-400']"),
			}},
		},
		RequiredFields: []string{"name"},
		KeyFields:      []string{"name", "year", "price"},
		Columns:        Columns,

		Output: "swiftride_data.csv",

		Crawl:       crawl,
		CrawlOutput: "swiftride_multipage_data.csv",

		TitleField:  "name",
		PriceFields: []string{"price"},
	}
}

var heading = scraper.Field{
	Name:    "Main Heading",
	Default: "No heading found",
	Locators: []browser.Locator{
		browser.CSS("h1"),
		browser.CSS("h2"),
		browser.CSS("div[class*='hero']"),
		browser.CSS("div[class*='title']"),
	},
}

var crawl = []scraper.CrawlPage{
	{
		URL:   Base + "/",
		Label: "SwiftRide Home Page",
		Fields: []scraper.Field{
			heading,
			{Name: "Hero Text", Locators: []browser.Locator{browser.CSS("h1").Containing("Drive Your Dreams")}},
			{Name: "Subtitle", Clean: clip(50), Locators: []browser.Locator{browser.CSS("p").Containing("car subscription platform")}},
		},
	},
	{
		URL:   Base + "/how-it-works",
		Label: "How It Works Page",
		Fields: []scraper.Field{
			heading,
			{Name: "Hero Section", Locators: []browser.Locator{browser.CSS("h1").Containing("couple")}},
			{Name: "Process Step", Limit: 2, Locators: []browser.Locator{
				browser.CSS("h3").Containing("Apply"),
				browser.CSS("h3").Containing("Sign Agreement"),
			}},
		},
	},
	{
		URL:   Base + "/contact-us",
		Label: "Contact Us Page",
		Fields: []scraper.Field{
			heading,
			{Name: "Contact Email", Locators: []browser.Locator{browser.CSS("a[href*='mailto:hello@swiftride.net']")}},
			{Name: "Support Option", Limit: 2, Locators: []browser.Locator{
				browser.CSS("h3").Containing("Email Support"),
				browser.CSS("h3").Containing("Live Chat"),
			}},
		},
	},
}

// clip shortens long blurbs to n runes plus an ellipsis.
func clip(n int) func(string) string {
	return func(s string) string {
		r := []rune(s)
		if len(r) <= n {
			return s
		}
		return string(r[:n]) + "..."
	}
}
