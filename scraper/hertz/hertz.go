// Package hertz holds the selectors and form script for hertz.ca.
package hertz

import (
	"car-rental-scraper/browser"
	"car-rental-scraper/config"
	"car-rental-scraper/scraper"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	Base       = "https://www.hertz.ca"
	StartURL   = Base + "/rentacar/reservation/"
	resultsURL = Base + "/rentacar/reservation/vehicles"
)

var Columns = []string{
	"code",
	"title",
	"model",
	"passengers",
	"luggage",
	"transmission",
	"fuel",
	"pay_now_price",
	"pay_later_price",
	"currency",
	"image_url",
}

// Site returns the Hertz definition for a pickup described by cfg.
func Site(cfg *config.Config, now time.Time) *scraper.Site {
	pickup := cfg.PickupDate(now)
	dropoff := cfg.ReturnDate(now)

	return &scraper.Site{
		Name:          "hertz",
		StartURL:      StartURL,
		DirectURL:     DirectURL(cfg.PickupCode, pickup, dropoff, cfg.PickupTime),
		FormURLMarker: "/reservation",
		Form:          form,
		Vars: map[string]string{
			"pickup_location": cfg.PickupLocation,
			"pickup_day":      strconv.Itoa(pickup.Day()),
			"dropoff_day":     strconv.Itoa(dropoff.Day()),
			"pickup_time":     cfg.PickupTime,
			"dropoff_time":    cfg.PickupTime,
		},
		Dismiss:      cookieButtons,
		BlockMarkers: []string{"access denied", "blocked"},

		Cards: []browser.Locator{
			browser.CSS("div.vehicle.vehCardRD"),
			browser.CSS("div.gtm-vehicle"),
			browser.CSS("article.dual"),
		},
		UnionCards: true,

		Fields:         fields,
		RequiredFields: []string{"title"},
		KeyFields:      []string{"code", "title", "model", "pay_now_price", "pay_later_price"},
		Columns:        Columns,

		// An open vehicle modal covers the grid; close it before reading.
		BeforeExtract: []scraper.Step{
			{
				Action:  scraper.ActionWaitFor,
				Locator: browser.CSS(".gtm-vehicleModal-foreground:not(.gtm-hide)"),
				Timeout: time.Millisecond,
			},
			{Action: scraper.ActionClick, Locator: browser.CSS(".gtm-modal-close img")},
		},
		LoadMore: []browser.Locator{
			browser.CSS("button").Containing("show more"),
			browser.CSS("button").Containing("load more"),
			browser.CSS("a").Containing("next"),
			browser.CSS("button[aria-label*='Show']"),
		},

		Output:        "hertz_vehicles.csv",
		TitleField:    "title",
		PriceFields:   []string{"pay_now_price", "pay_later_price"},
		CurrencyField: "currency",
	}
}

// DirectURL is the results page for a pickup and return at the same
// location, skipping the reservation form.
func DirectURL(code string, pickup, dropoff time.Time, at string) string {
	q := url.Values{}
	q.Set("pickUpLocation", code)
	q.Set("returnLocation", code)
	q.Set("pickUpDate", pickup.Format("2006-01-02"))
	q.Set("returnDate", dropoff.Format("2006-01-02"))
	q.Set("pickUpTime", at)
	q.Set("returnTime", at)
	return resultsURL + "?" + q.Encode()
}

var cookieButtons = []browser.Locator{
	browser.CSS("a.cc-btn.cc-allow"),
	browser.CSS("a[aria-label='allow cookies']"),
	browser.CSS("#onetrust-accept-btn-handler"),
	browser.CSS("button#truste-consent-button"),
	browser.CSS("button[aria-label='Accept All']"),
	browser.CSS("button").Containing("Accept"),
	browser.CSS("a").Containing("Accept Cookies"),
}

// The date picker is the third top-level div while it is open.
const calendar = "/html/body/div[3]"

var form = []scraper.Step{
	{Action: scraper.ActionType, Locator: browser.CSS("#pickup-location"), Value: "{{pickup_location}}", Pause: time.Second},
	{Action: scraper.ActionClick, Locator: browser.CSS("#pickup-date-box")},
	{Action: scraper.ActionWaitFor, Locator: browser.XPath(calendar), Optional: true},
	{Action: scraper.ActionClick, Locator: browser.XPath(calendar + "//td[text()='{{pickup_day}}' and not(contains(@class, 'empty'))]"), Optional: true},
	{Action: scraper.ActionSelect, Locator: browser.CSS("select[name='pickupTime']"), Value: "{{pickup_time}}"},
	{Action: scraper.ActionClick, Locator: browser.CSS("#dropoff-date-box")},
	{Action: scraper.ActionWaitFor, Locator: browser.XPath(calendar), Optional: true},
	{Action: scraper.ActionClick, Locator: browser.XPath(calendar + "//td[text()='{{dropoff_day}}' and not(contains(@class, 'empty'))]"), Optional: true},
	{Action: scraper.ActionSelect, Locator: browser.CSS("select[name='dropoffTime']"), Value: "{{dropoff_time}}"},
	{Action: scraper.ActionClick, Locator: browser.CSS("button.res-submit")},
}

var fields = []scraper.Field{
	{Name: "code", Locators: []browser.Locator{browser.Self().WithAttr("data-sipp")}},
	{Name: "title", Locators: []browser.Locator{
		browser.CSS("h2.gtm-vehicle-title"),
		browser.CSS(".vehicle-type"),
		browser.CSS("h1"),
		browser.CSS(".gtm-vehicle-header h2"),
	}},
	{Name: "model", Locators: []browser.Locator{
		browser.CSS(".gtm-vehicle-type"),
		browser.CSS("h1"),
	}},
	{Name: "passengers", Locators: []browser.Locator{
		browser.CSS(".gtm-vehFeature-passengers .gtm-vehFeatureDesc"),
		browser.CSS("li").Containing("Passengers"),
	}},
	{Name: "luggage", Locators: []browser.Locator{
		browser.CSS(".gtm-vehFeature-suitcases .gtm-vehFeatureDesc"),
		browser.CSS("li").Containing("Suitcase"),
	}},
	{Name: "transmission", Locators: []browser.Locator{
		browser.CSS(".gtm-vehFeature-transmission .gtm-vehFeatureTooltip p"),
		browser.CSS(".gtm-vehFeature-transmission .gtm-vehFeatureDesc"),
		browser.CSS("li").Containing("Transmission"),
	}},
	{Name: "fuel", Locators: []browser.Locator{
		browser.CSS(".gtm-vehFeature-fuel .gtm-vehFeatureDesc"),
		browser.CSS(".gtm-vehFeature-fuel .gtm-vehFeatureTooltip p"),
		browser.CSS("li").Containing("l/100km"),
	}},
	{Name: "pay_now_price", Clean: Amount, Locators: []browser.Locator{
		browser.CSS(".gtm-price-cont.gtm-paynow .gtm-price"),
	}},
	{Name: "pay_later_price", Clean: Amount, Locators: []browser.Locator{
		browser.CSS(".gtm-price-cont.gtm-paylater .gtm-price"),
	}},
	{Name: "currency", Locators: []browser.Locator{
		browser.CSS(".gtm-price-cont.gtm-paynow .gtm-price-currency-per"),
		browser.CSS(".gtm-price-cont.gtm-paylater .gtm-price-currency-per"),
	}},
	{Name: "image_url", Clean: AbsoluteURL, Locators: []browser.Locator{
		browser.CSS(".gtm-vehicle-img img").WithAttr("src"),
		browser.CSS("img.car-info").WithAttr("src"),
	}},
}

var nonAmount = regexp.MustCompile(`[^0-9.,]`)

// Amount keeps only digits and separators: "$ 1,234.56 CAD" -> "1,234.56".
func Amount(s string) string {
	return nonAmount.ReplaceAllString(s, "")
}

// AbsoluteURL resolves protocol-relative image URLs.
func AbsoluteURL(s string) string {
	if strings.HasPrefix(s, "//") {
		return "https:" + s
	}
	if strings.HasPrefix(s, "/") {
		return Base + s
	}
	return s
}
