package hertz

import (
	"car-rental-scraper/browser"
	"car-rental-scraper/config"
	"car-rental-scraper/scraper"
	"context"
	"testing"
	"time"
)

const vehiclesPage = `<html><body>
<div class="gtm-vehicleModal-foreground gtm-hide"><span class="gtm-modal-close"><img src="x.png"></span></div>
<div class="vehicle vehCardRD" data-sipp="ICAR">
  <h2 class="gtm-vehicle-title">Compact</h2>
  <span class="gtm-vehicle-type">Toyota Corolla or similar</span>
  <div class="gtm-vehFeature-passengers"><span class="gtm-vehFeatureDesc">5</span></div>
  <div class="gtm-vehFeature-suitcases"><span class="gtm-vehFeatureDesc">2</span></div>
  <div class="gtm-vehFeature-transmission"><div class="gtm-vehFeatureTooltip"><p>Automatic</p></div></div>
  <div class="gtm-price-cont gtm-paynow"><span class="gtm-price">$ 61.20</span><span class="gtm-price-currency-per">CAD/day</span></div>
  <div class="gtm-price-cont gtm-paylater"><span class="gtm-price">$ 68.00</span></div>
  <div class="gtm-vehicle-img"><img src="//images.hertz.test/ICAR.png"></div>
</div>
<article class="dual">
  <h1>SUV</h1>
  <ul><li>7 Passengers</li><li>3 Suitcases</li><li>Automatic Transmission</li><li>8.1 l/100km</li></ul>
  <div class="gtm-price-cont gtm-paylater"><span class="gtm-price">CAD 1,078.00</span><span class="gtm-price-currency-per">CAD</span></div>
  <img class="car-info" src="/img/suv.png">
</article>
<div class="vehicle vehCardRD" data-sipp="ICAR">
  <h2 class="gtm-vehicle-title">Compact</h2>
  <span class="gtm-vehicle-type">Toyota Corolla or similar</span>
  <div class="gtm-price-cont gtm-paynow"><span class="gtm-price">$ 61.20</span></div>
  <div class="gtm-price-cont gtm-paylater"><span class="gtm-price">$ 68.00</span></div>
</div>
<div class="gtm-vehicle"><span class="gtm-price">$ 10.00</span></div>
</body></html>`

var testTiming = scraper.Timing{
	GridTimeout:      50 * time.Millisecond,
	PollInterval:     time.Millisecond,
	MoreTimeout:      5 * time.Millisecond,
	MorePollInterval: time.Millisecond,
	DismissTimeout:   5 * time.Millisecond,
	StepTimeout:      5 * time.Millisecond,
}

func TestSiteExtractsVehicles(t *testing.T) {
	cfg := config.DefaultConfig()
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	site := Site(cfg, now)

	session := browser.NewStaticSession(map[string]string{site.DirectURL: vehiclesPage})
	runner := scraper.NewRunner(session, scraper.Options{Timing: testTiming, Direct: true, Offline: true})

	result, err := runner.Run(context.Background(), site)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("got %d records, want 2: %v", len(result.Records), result.Records)
	}
	if result.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1 (card without title)", result.Dropped)
	}

	compact := result.Records[0]
	want := map[string]string{
		"code":            "ICAR",
		"title":           "Compact",
		"model":           "Toyota Corolla or similar",
		"passengers":      "5",
		"luggage":         "2",
		"transmission":    "Automatic",
		"fuel":            "",
		"pay_now_price":   "61.20",
		"pay_later_price": "68.00",
		"currency":        "CAD/day",
		"image_url":       "https://images.hertz.test/ICAR.png",
	}
	for k, v := range want {
		if compact.Get(k) != v {
			t.Errorf("compact %s = %q, want %q", k, compact.Get(k), v)
		}
	}

	suv := result.Records[1]
	want = map[string]string{
		"code":            "",
		"title":           "SUV",
		"model":           "SUV",
		"passengers":      "7 Passengers",
		"luggage":         "3 Suitcases",
		"transmission":    "Automatic Transmission",
		"fuel":            "8.1 l/100km",
		"pay_now_price":   "",
		"pay_later_price": "1,078.00",
		"currency":        "CAD",
		"image_url":       Base + "/img/suv.png",
	}
	for k, v := range want {
		if suv.Get(k) != v {
			t.Errorf("suv %s = %q, want %q", k, suv.Get(k), v)
		}
	}

	offers := site.Offers(result.Records)
	if offers[1].Price != 1078 {
		t.Errorf("suv price = %v, want pay-later fallback", offers[1].Price)
	}
}

func TestDirectURL(t *testing.T) {
	pickup := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	got := DirectURL("YYZ", pickup, pickup.AddDate(0, 0, 1), "13:00")
	want := resultsURL + "?pickUpDate=2025-03-01&pickUpLocation=YYZ&pickUpTime=13%3A00" +
		"&returnDate=2025-03-02&returnLocation=YYZ&returnTime=13%3A00"
	if got != want {
		t.Errorf("DirectURL() =\n%s\nwant\n%s", got, want)
	}
}

func TestSiteVars(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.PickupInDays = 3
	cfg.RentalDays = 2
	site := Site(cfg, time.Date(2025, 1, 30, 8, 0, 0, 0, time.UTC))

	if site.Vars["pickup_day"] != "2" || site.Vars["dropoff_day"] != "4" {
		t.Errorf("vars = %v", site.Vars)
	}
	if err := site.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestCleaners(t *testing.T) {
	amounts := map[string]string{
		"$ 1,234.56 CAD": "1,234.56",
		"CAD 89.99/day":  "89.99",
		"Sold out":       "",
	}
	for in, want := range amounts {
		if got := Amount(in); got != want {
			t.Errorf("Amount(%q) = %q, want %q", in, got, want)
		}
	}

	urls := map[string]string{
		"//img.test/a.png":       "https://img.test/a.png",
		"/a.png":                 Base + "/a.png",
		"https://cdn.test/a.png": "https://cdn.test/a.png",
	}
	for in, want := range urls {
		if got := AbsoluteURL(in); got != want {
			t.Errorf("AbsoluteURL(%q) = %q, want %q", in, got, want)
		}
	}
}
