package swiftride

import (
	"car-rental-scraper/browser"
	"car-rental-scraper/scraper"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

const catalogue = `<html><head><title>Cars | SwiftRide</title></head><body>
<input placeholder="Search by make, model, or year...">
<div role="button" tabindex="0">
  <h3 class="text-lg font-semibold">Honda Civic</h3>
  <p class="text-gray-400 text-sm">2023</p>
  <span class="text-3xl font-bold text-white">$499</span>
  <span class="text-sm text-gray-400 font-medium">/month</span>
  <div class="inline-flex items-center text-xs bg-gray-800 rounded">Automatic</div>
  <div class="inline-flex items-center text-xs bg-gray-800 rounded">5 seats</div>
  <p class="text-xs text-gray-400 leading-relaxed">Apple CarPlay, heated seats</p>
</div>
<div role="button" tabindex="0">
  <h3>Honda Accord</h3>
  <p class="text-gray-400">2022</p>
  <span class="text-3xl font-bold text-white">$599</span>
</div>
<div role="button" tabindex="0">
  <h3>Honda Civic</h3>
  <p class="text-gray-400">2023</p>
  <span class="text-3xl font-bold text-white">$499</span>
</div>
<div role="button" tabindex="0"><p class="text-gray-400">2021</p></div>
</body></html>`

const home = `<html><head><title>SwiftRide</title></head><body>
<h1>Drive Your Dreams</h1>
<p>SwiftRide is the car subscription platform that puts you behind the wheel without a loan.</p>
</body></html>`

const howItWorks = `<html><head><title>How It Works</title></head><body>
<h1>A couple of steps to your next car</h1>
<h3>Apply</h3><h3>Choose</h3><h3>Sign Agreement</h3>
</body></html>`

var testTiming = scraper.Timing{
	GridTimeout:      50 * time.Millisecond,
	PollInterval:     time.Millisecond,
	MoreTimeout:      5 * time.Millisecond,
	MorePollInterval: time.Millisecond,
	DismissTimeout:   5 * time.Millisecond,
	StepTimeout:      20 * time.Millisecond,
}

func TestSiteExtractsCatalogue(t *testing.T) {
	session := browser.NewStaticSession(map[string]string{StartURL: catalogue})
	runner := scraper.NewRunner(session, scraper.Options{Timing: testTiming, Offline: true})

	result, err := runner.Run(context.Background(), Site(""))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("got %d records, want 2: %v", len(result.Records), result.Records)
	}

	civic := result.Records[0]
	want := map[string]string{
		"name":         "Honda Civic",
		"year":         "2023",
		"price":        "$499",
		"price_period": "/month",
		"basics":       "Automatic | 5 seats",
		"features":     "Apple CarPlay, heated seats",
	}
	for k, v := range want {
		if civic.Get(k) != v {
			t.Errorf("civic %s = %q, want %q", k, civic.Get(k), v)
		}
	}

	accord := result.Records[1]
	if accord.Get("features") != "2022" {
		t.Errorf("features = %q, want year fallback", accord.Get("features"))
	}
	if accord.Get("basics") != "" || accord.Get("price_period") != "" {
		t.Errorf("accord = %v", accord)
	}
	if result.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", result.Dropped)
	}
}

func TestSiteCapsCards(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 1; i <= 12; i++ {
		fmt.Fprintf(&b, `<div role="button" tabindex="0"><h3>Car %d</h3></div>`, i)
	}
	b.WriteString("</body></html>")

	session := browser.NewStaticSession(map[string]string{StartURL: b.String()})
	runner := scraper.NewRunner(session, scraper.Options{Timing: testTiming, Offline: true})

	result, err := runner.Run(context.Background(), Site("bmw"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Records) != 10 {
		t.Errorf("got %d records, want 10", len(result.Records))
	}
}

func TestSiteSearchesAndCrawls(t *testing.T) {
	session := browser.NewStaticSession(map[string]string{
		StartURL:               catalogue,
		Base + "/":             home,
		Base + "/how-it-works": howItWorks,
	})
	runner := scraper.NewRunner(session, scraper.Options{Timing: testTiming})

	result, err := runner.Run(context.Background(), Site(""))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Records) != 2 {
		t.Errorf("got %d records, want 2", len(result.Records))
	}

	got := make(map[string]string)
	for _, r := range result.CrawlRecords {
		got[r.Get("section")] = r.Get("content")
	}
	want := map[string]string{
		"SwiftRide Home Page - Main Heading": "Drive Your Dreams",
		"SwiftRide Home Page - Hero Text":    "Drive Your Dreams",
		"SwiftRide Home Page - Subtitle":     "SwiftRide is the car subscription platform that pu...",
		"How It Works Page - Main Heading":   "A couple of steps to your next car",
		"How It Works Page - Hero Section":   "A couple of steps to your next car",
		"How It Works Page - Process Step 1": "Apply",
		"How It Works Page - Process Step 2": "Sign Agreement",
		"Contact Us Page":                    "Failed to load page",
	}
	if len(got) != len(want) {
		t.Errorf("crawl sections = %v", got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestClip(t *testing.T) {
	if got := clip(5)("abcdefgh"); got != "abcde..." {
		t.Errorf("clip = %q", got)
	}
	if got := clip(5)("abc"); got != "abc" {
		t.Errorf("clip = %q", got)
	}
}
