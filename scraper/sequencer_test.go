package scraper

import (
	"car-rental-scraper/browser"
	"context"
	"strings"
	"testing"
	"time"
)

const formPage = `<html><body>
<input id="where" value="">
<select name="time"><option value="12:00">12:00</option><option value="13:00">13:00</option></select>
<button class="submit">Search</button>
</body></html>`

var fastTiming = Timing{
	GridTimeout:      50 * time.Millisecond,
	PollInterval:     time.Millisecond,
	MoreTimeout:      10 * time.Millisecond,
	MorePollInterval: time.Millisecond,
	DismissTimeout:   10 * time.Millisecond,
	StepTimeout:      20 * time.Millisecond,
}

func loadForm(t *testing.T) *browser.StaticSession {
	t.Helper()
	s := browser.NewStaticSession(map[string]string{"form": formPage})
	if err := s.Navigate(context.Background(), "form"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	return s
}

func TestSequencerFillsForm(t *testing.T) {
	ctx := context.Background()
	s := loadForm(t)
	vars := map[string]string{"city": "Toronto", "time": "13:00"}

	steps := []Step{
		{Action: ActionType, Locator: browser.CSS("#where"), Value: "{{city}}"},
		{Action: ActionPressEnter, Locator: browser.CSS("#where")},
		{Action: ActionSelect, Locator: browser.CSS("select[name='time']"), Value: "{{time}}"},
		{Action: ActionClick, Locator: browser.CSS("#cookie-banner"), Optional: true},
		{Action: ActionPause, Pause: time.Millisecond},
		{Action: ActionClick, Locator: browser.CSS("button").Containing("search")},
	}
	if err := NewSequencer(s, vars, fastTiming).Run(ctx, steps); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if v := FirstNonEmpty(ctx, s, browser.CSS("#where").WithAttr("value")); v != "Toronto" {
		t.Errorf("typed value = %q, want Toronto", v)
	}
	if v := FirstNonEmpty(ctx, s, browser.CSS("option[selected]").WithAttr("value")); v != "13:00" {
		t.Errorf("selected = %q, want 13:00", v)
	}
}

func TestSequencerStopsOnRequiredFailure(t *testing.T) {
	ctx := context.Background()
	s := loadForm(t)

	steps := []Step{
		{Action: ActionType, Locator: browser.CSS("#where"), Value: "first"},
		{Action: ActionWaitFor, Locator: browser.CSS(".results")},
		{Action: ActionType, Locator: browser.CSS("#where"), Value: "second"},
	}
	err := NewSequencer(s, nil, fastTiming).Run(ctx, steps)
	if err == nil {
		t.Fatal("Run() = nil, want error for missing required element")
	}
	if !strings.Contains(err.Error(), "step 2") {
		t.Errorf("error %q does not name the failing step", err)
	}
	if v := FirstNonEmpty(ctx, s, browser.CSS("#where").WithAttr("value")); v != "first" {
		t.Errorf("value = %q, later steps should not run", v)
	}
}

func TestSequencerHonorsStepTimeout(t *testing.T) {
	s := loadForm(t)
	steps := []Step{{Action: ActionWaitFor, Locator: browser.CSS(".never"), Timeout: 5 * time.Millisecond}}

	timing := fastTiming
	timing.StepTimeout = time.Minute

	start := time.Now()
	if err := NewSequencer(s, nil, timing).Run(context.Background(), steps); err == nil {
		t.Fatal("want timeout error")
	}
	if time.Since(start) > time.Second {
		t.Error("step timeout was ignored")
	}
}

func TestSequencerUnknownAction(t *testing.T) {
	s := loadForm(t)
	steps := []Step{{Action: "hover", Locator: browser.CSS("#where")}}
	if err := NewSequencer(s, nil, fastTiming).Run(context.Background(), steps); err == nil {
		t.Fatal("unknown action should fail")
	}
}

func TestExpandVars(t *testing.T) {
	q := NewSequencer(nil, map[string]string{"day": "14"}, fastTiming)
	if got := q.expand("//td[text()='{{day}}']"); got != "//td[text()='14']" {
		t.Errorf("expand() = %q", got)
	}
	if got := q.expand("{{missing}}"); got != "{{missing}}" {
		t.Errorf("unknown placeholder changed: %q", got)
	}
}
