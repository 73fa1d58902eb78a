package utils

import "testing"

func TestLaunchFlags(t *testing.T) {
	flags := LaunchFlags(true)

	if flags["headless"] != "new" {
		t.Errorf("headless = %v, want new", flags["headless"])
	}
	if flags["disable-blink-features"] != "AutomationControlled" {
		t.Errorf("disable-blink-features = %v", flags["disable-blink-features"])
	}
	for _, name := range []string{"excludeSwitches", "useAutomationExtension"} {
		if _, ok := flags[name]; ok {
			t.Errorf("%s is a driver capability, not a Chrome switch", name)
		}
	}

	if _, ok := LaunchFlags(false)["headless"]; ok {
		t.Error("headful launch carries a headless switch")
	}
}

func TestLaunchOpts(t *testing.T) {
	if got, want := len(LaunchOpts(false, "test-agent")), 4+len(LaunchFlags(false)); got != want {
		t.Errorf("len(LaunchOpts) = %d, want %d", got, want)
	}
}

func TestRandomUserAgent(t *testing.T) {
	ua := RandomUserAgent()
	found := false
	for _, known := range userAgents {
		if ua == known {
			found = true
		}
	}
	if !found {
		t.Errorf("RandomUserAgent() = %q, not in the rotation", ua)
	}
}
