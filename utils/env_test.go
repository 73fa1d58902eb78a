package utils

import (
	"context"
	"testing"
	"time"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STR", "swiftride")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BAD_INT", "forty")
	t.Setenv("TEST_BOOL", " false ")
	t.Setenv("TEST_DUR", "250ms")

	if got := EnvOrDefault("TEST_STR", "hertz"); got != "swiftride" {
		t.Errorf("EnvOrDefault = %q", got)
	}
	if got := EnvOrDefault("TEST_UNSET", "hertz"); got != "hertz" {
		t.Errorf("EnvOrDefault fallback = %q", got)
	}
	if got := EnvIntOrDefault("TEST_INT", 1); got != 42 {
		t.Errorf("EnvIntOrDefault = %d", got)
	}
	if got := EnvIntOrDefault("TEST_BAD_INT", 1); got != 1 {
		t.Errorf("EnvIntOrDefault with bad value = %d", got)
	}
	if got := EnvBoolOrDefault("TEST_BOOL", true); got {
		t.Error("EnvBoolOrDefault = true, want false")
	}
	if got := EnvDurationOrDefault("TEST_DUR", time.Second); got != 250*time.Millisecond {
		t.Errorf("EnvDurationOrDefault = %v", got)
	}
}

func TestRandomDelay(t *testing.T) {
	start := time.Now()
	if err := RandomDelay(context.Background(), 5*time.Millisecond, 10*time.Millisecond); err != nil {
		t.Fatalf("RandomDelay: %v", err)
	}
	if d := time.Since(start); d < 5*time.Millisecond {
		t.Errorf("slept %v, want at least 5ms", d)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := RandomDelay(ctx, time.Minute, time.Minute); err == nil {
		t.Error("cancelled delay returned nil")
	}
}
