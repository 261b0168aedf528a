package core

import (
	"path/filepath"
	"testing"
)

func TestLoadSettingsWritesDefaultsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if !s.ShowRobotState {
		t.Fatalf("expected default settings to show robot state")
	}
	if s.Robot.EndOfTaskWaitTicks != 60 {
		t.Fatalf("expected default EndOfTaskWaitTicks=60, got %d", s.Robot.EndOfTaskWaitTicks)
	}

	reloaded, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("reload settings: %v", err)
	}
	if reloaded.Robot.EndOfTaskWaitTicks != 60 {
		t.Fatalf("expected the written defaults to round-trip, got %d", reloaded.Robot.EndOfTaskWaitTicks)
	}
}

func TestSettingsRoundTripPreservesDebugFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.toml")

	s := DefaultSettings()
	s.Debug.FastDeconstruct = true
	s.Debug.ShowPathWalking = true
	if err := s.Save(path); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	reloaded, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if !reloaded.Debug.FastDeconstruct || !reloaded.Debug.ShowPathWalking {
		t.Fatalf("expected debug flags to round-trip, got %+v", reloaded.Debug)
	}
}
