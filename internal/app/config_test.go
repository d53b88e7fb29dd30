package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL == "" {
		t.Fatalf("expected default base url")
	}
	if cfg.ProgressProfile != "rich" {
		t.Fatalf("expected rich default profile, got %q", cfg.ProgressProfile)
	}
	if cfg.RequestTimeout != 120*time.Second {
		t.Fatalf("unexpected default timeout %v", cfg.RequestTimeout)
	}
}

func TestLoadConfigReadsYAMLAndClamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := "base_url: https://api.firstdraft.example\nprogress_profile: simple\nscreenplay_type: short\nrequest_timeout: -5s\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "https://api.firstdraft.example" {
		t.Fatalf("base url not read: %q", cfg.BaseURL)
	}
	if cfg.ProgressProfile != "simple" {
		t.Fatalf("profile not read: %q", cfg.ProgressProfile)
	}
	if cfg.RequestTimeout <= 0 {
		t.Fatalf("invalid timeout not clamped: %v", cfg.RequestTimeout)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("FIRSTDRAFT_BASE_URL", "https://override.example")
	t.Setenv("FIRSTDRAFT_PROGRESS_PROFILE", "simple")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "https://override.example" {
		t.Fatalf("env base url ignored: %q", cfg.BaseURL)
	}
	if cfg.ProgressProfile != "simple" {
		t.Fatalf("env profile ignored: %q", cfg.ProgressProfile)
	}
}

func TestLoadConfigUnknownProfileFallsBackToRich(t *testing.T) {
	t.Setenv("FIRSTDRAFT_PROGRESS_PROFILE", "turbo")
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ProgressProfile != "rich" {
		t.Fatalf("unknown profile not clamped: %q", cfg.ProgressProfile)
	}
}

func TestProgressConfigProfiles(t *testing.T) {
	rich := Config{ProgressProfile: "rich"}.ProgressConfig()
	if rich.LinearDuration != 8*time.Second || rich.LinearCap != 90 {
		t.Fatalf("unexpected rich profile: %+v", rich)
	}
	simple := Config{ProgressProfile: "simple"}.ProgressConfig()
	if simple.LinearDuration != 2*time.Second || simple.LinearCap != 100 {
		t.Fatalf("unexpected simple profile: %+v", simple)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yml")
	in := DefaultConfig()
	in.ScreenplayType = "feature"
	if err := SaveConfig(in, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.ScreenplayType != "feature" {
		t.Fatalf("round trip lost screenplay type: %q", out.ScreenplayType)
	}
}
