package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.CalendarURL != CalendarURL {
		t.Errorf("CalendarURL = %q, want %q", cfg.CalendarURL, CalendarURL)
	}
	if cfg.BaseURL != BaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, BaseURL)
	}
	if cfg.MinimumGapMinutes != 10 || cfg.EarlyReleaseMinutes != 0 {
		t.Errorf("policy = %d/%d, want 10/0", cfg.MinimumGapMinutes, cfg.EarlyReleaseMinutes)
	}
	if cfg.PageTimeout != time.Minute {
		t.Errorf("PageTimeout = %v, want 1m", cfg.PageTimeout)
	}
	if cfg.LineEnabled() || cfg.EmailEnabled() {
		t.Error("delivery should be disabled without credentials")
	}
}

func TestLoad_Env(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("LABS_END_EARLY_OFFSET_MINUTES", "10")
	t.Setenv("MINIMUM_GAP_MINUTES", "15")
	t.Setenv("REQUEST_INTERVAL", "2s")
	t.Setenv("LINE_CHANNEL_TOKEN", "token")
	t.Setenv("LINE_USER_ID", "user")
	t.Setenv("LAB_BASE_URL", "https://labs.example.edu")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	policy := cfg.Policy()
	if policy.EarlyReleaseMinutes != 10 || policy.MinimumGapMinutes != 15 {
		t.Errorf("Policy() = %+v", policy)
	}
	if _, ok := policy.Overrides["ACM contest"]; !ok {
		t.Error("Policy() should keep the default overrides")
	}
	if cfg.RequestInterval != 2*time.Second {
		t.Errorf("RequestInterval = %v, want 2s", cfg.RequestInterval)
	}
	if cfg.BaseURL != "https://labs.example.edu" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if !cfg.LineEnabled() {
		t.Error("LINE should be enabled")
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labfinder.yaml")
	content := "MINIMUM_GAP_MINUTES: 5\nOUTPUT_PATH: out.txt\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.MinimumGapMinutes != 5 || cfg.OutputPath != "out.txt" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load() should fail for a missing explicit config file")
	}
}

func TestLoad_Invalid(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MINIMUM_GAP_MINUTES", "-1")

	if _, err := Load(""); err == nil {
		t.Fatal("Load() should reject a negative minimum gap")
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore Chdir: %v", err)
		}
	})
}
