package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNew_WritesDailyFile(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)

	logger, err := New(Options{Level: "debug", Dir: dir}, day)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	logger.Info("hello from the lab finder")
	_ = logger.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "2024-03-05.log"))
	if err != nil {
		t.Fatalf("daily log file missing: %v", err)
	}
	if !strings.Contains(string(data), "hello from the lab finder") {
		t.Errorf("log file = %q", data)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New(Options{Level: "loud"}, time.Now()); err == nil {
		t.Fatal("New() should reject an unknown level")
	}
}

func TestRotator(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2024, 3, 5, 23, 50, 0, 0, time.UTC)

	r, err := NewRotator(Options{Dir: dir}, day)
	if err != nil {
		t.Fatal(err)
	}
	first := r.Logger()

	if got := r.Rotate(day.Add(5 * time.Minute)); got != first {
		t.Error("Rotate() on the same day should keep the logger")
	}

	next := r.Rotate(day.Add(15 * time.Minute))
	if next == first {
		t.Error("Rotate() on a new day should build a new logger")
	}
	_ = next.Sync()

	if _, err := os.Stat(filepath.Join(dir, "2024-03-06.log")); err != nil {
		t.Errorf("rotated log file missing: %v", err)
	}
}

func TestIsValidLogPath(t *testing.T) {
	if !isValidLogPath("logs", filepath.Join("logs", "2024-03-05.log")) {
		t.Error("file inside the log directory should be valid")
	}
	if isValidLogPath("logs", filepath.Join("logs-other", "x.log")) {
		t.Error("sibling directory should be rejected")
	}
}
