package line

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"labFinder/pkg/scraper"
)

func testCatalog() *scraper.Catalog {
	catalog := scraper.NewCatalog()
	catalog.Set("ICCS 005", scraper.Timeline{
		{Name: scraper.FreeSlotName, Start: 0, End: 600},
		{Name: "CPSC 110", Start: 600, End: 1440},
	})
	catalog.MarkUnavailable("DMP 110", errors.New("timeout"))
	return catalog
}

func newTestClient(url string, noNotify bool) *Client {
	c := NewClient("token", "user", "https://labs.example.edu/calendar", noNotify, zap.NewNop())
	c.apiURL = url
	return c
}

func TestNotifyReport(t *testing.T) {
	var got Message
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if err := newTestClient(server.URL, false).NotifyReport(context.Background(), testCatalog()); err != nil {
		t.Fatalf("NotifyReport() error: %v", err)
	}

	if auth != "Bearer token" {
		t.Errorf("Authorization = %q", auth)
	}
	if got.To != "user" || len(got.Messages) != 1 {
		t.Fatalf("payload = %+v", got)
	}
	msg := got.Messages[0]
	if msg.Type != "flex" || !strings.Contains(msg.AltText, "2 rooms") {
		t.Errorf("message = %+v", msg)
	}

	body, _ := json.Marshal(msg.Contents)
	for _, want := range []string{"ICCS 005", "Open 00:00 - 10:00", "Booked 10:00 - 24:00", "DMP 110", "unavailable", "https://labs.example.edu/calendar"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("flex contents missing %q", want)
		}
	}
}

func TestNotifyReport_Skipped(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	if err := newTestClient(server.URL, true).NotifyReport(context.Background(), testCatalog()); err != nil {
		t.Fatal(err)
	}
	if err := newTestClient(server.URL, false).NotifyReport(context.Background(), scraper.NewCatalog()); err != nil {
		t.Fatal(err)
	}
	if called {
		t.Error("no request should be sent")
	}
}

func TestNotifyReport_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	if err := newTestClient(server.URL, false).NotifyReport(context.Background(), testCatalog()); err == nil {
		t.Error("NotifyReport() should fail on a non-200 status")
	}

	incomplete := NewClient("", "", "https://labs.example.edu/calendar", false, zap.NewNop())
	incomplete.apiURL = server.URL
	if err := incomplete.TestNotification(context.Background()); err == nil {
		t.Error("TestNotification() should fail without credentials")
	}
}
