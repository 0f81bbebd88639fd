package verify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"FeedSentinel/internal/config"
)

func newTestDetector(t *testing.T, response string) *WebDetector {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("api key missing from query, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	detector := NewWebDetector(config.VisionConfig{Endpoint: srv.URL, APIKey: "test-key"})
	detector.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return detector
}

func TestLookupPrefersNonRepostPages(t *testing.T) {
	t.Parallel()

	detector := newTestDetector(t, `{
		"responses": [{
			"webDetection": {
				"pagesWithMatchingImages": [
					{"url": "https://www.instagram.com/p/abc/", "pageTitle": "A repost"},
					{"url": "https://www.reuters.com/glacier-story", "pageTitle": "Glacier collapse footage from 2019"},
					{"url": "https://example.com/later", "pageTitle": "Another page"}
				],
				"bestGuessLabels": [{"label": "glacier collapse"}]
			}
		}]
	}`)

	prov, err := detector.Lookup(context.Background(), "https://cdn.example.com/1080.jpg")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if prov.OldestSourceURL != "https://www.reuters.com/glacier-story" {
		t.Fatalf("repost page must lose to the first other page, got %s", prov.OldestSourceURL)
	}
	if !prov.IsMismatch {
		t.Fatal("non-instagram origin must be a mismatch")
	}
	if prov.Context != "Glacier collapse footage from 2019 | Best guess: glacier collapse" {
		t.Fatalf("context assembled wrong: %q", prov.Context)
	}
	if prov.Year != 2025 {
		t.Fatalf("year must default to the current year, got %d", prov.Year)
	}
}

func TestLookupFallsBackToRepostPage(t *testing.T) {
	t.Parallel()

	detector := newTestDetector(t, `{
		"responses": [{
			"webDetection": {
				"pagesWithMatchingImages": [
					{"url": "https://www.instagram.com/p/abc/", "pageTitle": "Original post"},
					{"url": "https://www.reddit.com/r/pics/xyz", "pageTitle": "Reposted"}
				]
			}
		}]
	}`)

	prov, err := detector.Lookup(context.Background(), "https://cdn.example.com/1080.jpg")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if prov.OldestSourceURL != "https://www.instagram.com/p/abc/" {
		t.Fatalf("first repost page must win when nothing else matches, got %s", prov.OldestSourceURL)
	}
	if prov.IsMismatch {
		t.Fatal("instagram origin must not be a mismatch")
	}
	if prov.Context != "Original post" {
		t.Fatalf("context must be the page title, got %q", prov.Context)
	}
}

func TestLookupWithoutMatches(t *testing.T) {
	t.Parallel()

	detector := newTestDetector(t, `{"responses": [{"webDetection": {}}]}`)

	prov, err := detector.Lookup(context.Background(), "https://cdn.example.com/1080.jpg")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if prov.OldestSourceURL != "" || prov.IsMismatch {
		t.Fatalf("no matches must yield an empty, unmismatched result: %+v", prov)
	}
	if prov.Context != "No matching pages found on the web." {
		t.Fatalf("context mangled: %q", prov.Context)
	}
}

func TestLookupSurfacesAPIError(t *testing.T) {
	t.Parallel()

	detector := newTestDetector(t, `{"responses": [{"error": {"message": "image not accessible"}}]}`)

	_, err := detector.Lookup(context.Background(), "https://cdn.example.com/1080.jpg")
	if err == nil || !strings.Contains(err.Error(), "image not accessible") {
		t.Fatalf("api error lost: %v", err)
	}
}

func TestLookupWithoutKey(t *testing.T) {
	t.Parallel()

	detector := NewWebDetector(config.VisionConfig{Endpoint: "http://127.0.0.1:1"})
	if _, err := detector.Lookup(context.Background(), "https://cdn.example.com/1080.jpg"); err == nil {
		t.Fatal("expected an error without an api key")
	}
}
