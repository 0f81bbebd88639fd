package domain

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestRiskFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		flag       bool
		confidence Confidence
		want       RiskLevel
	}{
		{false, ConfidenceHigh, RiskLow},
		{false, ConfidenceLow, RiskLow},
		{true, ConfidenceHigh, RiskHigh},
		{true, ConfidenceMedium, RiskMedium},
		{true, ConfidenceLow, RiskMedium},
		{true, "", RiskMedium},
	}
	for _, tc := range cases {
		got := RiskFor(Verdict{Flag: tc.flag, Confidence: tc.confidence})
		if got != tc.want {
			t.Errorf("RiskFor(flag=%v, confidence=%q) = %s, want %s", tc.flag, tc.confidence, got, tc.want)
		}
	}
}

func TestNormalizeCategory(t *testing.T) {
	t.Parallel()

	if got := NormalizeCategory("satire", true); got != CategorySatire {
		t.Fatalf("valid category rewritten to %s", got)
	}
	if got := NormalizeCategory("satire", false); got != CategoryNone {
		t.Fatalf("unflagged verdict should carry none, got %s", got)
	}
	if got := NormalizeCategory("clickbait", true); got != CategoryFabricated {
		t.Fatalf("unknown category should fall back to fabricated, got %s", got)
	}
	if got := NormalizeCategory("none", true); got != CategoryFabricated {
		t.Fatalf("flagged verdict cannot stay none, got %s", got)
	}
	if got := NormalizeCategory("", false); got != CategoryNone {
		t.Fatalf("empty unflagged should be none, got %s", got)
	}
}

func TestParseConfidence(t *testing.T) {
	t.Parallel()

	if got := ParseConfidence("High"); got != ConfidenceHigh {
		t.Fatalf("case-insensitive parse failed: %s", got)
	}
	if got := ParseConfidence("certain"); got != ConfidenceLow {
		t.Fatalf("unknown confidence should default low, got %s", got)
	}
}

func TestExcerptTruncatesRunes(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("ü", 200)
	got := Excerpt(long)
	if utf8.RuneCountInString(got) != excerptLimit {
		t.Fatalf("excerpt length %d runes, want %d", utf8.RuneCountInString(got), excerptLimit)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("excerpt split a rune")
	}

	short := "short caption"
	if Excerpt(short) != short {
		t.Fatalf("short text must pass through unchanged")
	}
}

func TestNewHistoryEntry(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	record := ExtractedRecord{
		ImageURL: "https://cdn.example.com/p/1080.jpg",
		Text:     strings.Repeat("a", 150),
		Author:   "poster",
	}
	verdict := Verdict{Flag: true, Confidence: ConfidenceMedium, Category: CategoryManipulated}

	entry := NewHistoryEntry(record, verdict, now)
	if entry.ID == "" {
		t.Fatalf("entry must carry an id")
	}
	if utf8.RuneCountInString(entry.TextExcerpt) != excerptLimit {
		t.Fatalf("excerpt not truncated: %d runes", utf8.RuneCountInString(entry.TextExcerpt))
	}
	if entry.Risk != RiskMedium {
		t.Fatalf("risk not derived, got %s", entry.Risk)
	}
	if entry.CreatedAt.Location() != time.UTC {
		t.Fatalf("timestamps must be UTC, got %s", entry.CreatedAt.Location())
	}
}

func TestNewHistoryIDUnique(t *testing.T) {
	t.Parallel()

	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		id := NewHistoryID(now)
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
