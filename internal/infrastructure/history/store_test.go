package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"FeedSentinel/internal/domain"
)

func newStore(t *testing.T, path string, limit int) *Store {
	t.Helper()

	store, err := Open(path, limit)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func entryAt(i int, now time.Time) domain.HistoryEntry {
	return domain.HistoryEntry{
		ID:          fmt.Sprintf("entry-%03d", i),
		ImageURL:    fmt.Sprintf("https://cdn.example.com/p/%d.jpg", i),
		TextExcerpt: fmt.Sprintf("caption %d", i),
		Author:      "poster",
		Verdict: domain.Verdict{
			Flag:       i%2 == 0,
			Confidence: domain.ConfidenceMedium,
			Category:   domain.CategoryFalseContext,
			Summary:    "image predates the claimed event",
			Sources:    []domain.Source{{Title: "Archive", URL: "https://archive.example.com"}},
		},
		Risk:      domain.RiskMedium,
		CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
	}
}

func TestAppendEvictsOldestBeyondLimit(t *testing.T) {
	t.Parallel()

	store := newStore(t, filepath.Join(t.TempDir(), "history.db"), 0)
	ctx := context.Background()
	now := time.Now()

	total := domain.HistoryLimit + 1
	for i := 0; i < total; i++ {
		if err := store.Append(ctx, entryAt(i, now)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != domain.HistoryLimit {
		t.Fatalf("expected %d entries, got %d", domain.HistoryLimit, len(entries))
	}
	if entries[0].ID != "entry-001" {
		t.Fatalf("oldest entry not evicted, head is %s", entries[0].ID)
	}
	if entries[len(entries)-1].ID != fmt.Sprintf("entry-%03d", total-1) {
		t.Fatalf("newest entry missing, tail is %s", entries[len(entries)-1].ID)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].ID >= entries[i].ID {
			t.Fatalf("insertion order broken at %d: %s >= %s", i, entries[i-1].ID, entries[i].ID)
		}
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()
	now := time.Now()

	store := newStore(t, path, 10)
	if err := store.Append(ctx, entryAt(0, now)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(ctx, entryAt(1, now)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := newStore(t, path, 10)
	entries, err := reopened.List(ctx)
	if err != nil {
		t.Fatalf("list after reopen: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after reopen, got %d", len(entries))
	}
	got := entries[0]
	if got.Verdict.Category != domain.CategoryFalseContext || len(got.Verdict.Sources) != 1 {
		t.Fatalf("verdict mangled by round trip: %+v", got.Verdict)
	}
	if got.Risk != domain.RiskMedium {
		t.Fatalf("risk mangled by round trip: %s", got.Risk)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("timestamp lost by round trip")
	}
}

func TestSubscribeDeliversCollections(t *testing.T) {
	t.Parallel()

	store := newStore(t, filepath.Join(t.TempDir(), "history.db"), 10)
	ctx := context.Background()
	now := time.Now()

	if err := store.Append(ctx, entryAt(0, now)); err != nil {
		t.Fatalf("append: %v", err)
	}

	var got [][]domain.HistoryEntry
	cancel := store.Subscribe(func(entries []domain.HistoryEntry) {
		got = append(got, entries)
	})

	if len(got) != 1 || len(got[0]) != 1 {
		t.Fatalf("subscription must deliver the current collection, got %d deliveries", len(got))
	}

	if err := store.Append(ctx, entryAt(1, now)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(got) != 2 || len(got[1]) != 2 {
		t.Fatalf("append must rebroadcast the collection, got %d deliveries", len(got))
	}

	cancel()
	if err := store.Append(ctx, entryAt(2, now)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("cancelled subscription still delivered, got %d deliveries", len(got))
	}
}

func TestFlagsPersist(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store := newStore(t, path, 10)
	if v, err := store.Flag(ctx, "onboarded"); err != nil || v {
		t.Fatalf("unset flag should read false, got %v err %v", v, err)
	}
	if err := store.SetFlag(ctx, "onboarded", true); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if err := store.SetFlag(ctx, "onboarded", true); err != nil {
		t.Fatalf("set flag twice: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := newStore(t, path, 10)
	if v, err := reopened.Flag(ctx, "onboarded"); err != nil || !v {
		t.Fatalf("flag lost across reopen, got %v err %v", v, err)
	}
}
