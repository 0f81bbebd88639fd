package ports

import (
	"context"

	"FeedSentinel/internal/domain"
)

// Analyzer sends one extracted record across the relay boundary and returns
// the classifier's verdict. Ready reports whether the boundary is still
// valid; callers check it before committing an item to analysis.
type Analyzer interface {
	Ready() error
	Analyze(ctx context.Context, record domain.ExtractedRecord) (domain.Verdict, error)
}

// HistoryLog persists analyzed items in insertion order, bounded at
// domain.HistoryLimit with oldest-first eviction.
type HistoryLog interface {
	Append(ctx context.Context, entry domain.HistoryEntry) error
	List(ctx context.Context) ([]domain.HistoryEntry, error)
	Subscribe(fn func(entries []domain.HistoryEntry)) (cancel func())
}

// FlagStore keeps small named booleans that survive daemon restarts.
type FlagStore interface {
	SetFlag(ctx context.Context, name string, value bool) error
	Flag(ctx context.Context, name string) (bool, error)
}

// Notifier broadcasts history snapshots to display-layer consumers.
type Notifier interface {
	PublishHistory(ctx context.Context, entries []domain.HistoryEntry) error
}

// Classifier calls the backend analysis service.
type Classifier interface {
	AnalyzePost(ctx context.Context, record domain.ExtractedRecord) (domain.Verdict, error)
}

// Searcher retrieves grounding results for a claim from a web search API.
type Searcher interface {
	Search(ctx context.Context, query string, count int, recent bool) ([]domain.SearchHit, error)
}

// Judge renders a misinformation verdict from the assembled evidence.
type Judge interface {
	Evaluate(ctx context.Context, evidence domain.Evidence) (domain.Verdict, error)
}

// ProvenanceLookup traces where an image previously appeared on the web.
type ProvenanceLookup interface {
	Lookup(ctx context.Context, imageURL string) (domain.ImageProvenance, error)
}
