package verify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"FeedSentinel/internal/domain"
	"FeedSentinel/internal/ports"
)

// Keywords that mark an author reputation snippet as a red flag.
var reputationRedFlags = []string{"misinformation", "fake", "suspended", "banned", "propaganda"}

const reputationMaxResults = 3

// lookupReputation gathers web signals about an author. Both queries run
// concurrently and individual failures degrade to fewer signals instead of
// failing the analysis.
func lookupReputation(ctx context.Context, searcher ports.Searcher, author string, logger *slog.Logger) domain.AuthorReputation {
	author = strings.TrimSpace(author)
	if author == "" {
		return domain.AuthorReputation{}
	}

	queries := []string{
		fmt.Sprintf("%s Instagram credibility", author),
		fmt.Sprintf("%s misinformation", author),
	}

	results := make([][]domain.SearchHit, len(queries))
	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			hits, err := searcher.Search(ctx, q, reputationMaxResults, false)
			if err != nil {
				if logger != nil {
					logger.Warn("author reputation search failed", "query", q, "error", err)
				}
				return
			}
			results[i] = hits
		}(i, q)
	}
	wg.Wait()

	var signals []string
	for _, hits := range results {
		for _, hit := range hits {
			if snippet := strings.TrimSpace(hit.Snippet); snippet != "" {
				signals = append(signals, snippet)
			}
		}
	}

	flagged := false
	for _, signal := range signals {
		lower := strings.ToLower(signal)
		for _, keyword := range reputationRedFlags {
			if strings.Contains(lower, keyword) {
				flagged = true
				break
			}
		}
		if flagged {
			break
		}
	}

	return domain.AuthorReputation{
		Author:  author,
		Signals: signals,
		Flagged: flagged,
	}
}
