// Package verify implements the analysis backend: web search grounding,
// author reputation, image provenance, and the LLM judge that combines them
// into a single verdict.
package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"FeedSentinel/internal/config"
	"FeedSentinel/internal/domain"
	"FeedSentinel/internal/ports"
)

// Service orchestrates one analysis per request. Signals are gathered
// concurrently; only the claim search is fatal, the rest degrade to absent
// signals the judge treats as neutral.
type Service struct {
	searcher   ports.Searcher
	judge      ports.Judge
	provenance ports.ProvenanceLookup
	maxResults int
	mock       bool
	logger     *slog.Logger
	now        func() time.Time
}

// NewService wires the analysis dependencies.
func NewService(searcher ports.Searcher, judge ports.Judge, provenance ports.ProvenanceLookup, cfg config.VerifyConfig, logger *slog.Logger) *Service {
	maxResults := cfg.Search.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		searcher:   searcher,
		judge:      judge,
		provenance: provenance,
		maxResults: maxResults,
		mock:       cfg.MockMode,
		logger:     logger,
		now:        time.Now,
	}
}

// AnalyzePost runs the unified analysis across image, text, and author.
func (s *Service) AnalyzePost(ctx context.Context, record domain.ExtractedRecord) (domain.Verdict, error) {
	if record.Inert() {
		return emptyPostVerdict(), nil
	}
	if s.mock {
		return mockPostVerdict(), nil
	}

	var (
		wg        sync.WaitGroup
		hits      []domain.SearchHit
		searchErr error
		rep       domain.AuthorReputation
		prov      *domain.ImageProvenance
	)

	if record.Text != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hits, searchErr = s.searcher.Search(ctx, record.Text, s.maxResults, true)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		rep = lookupReputation(ctx, s.searcher, record.Author, s.logger)
	}()

	if record.ImageURL != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := s.provenance.Lookup(ctx, record.ImageURL)
			if err != nil {
				s.logger.Warn("image provenance lookup failed", "error", err)
				return
			}
			prov = &p
		}()
	}

	wg.Wait()
	if searchErr != nil {
		return domain.Verdict{}, fmt.Errorf("claim search: %w", searchErr)
	}

	evidence := domain.Evidence{
		Claim:      record.Text,
		Author:     record.Author,
		AuthorKind: ClassifyAuthor(record.Author),
		Reputation: rep,
		Hits:       hits,
		Provenance: prov,
	}
	return s.judge.Evaluate(ctx, evidence)
}

// AnalyzeText fact-checks a bare claim without image or author signals.
// The cited sources are the search hits themselves.
func (s *Service) AnalyzeText(ctx context.Context, text string) (domain.Verdict, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Verdict{
			Flag:       false,
			Confidence: domain.ConfidenceLow,
			Category:   domain.CategoryNone,
			Summary:    "No text provided for analysis.",
		}, nil
	}
	if s.mock {
		return mockTextVerdict(), nil
	}

	hits, err := s.searcher.Search(ctx, text, s.maxResults, true)
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("claim search: %w", err)
	}
	if len(hits) == 0 {
		return domain.Verdict{
			Flag:       false,
			Confidence: domain.ConfidenceLow,
			Category:   domain.CategoryNone,
			Summary:    "No relevant sources found for this claim.",
		}, nil
	}

	verdict, err := s.judge.Evaluate(ctx, domain.Evidence{Claim: text, Hits: hits})
	if err != nil {
		return domain.Verdict{}, err
	}

	sources := make([]domain.Source, 0, len(hits))
	for _, hit := range hits {
		sources = append(sources, domain.Source{Title: hit.Title, URL: hit.URL})
	}
	verdict.Sources = sources
	return verdict, nil
}

// AnalyzeImage traces a single image's web provenance.
func (s *Service) AnalyzeImage(ctx context.Context, imageURL string) (domain.ImageProvenance, error) {
	if strings.TrimSpace(imageURL) == "" {
		return domain.ImageProvenance{}, errors.New("no image url provided")
	}
	if s.mock {
		return mockProvenance(s.now().Year()), nil
	}
	return s.provenance.Lookup(ctx, imageURL)
}

func emptyPostVerdict() domain.Verdict {
	return domain.Verdict{
		Flag:       false,
		Confidence: domain.ConfidenceLow,
		Category:   domain.CategoryNone,
		Summary:    "No post data provided for analysis.",
		Reasoning: domain.Reasoning{
			Image:       "No image provided.",
			Text:        "No text provided.",
			Author:      "No author provided.",
			Consistency: "No data to compare.",
		},
	}
}
