package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"strconv"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"FeedSentinel/internal/config"
	"FeedSentinel/internal/domain"
	"FeedSentinel/internal/ports"
)

// BraveSearcher queries the Brave web search API for claim grounding.
type BraveSearcher struct {
	endpoint string
	apiKey   string
	client   *retryablehttp.Client
}

var _ ports.Searcher = (*BraveSearcher)(nil)

// NewBraveSearcher builds a searcher from configuration.
func NewBraveSearcher(cfg config.SearchConfig) *BraveSearcher {
	client := retryablehttp.NewClient()
	client.Logger = log.New(io.Discard, "", 0)
	client.RetryMax = 3

	return &BraveSearcher{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   client,
	}
}

// Search runs one query and returns at most count results. When recent is
// set, results are restricted to the past week.
func (b *BraveSearcher) Search(ctx context.Context, query string, count int, recent bool) ([]domain.SearchHit, error) {
	if b.apiKey == "" {
		return nil, errors.New("search api key is not set")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))
	if recent {
		params.Set("freshness", "pw")
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", b.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("new search request: %w", err)
	}
	// Accept-Encoding stays unset so the transport negotiates compression
	// and decompresses the body itself.
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("search returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	var hits []domain.SearchHit
	for _, item := range gjson.GetBytes(body, "web.results").Array() {
		hits = append(hits, domain.SearchHit{
			Title:   item.Get("title").String(),
			URL:     item.Get("url").String(),
			Snippet: item.Get("description").String(),
		})
		if len(hits) == count {
			break
		}
	}
	return hits, nil
}
