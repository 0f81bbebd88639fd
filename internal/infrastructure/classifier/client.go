// Package classifier is the daemon's HTTP client for the verification
// backend.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"FeedSentinel/internal/domain"
	"FeedSentinel/internal/ports"
)

// Client talks to the verification service over HTTP.
type Client struct {
	endpoint string
	http     *http.Client
}

var _ ports.Classifier = (*Client)(nil)

// NewClient creates a reusable HTTP client. No request timeout is set; the
// analysis round trip is allowed to take as long as the backend needs, and
// cancellation comes from the caller's context.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{},
	}
}

// AnalyzePost submits one extracted record for misinformation analysis.
func (c *Client) AnalyzePost(ctx context.Context, record domain.ExtractedRecord) (domain.Verdict, error) {
	var verdict domain.Verdict
	if err := c.post(ctx, "/analyze/post", record, &verdict); err != nil {
		return domain.Verdict{}, err
	}
	return verdict, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return fmt.Errorf("backend returned %s, close body: %v", resp.Status, closeErr)
		}
		return fmt.Errorf("backend returned %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if closeErr := resp.Body.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	// Some backends report failures inside a 2xx body.
	var failure struct {
		Error string `json:"error"`
	}
	if jsonErr := json.Unmarshal(raw, &failure); jsonErr == nil && failure.Error != "" {
		return errors.New(failure.Error)
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
