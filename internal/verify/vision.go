package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"FeedSentinel/internal/config"
	"FeedSentinel/internal/domain"
	"FeedSentinel/internal/ports"
)

// Content-hosting platforms where images are republished rather than
// originate. Matches on these are kept only as a fallback when no other
// page carries the image.
var repostDomains = map[string]struct{}{
	"instagram.com":     {},
	"www.instagram.com": {},
	"facebook.com":      {},
	"www.facebook.com":  {},
	"twitter.com":       {},
	"x.com":             {},
	"tiktok.com":        {},
	"www.tiktok.com":    {},
	"pinterest.com":     {},
	"www.pinterest.com": {},
	"reddit.com":        {},
	"www.reddit.com":    {},
	"imgur.com":         {},
	"i.imgur.com":       {},
}

// WebDetector traces where an image previously appeared using a web
// detection API's pages-with-matching-images results.
type WebDetector struct {
	endpoint string
	apiKey   string
	client   *retryablehttp.Client
	now      func() time.Time
}

var _ ports.ProvenanceLookup = (*WebDetector)(nil)

// NewWebDetector builds a detector from configuration.
func NewWebDetector(cfg config.VisionConfig) *WebDetector {
	client := retryablehttp.NewClient()
	client.Logger = log.New(io.Discard, "", 0)
	client.RetryMax = 2

	return &WebDetector{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   client,
		now:      time.Now,
	}
}

// Lookup runs web detection for the image and picks the most likely original
// source. Pages on repost platforms lose to the first page anywhere else;
// the first repost page is the fallback when nothing else matches.
func (w *WebDetector) Lookup(ctx context.Context, imageURL string) (domain.ImageProvenance, error) {
	if w.apiKey == "" {
		return domain.ImageProvenance{}, errors.New("vision api key is not set")
	}

	payload := fmt.Sprintf(
		`{"requests":[{"image":{"source":{"image_uri":%q}},"features":[{"type":"WEB_DETECTION"}]}]}`,
		imageURL,
	)
	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", w.endpoint+"?key="+url.QueryEscape(w.apiKey), []byte(payload))
	if err != nil {
		return domain.ImageProvenance{}, fmt.Errorf("new web detection request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return domain.ImageProvenance{}, fmt.Errorf("web detection request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return domain.ImageProvenance{}, fmt.Errorf("web detection returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ImageProvenance{}, fmt.Errorf("read web detection response: %w", err)
	}

	detection := gjson.GetBytes(body, "responses.0")
	if msg := detection.Get("error.message"); msg.Exists() {
		return domain.ImageProvenance{}, fmt.Errorf("web detection error: %s", msg.String())
	}

	return w.parseDetection(detection.Get("webDetection")), nil
}

func (w *WebDetector) parseDetection(web gjson.Result) domain.ImageProvenance {
	var best, bestRepost *gjson.Result
	for _, page := range web.Get("pagesWithMatchingImages").Array() {
		d := hostOf(page.Get("url").String())
		if _, repost := repostDomains[d]; repost {
			if bestRepost == nil {
				bestRepost = &page
			}
			continue
		}
		best = &page
		break
	}
	if best == nil {
		best = bestRepost
	}

	year := w.now().Year()
	if best == nil {
		return domain.ImageProvenance{
			OldestSourceURL: "",
			Year:            year,
			Context:         "No matching pages found on the web.",
			IsMismatch:      false,
		}
	}

	pageURL := best.Get("url").String()
	pageDomain := hostOf(pageURL)

	// The image existing anywhere outside instagram first means the post is
	// dressing its claim with someone else's picture.
	isMismatch := pageDomain != "instagram.com" && pageDomain != "www.instagram.com"

	var parts []string
	if title := strings.TrimSpace(best.Get("pageTitle").String()); title != "" {
		parts = append(parts, title)
	}
	var labels []string
	for _, guess := range web.Get("bestGuessLabels").Array() {
		if label := guess.Get("label").String(); label != "" {
			labels = append(labels, label)
		}
	}
	if len(labels) > 0 {
		parts = append(parts, "Best guess: "+strings.Join(labels, ", "))
	}

	context := "No context available."
	if len(parts) > 0 {
		context = strings.Join(parts, " | ")
	}

	return domain.ImageProvenance{
		OldestSourceURL: pageURL,
		Year:            year,
		Context:         context,
		IsMismatch:      isMismatch,
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
