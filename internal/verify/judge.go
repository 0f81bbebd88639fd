package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"FeedSentinel/internal/config"
	"FeedSentinel/internal/domain"
	"FeedSentinel/internal/ports"
)

// ChatJudge evaluates assembled evidence with an OpenAI-compatible chat
// completion endpoint and parses the JSON verdict it returns.
type ChatJudge struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
	now      func() time.Time
}

var _ ports.Judge = (*ChatJudge)(nil)

// NewChatJudge builds a judge from configuration.
func NewChatJudge(cfg config.JudgeConfig) *ChatJudge {
	return &ChatJudge{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: 90 * time.Second},
		now:      time.Now,
	}
}

// Evaluate renders a verdict across the image, text, author, and consistency
// dimensions. The category and confidence are normalized before returning.
func (j *ChatJudge) Evaluate(ctx context.Context, evidence domain.Evidence) (domain.Verdict, error) {
	if j.apiKey == "" {
		return domain.Verdict{}, errors.New("judge api key is not set")
	}

	reqBody := chatRequest{
		Model: j.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: j.buildUserPrompt(evidence)},
		},
		Temperature:    0.2,
		ResponseFormat: chatResponseFormat{Type: "json_object"},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("encode judge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("new judge request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+j.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := j.client.Do(req)
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("judge request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error.Message != "" {
			return domain.Verdict{}, fmt.Errorf("judge: %s", apiErr.Error.Message)
		}
		return domain.Verdict{}, fmt.Errorf("judge request failed with HTTP %d", resp.StatusCode)
	}

	var apiResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return domain.Verdict{}, fmt.Errorf("decode judge response: %w", err)
	}
	if len(apiResp.Choices) == 0 || strings.TrimSpace(apiResp.Choices[0].Message.Content) == "" {
		return domain.Verdict{}, errors.New("judge returned an empty response")
	}

	content := stripFences(strings.TrimSpace(apiResp.Choices[0].Message.Content))

	var raw judgeVerdict
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return domain.Verdict{}, fmt.Errorf("judge returned invalid JSON: %w", err)
	}
	if raw.Summary == "" || raw.Confidence == "" {
		return domain.Verdict{}, errors.New("judge response missing required fields")
	}

	verdict := domain.Verdict{
		Flag:       raw.Flag,
		Confidence: domain.ParseConfidence(raw.Confidence),
		Category:   domain.NormalizeCategory(raw.Category, raw.Flag),
		Summary:    raw.Summary,
		Reasoning: domain.Reasoning{
			Image:       raw.Reasoning.Image,
			Text:        raw.Reasoning.Text,
			Author:      raw.Reasoning.Author,
			Consistency: raw.Reasoning.Consistency,
		},
	}
	for _, s := range raw.Sources {
		if s.URL == "" {
			continue
		}
		verdict.Sources = append(verdict.Sources, domain.Source{Title: s.Title, URL: s.URL})
	}
	return verdict, nil
}

func (j *ChatJudge) buildUserPrompt(evidence domain.Evidence) string {
	var sources strings.Builder
	for i, hit := range evidence.Hits {
		fmt.Fprintf(&sources, "[%d] %s\n    URL: %s\n    Source type: %s\n    Snippet: %s\n",
			i+1, hit.Title, hit.URL, ClassifySource(hit.URL), hit.Snippet)
	}

	imageBlock := "No image provided."
	if p := evidence.Provenance; p != nil {
		imageBlock = fmt.Sprintf(
			"Image provenance:\n  Oldest source: %s\n  Year: %d\n  Context: %s\n  Mismatch: %s",
			p.OldestSourceURL, p.Year, p.Context, strconv.FormatBool(p.IsMismatch),
		)
	}

	var signals strings.Builder
	for _, s := range evidence.Reputation.Signals {
		fmt.Fprintf(&signals, "- %s\n", s)
	}

	return fmt.Sprintf(
		"TODAY'S DATE: %s\n\nCLAIM:\n%s\n\nIMAGE PROVENANCE:\n%s\n\nAUTHOR REPUTATION:\n%s\nAuthor type: %s\nSignals:\n%s\nSEARCH RESULTS:\n%s\nEvaluate the post across all four dimensions and return JSON.",
		j.now().Format("2006-01-02"),
		evidence.Claim,
		imageBlock,
		evidence.Author,
		evidence.AuthorKind,
		signals.String(),
		sources.String(),
	)
}

// stripFences drops a leading and trailing markdown code fence, which some
// models add despite instructions.
func stripFences(s string) string {
	if strings.HasPrefix(s, "```") {
		if _, rest, ok := strings.Cut(s, "\n"); ok {
			s = rest
		}
	}
	if strings.HasSuffix(s, "```") {
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = strings.TrimSpace(s[:idx])
		}
	}
	return s
}

type chatRequest struct {
	Model          string             `json:"model"`
	Messages       []chatMessage      `json:"messages"`
	Temperature    float64            `json:"temperature"`
	ResponseFormat chatResponseFormat `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type judgeVerdict struct {
	Flag       bool   `json:"flag"`
	Confidence string `json:"confidence"`
	Category   string `json:"category"`
	Summary    string `json:"summary"`
	Reasoning  struct {
		Image       string `json:"image"`
		Text        string `json:"text"`
		Author      string `json:"author"`
		Consistency string `json:"consistency"`
	} `json:"reasoning"`
	Sources []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"sources"`
}

const systemPrompt = `You are a neutral misinformation-detection assistant for a social feed monitor. Your job is to evaluate whether a social-media post's caption or claim is supported, partially supported, or unsupported by recent, credible sources, and to reason across four dimensions: image origin, text credibility, image-text consistency, and author reputation.

RULES:
- Never use the words "fake", "false", "lie", or "hoax" — they are too inflammatory for an in-feed notice. Instead use phrasing like "not supported by recent sources", "additional context available", or "claim could not be verified".
- Always cite the sources provided in the SEARCH RESULTS section.
- Return ONLY valid JSON matching this schema (no markdown fences):
  {
    "flag": <bool>,
    "confidence": "<low|medium|high>",
    "category": "<one of the categories below>",
    "summary": "<2-3 sentence neutral summary>",
    "reasoning": {
      "image": "<1 sentence>",
      "text": "<1 sentence>",
      "author": "<1 sentence>",
      "consistency": "<1 sentence>"
    },
    "sources": [{"title": string, "url": string}]
  }

CATEGORY (pick exactly one):
  fabricated          — entirely made-up content with no factual basis
  false_context       — real content shared with false contextual info
  manipulated         — genuine content that has been doctored or altered
  imposter            — content falsely attributed to a real public figure/org
  false_connection    — headlines/captions that don't match the actual content
  satire              — satirical content from a known satire outlet or with clear satirical markers. ALWAYS set flag=true for satire.
  astroturfing        — coordinated inauthentic behaviour / fake grassroots
  sponsored_disguised — paid promotion disguised as organic content
  none                — content appears genuine / no misinformation detected
- If flag is false, you MUST set category to "none".
- If flag is true, pick the single most applicable category.
- If the search results are insufficient to evaluate the claim, set flag=false, confidence="low", category="none", and explain in the summary.

SATIRE RULE (takes priority over the flag-false→none rule above):
- If the post originates from a known satire publication (The Onion, Babylon Bee, Reductress, ClickHole, etc.) OR the Author type is "satire", you MUST return flag=true, category="satire", confidence="high" — even though satire is not malicious misinformation. The purpose is to alert readers that the content is fictional humour and should not be taken literally.

SIGNAL WEIGHTING — not every dimension matters equally for every category.
Use the following guide when deciding which signals to prioritise:
  fabricated      → TEXT is primary (claims unsupported by any source). IMAGE supports if provenance shows reuse.
  false_context   → IMAGE + CONSISTENCY are primary (real image placed in a misleading new context).
  manipulated     → IMAGE is primary (doctored or altered visual content).
  imposter        → AUTHOR is primary (content falsely attributed to someone).
  false_connection → CONSISTENCY is primary (caption/headline contradicts the actual image or linked content).
  satire          → TEXT is primary (tone, source identification, satirical markers).
  astroturfing    → AUTHOR is primary (coordinated inauthentic patterns, red-flag reputation signals).
  sponsored_disguised → TEXT is primary (language patterns suggesting undisclosed paid promotion).

HANDLING ABSENT SIGNALS:
- If IMAGE PROVENANCE data says "No image provided" or is inconclusive, treat the image dimension as NEUTRAL. Do NOT let a missing image pull the verdict toward flagging.
- If no AUTHOR REPUTATION signals are found, treat author as NEUTRAL rather than suspicious.
- Never flag a post solely because a signal is absent. A flag requires positive evidence from at least one primary signal for the chosen category.

IMAGE MISMATCH RULE:
- If IMAGE PROVENANCE shows "Mismatch: true", the image originates from an unrelated source and is being used to dress up the post's claim.
- This is strong positive evidence of false_context. You MUST set flag=true and category="false_context" unless a more specific category (e.g. satire) applies.
- In the summary, note that the image does not originate from the context it is presented in.

SOURCE TYPES — each search result is tagged with a source type:
  satire   — known satire/parody outlet (The Onion, Babylon Bee, etc.).
             If the post's content originates from a satire source, classify
             it as "satire" rather than "fabricated" or any other category.
  credible — established news organisation or fact-checker. Weigh these
             more heavily when corroborating or contradicting a claim.
  unknown  — unclassified source. Use normal editorial judgement.`
