package domain

import "strings"

// Confidence grades how certain the classifier is about its verdict.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ParseConfidence normalizes a wire value; anything unrecognized is low.
func ParseConfidence(value string) Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(value))) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceMedium:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Category names the kind of misinformation a flagged item falls under.
type Category string

const (
	CategoryFabricated         Category = "fabricated"
	CategoryFalseContext       Category = "false_context"
	CategoryManipulated        Category = "manipulated"
	CategoryImposter           Category = "imposter"
	CategoryFalseConnection    Category = "false_connection"
	CategorySatire             Category = "satire"
	CategoryAstroturfing       Category = "astroturfing"
	CategorySponsoredDisguised Category = "sponsored_disguised"
	CategoryNone               Category = "none"
)

var knownCategories = map[Category]struct{}{
	CategoryFabricated:         {},
	CategoryFalseContext:       {},
	CategoryManipulated:        {},
	CategoryImposter:           {},
	CategoryFalseConnection:    {},
	CategorySatire:             {},
	CategoryAstroturfing:       {},
	CategorySponsoredDisguised: {},
	CategoryNone:               {},
}

// NormalizeCategory enforces the flag/category coupling: an unflagged verdict
// is always "none", a flagged verdict with an unknown or "none" category
// falls back to "fabricated".
func NormalizeCategory(value string, flagged bool) Category {
	if !flagged {
		return CategoryNone
	}
	cat := Category(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := knownCategories[cat]; !ok || cat == CategoryNone {
		return CategoryFabricated
	}
	return cat
}

// Reasoning explains the verdict along the four analysis dimensions.
type Reasoning struct {
	Image       string `json:"image"`
	Text        string `json:"text"`
	Author      string `json:"author"`
	Consistency string `json:"consistency"`
}

// Source is a web citation backing the verdict.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ImageProvenance describes where an image first appeared on the web.
type ImageProvenance struct {
	OldestSourceURL string `json:"oldest_source_url"`
	Year            int    `json:"year"`
	Context         string `json:"context"`
	IsMismatch      bool   `json:"is_mismatch"`
}

// Verdict is the classifier's unified judgment of a feed item.
type Verdict struct {
	Flag       bool             `json:"flag"`
	Confidence Confidence       `json:"confidence"`
	Category   Category         `json:"category"`
	Summary    string           `json:"summary"`
	Reasoning  Reasoning        `json:"reasoning"`
	Sources    []Source         `json:"sources"`
	Provenance *ImageProvenance `json:"image_provenance,omitempty"`
}
