package domain

// SearchHit is one web search result used to ground a claim.
type SearchHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SourceKind classifies where a search hit or author comes from.
type SourceKind string

const (
	SourceSatire   SourceKind = "satire"
	SourceCredible SourceKind = "credible"
	SourceUnknown  SourceKind = "unknown"
)

// AuthorReputation aggregates web signals about a post's author.
type AuthorReputation struct {
	Author  string   `json:"author"`
	Signals []string `json:"signals"`
	Flagged bool     `json:"flagged"`
}

// Evidence is everything the judge sees for one unified analysis.
type Evidence struct {
	Claim      string
	Author     string
	AuthorKind SourceKind
	Reputation AuthorReputation
	Hits       []SearchHit
	Provenance *ImageProvenance
}
