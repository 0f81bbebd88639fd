package domain

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// HistoryLimit caps how many analyzed items the log retains.
const HistoryLimit = 50

// excerptLimit bounds the caption text kept per entry, in runes.
const excerptLimit = 120

// HistoryEntry is one successfully analyzed item kept for the history view.
// Only an excerpt of the caption is stored.
type HistoryEntry struct {
	ID          string    `json:"id"`
	ImageURL    string    `json:"image_url"`
	TextExcerpt string    `json:"text_excerpt"`
	Author      string    `json:"author"`
	Verdict     Verdict   `json:"verdict"`
	Risk        RiskLevel `json:"risk"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewHistoryEntry builds an entry from an analyzed record, assigning the id,
// the derived risk rating, and the bounded text excerpt.
func NewHistoryEntry(record ExtractedRecord, verdict Verdict, now time.Time) HistoryEntry {
	return HistoryEntry{
		ID:          NewHistoryID(now),
		ImageURL:    record.ImageURL,
		TextExcerpt: Excerpt(record.Text),
		Author:      record.Author,
		Verdict:     verdict,
		Risk:        RiskFor(verdict),
		CreatedAt:   now.UTC(),
	}
}

// NewHistoryID builds an entry id from the creation time plus a random
// suffix, keeping ids unique even within the same millisecond.
func NewHistoryID(now time.Time) string {
	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)
	return strconv.FormatInt(now.UnixMilli(), 36) + "-" + hex.EncodeToString(suffix)
}

// Excerpt truncates caption text to the stored excerpt length.
func Excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptLimit {
		return text
	}
	return string(runes[:excerptLimit])
}
