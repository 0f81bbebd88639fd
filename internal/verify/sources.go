package verify

import (
	"net/url"
	"strings"

	"github.com/weppos/publicsuffix-go/publicsuffix"

	"FeedSentinel/internal/domain"
)

// Known satire and parody outlets. Content from these is flagged as satire,
// never as genuine misinformation.
var satireDomains = map[string]struct{}{
	"theonion.com":              {},
	"babylonbee.com":            {},
	"clickhole.com":             {},
	"thebeaverton.com":          {},
	"waterfordwhispersnews.com": {},
	"newsthump.com":             {},
	"thedailymash.co.uk":        {},
	"hard-drive.net":            {},
	"hardtimes.net":             {},
	"reductress.com":            {},
	"theshovel.com.au":          {},
	"chaser.com.au":             {},
	"private-eye.co.uk":         {},
}

// Social-media handles belonging to known satire outlets.
var satireHandles = map[string]struct{}{
	"theonion":      {},
	"babylonbee":    {},
	"clickhole":     {},
	"thebeaverton":  {},
	"newsthump":     {},
	"thedailymash":  {},
	"reductress":    {},
	"theshovel":     {},
	"hardtimesnews": {},
	"harddrivenews": {},
	"privateeye":    {},
}

// Established news organisations and fact-checkers. Their results weigh
// more heavily when corroborating or contradicting a claim.
var credibleDomains = map[string]struct{}{
	"reuters.com":        {},
	"apnews.com":         {},
	"bbc.com":            {},
	"bbc.co.uk":          {},
	"nytimes.com":        {},
	"washingtonpost.com": {},
	"theguardian.com":    {},
	"snopes.com":         {},
	"factcheck.org":      {},
	"politifact.com":     {},
	"fullfact.org":       {},
	"nature.com":         {},
	"sciencedirect.com":  {},
	"who.int":            {},
	"cdc.gov":            {},
	"nih.gov":            {},
	"nasa.gov":           {},
	"npr.org":            {},
	"pbs.org":            {},
}

// ClassifySource maps a result URL to satire, credible, or unknown. Matching
// uses the registrable domain, so subdomains like news.bbc.co.uk classify
// the same as bbc.co.uk.
func ClassifySource(rawURL string) domain.SourceKind {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return domain.SourceUnknown
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	candidates := []string{host}
	if registrable, err := publicsuffix.Domain(host); err == nil && registrable != host {
		candidates = append(candidates, registrable)
	}

	for _, c := range candidates {
		if _, ok := satireDomains[c]; ok {
			return domain.SourceSatire
		}
		if _, ok := credibleDomains[c]; ok {
			return domain.SourceCredible
		}
	}
	return domain.SourceUnknown
}

// ClassifyAuthor maps a social-media handle to satire or unknown. Handles
// matching the first label of a satire domain also count.
func ClassifyAuthor(author string) domain.SourceKind {
	handle := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(author)), "@")
	if handle == "" {
		return domain.SourceUnknown
	}

	if _, ok := satireHandles[handle]; ok {
		return domain.SourceSatire
	}
	for d := range satireDomains {
		if handle == strings.SplitN(d, ".", 2)[0] {
			return domain.SourceSatire
		}
	}
	return domain.SourceUnknown
}
