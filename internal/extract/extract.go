// Package extract distills a feed item's markup into the canonical record
// submitted for analysis. Extraction is pure: it never mutates the tree and
// identical markup always yields identical records.
package extract

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"FeedSentinel/internal/domain"
	"FeedSentinel/pkg/obswire"
)

// captionStrategies are tried in priority order, most semantically specific
// first. The first strategy producing an accepted candidate wins.
var captionStrategies = []string{
	"ul li span",
	"h1, h2",
	`span[dir="auto"]`,
	"span",
}

// minCaptionRunes separates captions from UI chrome such as usernames,
// like counts, and timestamps. Accepted text must be strictly longer.
const minCaptionRunes = 20

// Record extracts image, caption, and author from one feed item. Missing
// fields come back as empty strings.
func Record(item *goquery.Selection) domain.ExtractedRecord {
	if item == nil || item.Length() == 0 {
		return domain.ExtractedRecord{}
	}

	return domain.ExtractedRecord{
		ImageURL: imageURL(item),
		Text:     caption(item),
		Author:   author(item),
	}
}

// imageURL picks the widest responsive image in the item, then the widest
// variant of that image. Small avatar images lose the width comparison even
// when they carry resolution variants of their own.
func imageURL(item *goquery.Selection) string {
	responsive := item.Find("img[srcset]")
	if responsive.Length() == 0 {
		return strings.TrimSpace(item.Find("img").First().AttrOr("src", ""))
	}

	var chosen *goquery.Selection
	bestWidth := -1
	responsive.Each(func(_ int, img *goquery.Selection) {
		if w := renderedWidth(img); w > bestWidth {
			bestWidth = w
			chosen = img
		}
	})

	if url := widestVariant(chosen.AttrOr("srcset", "")); url != "" {
		return url
	}
	return strings.TrimSpace(chosen.AttrOr("src", ""))
}

// caption walks the strategy chain and accepts the first match in document
// order whose trimmed text is long enough.
func caption(item *goquery.Selection) string {
	for _, selector := range captionStrategies {
		var accepted string
		item.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := strings.TrimSpace(sel.Text())
			if utf8.RuneCountInString(text) > minCaptionRunes {
				accepted = text
				return false
			}
			return true
		})
		if accepted != "" {
			return accepted
		}
	}
	return ""
}

// author returns the first non-empty header link text.
func author(item *goquery.Selection) string {
	var name string
	item.Find("header a").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		if text := strings.TrimSpace(link.Text()); text != "" {
			name = text
			return false
		}
		return true
	})
	return name
}

// renderedWidth estimates how wide an image is drawn. Serialized markup has
// no layout, so the capture annotation wins, then the largest srcset width
// descriptor, then the width attribute.
func renderedWidth(img *goquery.Selection) int {
	if w := attrInt(img, obswire.WidthAttr); w > 0 {
		return w
	}
	if w := maxVariantWidth(img.AttrOr("srcset", "")); w > 0 {
		return w
	}
	return attrInt(img, "width")
}

func attrInt(sel *goquery.Selection, name string) int {
	v, ok := sel.Attr(name)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

type variant struct {
	url   string
	width int
}

// parseSrcset keeps only entries with a usable width descriptor; density
// descriptors such as "2x" are ignored.
func parseSrcset(srcset string) []variant {
	var out []variant
	for _, part := range strings.Split(srcset, ",") {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) < 2 {
			continue
		}

		desc := fields[len(fields)-1]
		if !strings.HasSuffix(desc, "w") {
			continue
		}
		w, err := strconv.Atoi(strings.TrimSuffix(desc, "w"))
		if err != nil || w <= 0 {
			continue
		}
		out = append(out, variant{url: fields[0], width: w})
	}
	return out
}

func widestVariant(srcset string) string {
	var best variant
	for _, v := range parseSrcset(srcset) {
		if v.width > best.width {
			best = v
		}
	}
	return best.url
}

func maxVariantWidth(srcset string) int {
	widest := 0
	for _, v := range parseSrcset(srcset) {
		if v.width > widest {
			widest = v.width
		}
	}
	return widest
}
