package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func itemFromHTML(t *testing.T, html string) *goquery.Selection {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	item := doc.Find("article").First()
	if item.Length() == 0 {
		t.Fatalf("fixture has no article element")
	}
	return item
}

func TestRecordPicksWidestVariant(t *testing.T) {
	t.Parallel()

	html := `
	<article data-obs-id="p1">
	  <img srcset="https://cdn.example.com/a320.jpg 320w, https://cdn.example.com/a640.jpg 640w, https://cdn.example.com/a1080.jpg 1080w" src="https://cdn.example.com/a640.jpg">
	</article>`

	record := Record(itemFromHTML(t, html))
	if record.ImageURL != "https://cdn.example.com/a1080.jpg" {
		t.Fatalf("unexpected image url: %s", record.ImageURL)
	}
}

func TestRecordSkipsAvatarImages(t *testing.T) {
	t.Parallel()

	html := `
	<article data-obs-id="p2">
	  <header>
	    <img data-obs-w="32" srcset="https://cdn.example.com/avatar64.jpg 64w, https://cdn.example.com/avatar128.jpg 128w">
	  </header>
	  <img data-obs-w="470" srcset="https://cdn.example.com/photo640.jpg 640w, https://cdn.example.com/photo1080.jpg 1080w">
	</article>`

	record := Record(itemFromHTML(t, html))
	if record.ImageURL != "https://cdn.example.com/photo1080.jpg" {
		t.Fatalf("avatar won over content image: %s", record.ImageURL)
	}
}

func TestRecordImageFallbacks(t *testing.T) {
	t.Parallel()

	plain := `
	<article data-obs-id="p3">
	  <img src="https://cdn.example.com/plain.jpg">
	  <img src="https://cdn.example.com/second.jpg">
	</article>`
	record := Record(itemFromHTML(t, plain))
	if record.ImageURL != "https://cdn.example.com/plain.jpg" {
		t.Fatalf("expected first plain src, got %s", record.ImageURL)
	}

	densityOnly := `
	<article data-obs-id="p4">
	  <img srcset="https://cdn.example.com/a.jpg 1x, https://cdn.example.com/b.jpg 2x" src="https://cdn.example.com/direct.jpg">
	</article>`
	record = Record(itemFromHTML(t, densityOnly))
	if record.ImageURL != "https://cdn.example.com/direct.jpg" {
		t.Fatalf("expected direct src fallback, got %s", record.ImageURL)
	}

	empty := `<article data-obs-id="p5"><p>no media</p></article>`
	record = Record(itemFromHTML(t, empty))
	if record.ImageURL != "" {
		t.Fatalf("expected empty image url, got %s", record.ImageURL)
	}
}

func TestRecordCaptionRejectsChrome(t *testing.T) {
	t.Parallel()

	html := `
	<article data-obs-id="p6">
	  <ul>
	    <li><span>Like</span></li>
	    <li><span>See translation</span></li>
	    <li><span>This is a caption exceeding the twenty character minimum</span></li>
	  </ul>
	</article>`

	record := Record(itemFromHTML(t, html))
	want := "This is a caption exceeding the twenty character minimum"
	if record.Text != want {
		t.Fatalf("unexpected caption: %q", record.Text)
	}
}

func TestRecordCaptionStrategyOrder(t *testing.T) {
	t.Parallel()

	// No list-scoped spans long enough; a heading must win over the
	// directionally-marked span that appears earlier in the document.
	html := `
	<article data-obs-id="p7">
	  <span dir="auto">A directionally marked span that is long enough</span>
	  <h2>Heading caption that is also clearly long enough</h2>
	</article>`

	record := Record(itemFromHTML(t, html))
	if record.Text != "Heading caption that is also clearly long enough" {
		t.Fatalf("strategy order violated: %q", record.Text)
	}
}

func TestRecordAuthor(t *testing.T) {
	t.Parallel()

	html := `
	<article data-obs-id="p8">
	  <header>
	    <a href="/some.handle/"><span>some.handle</span></a>
	  </header>
	  <span dir="auto">A caption that comfortably exceeds twenty characters</span>
	</article>`

	record := Record(itemFromHTML(t, html))
	if record.Author != "some.handle" {
		t.Fatalf("unexpected author: %q", record.Author)
	}
}

func TestRecordDeterministic(t *testing.T) {
	t.Parallel()

	html := `
	<article data-obs-id="p9">
	  <header><a>poster</a></header>
	  <img srcset="https://cdn.example.com/x640.jpg 640w, https://cdn.example.com/x1080.jpg 1080w">
	  <span dir="auto">Deterministic extraction caption over twenty chars</span>
	</article>`

	item := itemFromHTML(t, html)
	first := Record(item)
	second := Record(item)
	if first != second {
		t.Fatalf("records differ: %+v vs %+v", first, second)
	}
}

func TestRecordInert(t *testing.T) {
	t.Parallel()

	html := `
	<article data-obs-id="p10">
	  <header><a>poster</a></header>
	  <span>short</span>
	</article>`

	record := Record(itemFromHTML(t, html))
	if !record.Inert() {
		t.Fatalf("expected inert record, got %+v", record)
	}
	if record.Author != "poster" {
		t.Fatalf("author should still extract: %+v", record)
	}
}

func TestParseSrcsetIgnoresJunk(t *testing.T) {
	t.Parallel()

	variants := parseSrcset("https://a/x.jpg 320w,, malformed, https://a/y.jpg 640w, https://a/z.jpg 2x")
	if len(variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(variants))
	}
	if widestVariant("https://a/x.jpg 320w, https://a/y.jpg 640w") != "https://a/y.jpg" {
		t.Fatalf("widest variant selection failed")
	}
}
