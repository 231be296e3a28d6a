package extract

import (
	"net/url"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"

	"github.com/nao1215/harvest/internal/model"
)

// Extractor converts fetched page bytes into ExtractedContent.
// A single Extractor is shared across a crawl and is safe for
// concurrent use.
type Extractor struct {
	// converter renders the selected content region as Markdown.
	converter *md.Converter

	// useReadability switches main-text selection to the readability
	// algorithm, with the native heuristic as fallback.
	useReadability bool
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithReadability enables readability-based main content extraction.
// When the readability pass fails on a page, the native heuristic
// result is kept.
func WithReadability(enabled bool) ExtractorOption {
	return func(e *Extractor) {
		e.useReadability = enabled
	}
}

// NewExtractor creates an Extractor with the given options.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	e := &Extractor{converter: converter}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses a fetched page into structured content and reports the
// detected content kind. It never fails: unparseable input yields a
// result with empty fields.
func (e *Extractor) Extract(page *model.FetchedPage) (model.ContentKind, *model.ExtractedContent) {
	kind := DetectKind(page.ContentType, page.Raw)
	base := pageBaseURL(page)

	if kind == model.KindRSS {
		return kind, e.extractFeed(page.Raw, base)
	}

	// Unknown kinds go down the HTML path; its parser recovers from
	// arbitrary input and at worst produces empty fields.
	content := e.extractHTML(page.Raw, page.ContentType, base)
	if e.useReadability && base != nil {
		e.applyReadability(page.Raw, base, content)
	}
	return kind, content
}

// pageBaseURL picks the URL relative references resolve against:
// the post-redirect URL when present, the requested URL otherwise.
func pageBaseURL(page *model.FetchedPage) *url.URL {
	raw := page.FinalURL
	if raw == "" {
		raw = page.URL
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	return base
}
