package model

import "time"

// ScrapedDocument is the per-page aggregate produced by the crawl pipeline.
// Documents link into a tree: the seed page is the root, and each document's
// Children holds the documents fetched by following its links, in the order
// the links were discovered on the page.
//
// Design decision: We use a single flat struct with the extracted fields
// inlined rather than nesting an ExtractedContent because:
// 1. Serialized documents read naturally without an extra wrapper level
// 2. Report writers address fields directly
// 3. The raw body is already gone by the time a document exists
type ScrapedDocument struct {
	// === Fetch Metadata ===

	// URL is the URL that was requested for this page.
	URL string `json:"url"`

	// FinalURL is the URL after redirects. Empty when equal to URL.
	FinalURL string `json:"final_url,omitempty"`

	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"http_status"`

	// ContentType is the declared MIME type of the response.
	ContentType string `json:"content_type,omitempty"`

	// Kind is the detected content kind the extractor dispatched on.
	Kind ContentKind `json:"kind"`

	// Depth is the page's distance from the seed. The seed is depth 0.
	Depth int `json:"depth"`

	// FetchedAt is when the page was fetched.
	FetchedAt time.Time `json:"fetched_at"`

	// Hash is the SHA-256 hash of the raw body, for change detection.
	Hash string `json:"hash,omitempty"`

	// === Extracted Content ===

	// Title is the page title. Empty when absent.
	Title string `json:"title,omitempty"`

	// Meta maps lower-cased metadata names to values, first wins.
	Meta map[string]string `json:"meta,omitempty"`

	// Headings contains heading texts in document order.
	Headings []string `json:"headings,omitempty"`

	// MainText is the extracted main content text. Never nil.
	MainText string `json:"main_text"`

	// Markdown is the Markdown rendition of the main content region.
	Markdown string `json:"markdown,omitempty"`

	// Links contains absolute discovered hyperlinks in first-seen order.
	Links []string `json:"links,omitempty"`

	// Images contains absolute image URLs, deduplicated.
	Images []string `json:"images,omitempty"`

	// Normalized holds the canonicalized text variants.
	// Nil when normalization was not requested.
	Normalized *NormalizedText `json:"normalized,omitempty"`

	// === Tree Structure ===

	// Children are the documents fetched by following this page's
	// links, in link-discovery order. Failed pages are absent.
	Children []*ScrapedDocument `json:"children,omitempty"`

	// Analysis is the external analyzer's report on this page.
	// Only ever set on the root, and only when analysis was requested
	// and succeeded.
	Analysis *AnalysisReport `json:"analysis,omitempty"`
}

// NewScrapedDocument assembles a document from the outputs of the page
// pipeline. The page's raw body is intentionally not retained.
func NewScrapedDocument(page *FetchedPage, kind ContentKind, content *ExtractedContent, depth int) *ScrapedDocument {
	doc := &ScrapedDocument{
		URL:         page.URL,
		HTTPStatus:  page.StatusCode,
		ContentType: page.ContentType,
		Kind:        kind,
		Depth:       depth,
		FetchedAt:   page.FetchedAt,
		Hash:        page.Hash,
	}
	if page.FinalURL != page.URL {
		doc.FinalURL = page.FinalURL
	}
	if content != nil {
		doc.Title = content.Title
		doc.Meta = content.Meta
		doc.Headings = content.Headings
		doc.MainText = content.MainText
		doc.Markdown = content.Markdown
		doc.Links = content.Links
		doc.Images = content.Images
	}
	return doc
}

// TotalPages returns the number of documents in the tree rooted at d,
// counting d itself. Returns 0 for a nil document.
func (d *ScrapedDocument) TotalPages() int {
	if d == nil {
		return 0
	}
	total := 1
	for _, child := range d.Children {
		total += child.TotalPages()
	}
	return total
}

// Flatten returns the documents of the tree rooted at d in pre-order:
// each page before its children, children in link-discovery order.
// Returns nil for a nil document.
func (d *ScrapedDocument) Flatten() []*ScrapedDocument {
	if d == nil {
		return nil
	}
	docs := []*ScrapedDocument{d}
	for _, child := range d.Children {
		docs = append(docs, child.Flatten()...)
	}
	return docs
}

// MaxChildDepth returns the largest depth found in the tree rooted at d.
// Used by report writers to summarize how deep a crawl reached.
func (d *ScrapedDocument) MaxChildDepth() int {
	if d == nil {
		return 0
	}
	maxDepth := d.Depth
	for _, child := range d.Children {
		if childMax := child.MaxChildDepth(); childMax > maxDepth {
			maxDepth = childMax
		}
	}
	return maxDepth
}
