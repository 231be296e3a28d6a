package model

// ExtractedContent holds the structured fields pulled out of a fetched body.
// Extraction is best effort and never fails: malformed markup degrades to
// partially filled fields, and in the worst case every field is empty.
//
// Design decision: MainText is a plain string rather than a byte slice or
// node list because:
// 1. Normalization and analysis both operate on text, not markup
// 2. An empty string is a valid "nothing extractable" result
// 3. Consumers never need to re-walk the DOM
type ExtractedContent struct {
	// Title is the page title. Empty when the document has none.
	Title string `json:"title,omitempty"`

	// Meta maps metadata names to their content values.
	// Keys are lower-cased; the first occurrence of a key wins.
	Meta map[string]string `json:"meta,omitempty"`

	// Headings contains heading texts (h1 through h6 for HTML, item
	// titles for feeds) in document order. Empty headings are skipped.
	Headings []string `json:"headings,omitempty"`

	// MainText is the visible text of the page's main content region,
	// joined with single spaces. Never nil; possibly empty.
	MainText string `json:"main_text"`

	// Markdown is a GitHub-flavored Markdown rendition of the main
	// content region. Empty when conversion was not possible.
	Markdown string `json:"markdown,omitempty"`

	// Links contains absolute hyperlink URLs in first-seen order,
	// deduplicated. Only http and https links are kept.
	Links []string `json:"links,omitempty"`

	// Images contains absolute image URLs, deduplicated.
	Images []string `json:"images,omitempty"`
}

// NormalizedText holds the canonicalized text variants derived from
// extracted main text. It is read-only once produced.
type NormalizedText struct {
	// Collapsed is the whitespace-collapsed form of the main text:
	// LF-only newlines, single-spaced lines, at most one blank line
	// between paragraphs, trimmed edges.
	Collapsed string `json:"collapsed"`

	// CollapsedNoStopwords is the keyword variant: lower-cased,
	// punctuation stripped, common stop-words removed. Empty when the
	// keyword variant is disabled in configuration.
	CollapsedNoStopwords string `json:"collapsed_no_stopwords,omitempty"`
}
