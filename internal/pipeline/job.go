package pipeline

import (
	"net/url"

	"github.com/nao1215/harvest/internal/model"
)

// Job carries one page through the pipeline. Steps fill the fields in
// sequence: validate sets SafeURL, fetch sets Page, extract sets Kind and
// Content, normalize sets Normalized. A Job belongs to a single worker
// and is never shared across goroutines.
type Job struct {
	// URL is the URL to process, as discovered.
	URL string

	// Depth is the page's distance from the crawl seed. The seed is 0.
	Depth int

	// SafeURL is the parsed URL after safety validation.
	SafeURL *url.URL

	// Page is the fetched response.
	Page *model.FetchedPage

	// Kind is the content kind the extractor dispatched on.
	Kind model.ContentKind

	// Content is the extracted content.
	Content *model.ExtractedContent

	// Normalized holds the canonicalized text variants.
	Normalized *model.NormalizedText

	// Completed lists the names of the steps that finished, in order.
	Completed []string
}

// NewJob creates a job for one URL at the given crawl depth.
func NewJob(rawURL string, depth int) *Job {
	return &Job{
		URL:   rawURL,
		Depth: depth,
	}
}

// Document assembles the scraped document from the job's outputs.
// Returns nil if the page was never fetched.
func (j *Job) Document() *model.ScrapedDocument {
	if j.Page == nil {
		return nil
	}

	doc := model.NewScrapedDocument(j.Page, j.Kind, j.Content, j.Depth)
	doc.Normalized = j.Normalized
	return doc
}
