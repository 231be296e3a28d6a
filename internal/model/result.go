package model

import "time"

// CrawlStats counts what happened during a crawl. Counters cover the whole
// traversal, including pages that failed and links that were filtered out.
type CrawlStats struct {
	// PagesFetched is the number of pages fetched successfully,
	// including the seed.
	PagesFetched int `json:"pages_fetched"`

	// PagesFailed is the number of scheduled pages whose pipeline
	// failed. Failed pages are omitted from the document tree.
	PagesFailed int `json:"pages_failed"`

	// LinksDiscovered is the total number of links collected from
	// fetched pages before filtering.
	LinksDiscovered int `json:"links_discovered"`

	// LinksSkipped is the number of discovered links not scheduled:
	// already visited, filtered by pattern or domain, or over budget.
	LinksSkipped int `json:"links_skipped"`
}

// CrawlResult is the top-level outcome of one crawl invocation.
// Report writers consume it; embedding callers serialize it.
//
// Design decision: Analyzer failure is carried as a string message rather
// than an error value because:
// 1. The result must serialize to JSON for reports
// 2. Analysis failure is advisory and must never fail the crawl
// 3. Callers only ever display it, never branch on its type
type CrawlResult struct {
	// Request is the request that produced this result.
	Request CrawlRequest `json:"request"`

	// Document is the root of the scraped document tree.
	// Never nil in a successfully returned result: a failed seed fetch
	// surfaces as an error from the crawl, not as an empty result.
	Document *ScrapedDocument `json:"document"`

	// Stats summarizes the traversal.
	Stats CrawlStats `json:"stats"`

	// TimedOut is true if the crawl deadline expired before the
	// traversal finished. The document tree is then partial but valid.
	TimedOut bool `json:"timed_out"`

	// AnalysisError holds the analyzer failure message when analysis
	// was requested but did not produce a report. Empty otherwise.
	AnalysisError string `json:"analysis_error,omitempty"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the wall-clock duration of the crawl.
	Elapsed time.Duration `json:"elapsed"`
}

// NewCrawlResult creates a result shell for the given request with the
// start time set to now. The crawler fills the remaining fields.
func NewCrawlResult(req CrawlRequest) *CrawlResult {
	return &CrawlResult{
		Request:   req,
		StartedAt: time.Now(),
	}
}

// TotalPages returns the number of documents in the result tree.
func (r *CrawlResult) TotalPages() int {
	if r == nil {
		return 0
	}
	return r.Document.TotalPages()
}
