// Package model defines the core data structures used throughout harvest.
//
// This package contains the following main types:
//   - CrawlRequest: Parameters for a single crawl invocation
//   - FetchedPage: One raw HTTP response with fetch metadata
//   - ExtractedContent: Structured content pulled out of a fetched body
//   - ScrapedDocument: The per-page aggregate, linked into a crawl tree
//   - CrawlResult: The top-level outcome returned to callers
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (fetch, extract, crawler, report) need to
// use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output.
// Nothing in this package touches the network or the filesystem.
package model
