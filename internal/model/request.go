package model

import (
	"errors"
	"strings"
)

// CrawlRequest errors.
var (
	// ErrEmptySeedURL is returned when the request has no seed URL.
	ErrEmptySeedURL = errors.New("seed URL cannot be empty")
	// ErrNegativeDepth is returned when the maximum depth is negative.
	ErrNegativeDepth = errors.New("max depth cannot be negative")
	// ErrInvalidMaxPages is returned when the page budget is less than one.
	ErrInvalidMaxPages = errors.New("max pages must be at least 1")
)

// CrawlRequest describes a single crawl invocation. It is constructed once
// at the boundary (CLI flags or an embedding caller's JSON) and treated as
// immutable for the lifetime of the crawl.
//
// The JSON tags follow the inbound interface contract, so a request can be
// decoded directly from a caller-supplied body.
type CrawlRequest struct {
	// SeedURL is the absolute URL where the crawl starts.
	SeedURL string `json:"url"`

	// MaxDepth is how many link levels beyond the seed to follow.
	// 0 fetches the seed page only.
	MaxDepth int `json:"depth"`

	// SameDomainOnly restricts traversal to links whose registrable
	// domain matches the seed's.
	SameDomainOnly bool `json:"same_domain_only"`

	// MaxPages is the hard ceiling on pages fetched per crawl,
	// counting the seed. Traversal stops when the budget is spent.
	MaxPages int `json:"max_pages"`

	// RunAnalysis requests external content analysis of the root page
	// after the crawl completes. Analysis failures never fail the crawl.
	RunAnalysis bool `json:"run_analysis"`
}

// Validate checks that the request is well formed.
// It returns the first violated constraint as a sentinel error.
func (r CrawlRequest) Validate() error {
	if strings.TrimSpace(r.SeedURL) == "" {
		return ErrEmptySeedURL
	}
	if r.MaxDepth < 0 {
		return ErrNegativeDepth
	}
	if r.MaxPages < 1 {
		return ErrInvalidMaxPages
	}
	return nil
}
