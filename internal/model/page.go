package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// FetchedPage represents one raw HTTP response as returned by the fetcher.
// It is the input to content extraction and is discarded afterwards; only
// the derived ScrapedDocument survives the pipeline.
//
// Design decision: We keep the raw body bytes on the page rather than
// streaming them into the extractor because:
// 1. The fetcher enforces the size cap, so the body is already bounded
// 2. Kind detection needs to sniff the first bytes and then re-read them
// 3. The strict-then-lenient parser cascade re-reads the body on fallback
type FetchedPage struct {
	// URL is the URL that was requested, after safety validation.
	URL string `json:"url"`

	// FinalURL is the URL that actually produced the response, after
	// any redirects. Equals URL when no redirect occurred. Relative
	// links on the page resolve against this, not against URL.
	FinalURL string `json:"final_url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the declared MIME type of the response.
	// Extracted from the Content-Type header for convenience.
	// May be empty or wrong; kind detection sniffs the body too.
	ContentType string `json:"content_type"`

	// Raw contains the response body bytes, capped by the fetcher.
	Raw []byte `json:"-"` // Excluded from JSON to reduce report size

	// Hash is the SHA-256 hash of the raw content.
	// Used for deduplication and change detection by callers.
	Hash string `json:"hash,omitempty"`

	// FetchedAt is the timestamp when the response was received.
	FetchedAt time.Time `json:"fetched_at"`
}

// ComputeHash calculates and sets the SHA-256 hash of the page's raw content.
// This should be called after setting the Raw field.
func (p *FetchedPage) ComputeHash() {
	if len(p.Raw) == 0 {
		p.Hash = ""
		return
	}

	hash := sha256.Sum256(p.Raw)
	p.Hash = hex.EncodeToString(hash[:])
}
