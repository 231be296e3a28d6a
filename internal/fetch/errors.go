package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

// ScrapeError reports a failed fetch attempt. Transient marks failures
// worth retrying: connection errors, timeouts, rate limiting, and
// server-side 5xx responses. Non-transient failures abort immediately.
type ScrapeError struct {
	// URL is the URL whose fetch failed.
	URL string

	// StatusCode is the HTTP status of the failed response, or zero
	// when the failure happened below the HTTP layer.
	StatusCode int

	// Err is the underlying cause.
	Err error

	// Transient reports whether a retry may succeed.
	Transient bool
}

// Error implements the error interface.
func (e *ScrapeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// TooLargeError reports a response body exceeding the configured cap.
// It is never retried: the server will send the same body again.
type TooLargeError struct {
	// URL is the URL whose response was too large.
	URL string

	// Limit is the configured body size cap in bytes.
	Limit int64
}

// Error implements the error interface.
func (e *TooLargeError) Error() string {
	return fmt.Sprintf("fetch %s: response body exceeds %d bytes", e.URL, e.Limit)
}

// IsTransient reports whether err is a fetch failure worth retrying.
func IsTransient(err error) bool {
	var scrapeErr *ScrapeError
	if errors.As(err, &scrapeErr) {
		return scrapeErr.Transient
	}
	return false
}

// transientStatus reports whether an HTTP status code indicates a
// failure that may clear up on retry. Rate limiting and server errors
// qualify; client errors do not.
func transientStatus(statusCode int) bool {
	if statusCode == http.StatusTooManyRequests {
		return true
	}
	return statusCode >= 500
}
