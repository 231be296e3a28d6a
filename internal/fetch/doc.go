// Package fetch performs safe HTTP GETs for the crawl engine.
// Every request goes through a transport whose dialer re-resolves the
// host and refuses private, loopback, and link-local targets, so a DNS
// answer that changes between validation and connect cannot steer the
// crawler into internal infrastructure. Redirects are capped and each
// hop is validated again.
//
// Failures are classified: connection errors, timeouts, HTTP 429 and
// 5xx responses are transient and retried with exponential backoff and
// jitter; everything else fails immediately. Response bodies are capped
// and oversized responses abort with TooLargeError before the full body
// is downloaded.
package fetch
