// Package urlsafe validates URLs before the engine opens any connection.
// It enforces the http/https scheme rule and blocks targets in private,
// loopback, link-local, and otherwise reserved network ranges so that a
// crawl can never be steered into internal infrastructure (SSRF).
//
// Validation happens twice per page: once when a URL is discovered, and
// again inside the fetcher's dialer against the freshly resolved addresses,
// which closes the window for DNS rebinding between check and connect.
//
// Design decision: The validator resolves host names itself through an
// injectable Resolver because:
//  1. A URL is only as safe as the addresses it resolves to
//  2. Multi-record answers must be checked in full, not just the first
//  3. Tests can fake resolution without touching real DNS
package urlsafe
