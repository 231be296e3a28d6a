package crawler

import (
	"net"
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// normalizeURL normalizes a URL for visited-set deduplication.
//
// Design decision: We normalize URLs because:
//  1. Same page can have different URL representations
//  2. Fragment (#anchor) doesn't change content
//  3. The empty path and "/" address the same resource
//
// The query string is kept: different queries usually mean different
// content.
func normalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// allowedByPatterns checks a URL path against the ignore/follow pattern
// lists.
//
// Logic:
//  1. If the path matches any ignore pattern, skip it (return false)
//  2. If follow patterns are set and the path matches none, skip it
//  3. Otherwise, crawl it (return true)
func allowedByPatterns(path string, ignorePatterns, followPatterns []string) bool {
	if path == "" {
		path = "/"
	}

	// Check ignore patterns first - if matched, skip
	for _, pattern := range ignorePatterns {
		if matchPattern(pattern, path) {
			return false
		}
	}

	// If follow patterns are set, the path must match at least one
	if len(followPatterns) > 0 {
		for _, pattern := range followPatterns {
			if matchPattern(pattern, path) {
				return true
			}
		}
		return false
	}

	return true
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//
// Examples:
//   - "/admin/*" matches "/admin/dashboard", "/admin/users"
//   - "*.pdf" matches "/docs/file.pdf"
//   - "/api/v?" matches "/api/v1", "/api/v2"
func matchPattern(pattern, path string) bool {
	// For patterns like "/admin/*", match the whole subtree
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	// Handle extension patterns like "*.pdf"
	if strings.HasPrefix(pattern, "*.") {
		ext := strings.TrimPrefix(pattern, "*")
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	// filepath.Match handles * and ? for single-segment patterns
	matched, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	if matched {
		return true
	}

	// Also try matching just the filename for patterns like "*.pdf"
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		filename := filepath.Base(path)
		matched, err := filepath.Match(pattern, filename)
		if err == nil && matched {
			return true
		}
	}

	return false
}

// sameDomain reports whether two hostnames share a registrable domain,
// so "blog.example.com" and "www.example.com" count as the same site.
//
// Design decision: We compare registrable domains via the public suffix
// list rather than exact hosts because:
//  1. Subdomain hops (www, blog, docs) stay within one organization
//  2. Exact-host comparison would make "example.com" and
//     "www.example.com" different sites, which surprises users
//  3. The public suffix list prevents "example.co.uk" from matching
//     "other.co.uk"
//
// Hosts without a registrable domain (IP literals, localhost, single
// labels) fall back to case-insensitive host equality.
func sameDomain(seedHost, candidateHost string) bool {
	if strings.EqualFold(seedHost, candidateHost) {
		return true
	}

	// IP literals have no registrable domain. The public suffix list
	// would derive one from the trailing octets, so bail out first.
	if net.ParseIP(seedHost) != nil || net.ParseIP(candidateHost) != nil {
		return false
	}

	seedDomain, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(seedHost))
	if err != nil {
		return false
	}
	candidateDomain, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(candidateHost))
	if err != nil {
		return false
	}

	return seedDomain == candidateDomain
}
