package urlsafe

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Pre-compiled CIDR networks for private/reserved IP ranges not covered by
// the net.IP predicates. These are parsed once at package initialization.
var (
	cgnat    *net.IPNet // 100.64.0.0/10 - Carrier-grade NAT
	v6unique *net.IPNet // fc00::/7 - IPv6 unique local
	v6link   *net.IPNet // fe80::/10 - IPv6 link-local
)

func init() {
	var err error

	_, cgnat, err = net.ParseCIDR("100.64.0.0/10")
	if err != nil {
		panic("invalid CGNAT CIDR: " + err.Error())
	}

	_, v6unique, err = net.ParseCIDR("fc00::/7")
	if err != nil {
		panic("invalid IPv6 unique local CIDR: " + err.Error())
	}

	_, v6link, err = net.ParseCIDR("fe80::/10")
	if err != nil {
		panic("invalid IPv6 link-local CIDR: " + err.Error())
	}
}

// IsPrivateIP checks if an IP is in a private or reserved range.
// It handles IPv4, IPv6, and IPv4-mapped IPv6 addresses. The covered
// ranges include 10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16, 127.0.0.0/8,
// 169.254.0.0/16, 100.64.0.0/10, ::1/128, fc00::/7, fe80::/10, plus the
// unspecified and multicast addresses.
func IsPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		return true
	}

	// Check for IPv4-mapped IPv6 addresses (::ffff:x.x.x.x)
	// Convert to IPv4 if it's an IPv4-mapped IPv6 address
	if v4 := ip.To4(); v4 != nil {
		ip = v4
		// Re-check after conversion
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() {
			return true
		}
	}

	// Check for additional reserved ranges using pre-compiled CIDRs
	if cgnat.Contains(ip) || v6unique.Contains(ip) || v6link.Contains(ip) {
		return true
	}

	return false
}

// Resolver resolves host names to IP addresses. *net.Resolver satisfies it;
// tests substitute fakes so validation never touches real DNS.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Validator checks URLs against the engine's safety rules before any
// network connection is opened. A single Validator is shared across a
// crawl; it is safe for concurrent use.
type Validator struct {
	resolver     Resolver
	allowPrivate bool
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithResolver sets the DNS resolver used to check host addresses.
// Defaults to net.DefaultResolver.
func WithResolver(r Resolver) ValidatorOption {
	return func(v *Validator) {
		v.resolver = r
	}
}

// WithAllowPrivate disables the private-network range check, for
// deliberately crawling intranet or development targets. Scheme and
// syntax rules remain enforced.
func WithAllowPrivate(allow bool) ValidatorOption {
	return func(v *Validator) {
		v.allowPrivate = allow
	}
}

// NewValidator creates a Validator with the given options.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		resolver: net.DefaultResolver,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// AllowsPrivate reports whether the private-network check is disabled.
// The fetcher consults this to configure its dialer consistently.
func (v *Validator) AllowsPrivate() bool {
	return v.allowPrivate
}

// Validate checks a raw URL against every safety rule and returns the
// parsed URL on success. Failures are typed: syntax and scheme problems
// return *InvalidURLError, disallowed network targets return
// *SSRFBlockedError. No connection is opened; the only side effect is a
// DNS lookup for host names.
//
// If ANY resolved address of a host is disallowed, validation fails.
// A host that answers with one public and one private record is treated
// as hostile (multi-record SSRF), not as partially usable.
func (v *Validator) Validate(ctx context.Context, rawURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, &InvalidURLError{URL: rawURL, Reason: "empty URL"}
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, &InvalidURLError{URL: rawURL, Reason: fmt.Sprintf("parse failed: %v", err)}
	}

	// Scheme check comes before everything else so that no other rule,
	// and no DNS lookup, runs for file:, gopher:, javascript: and friends.
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, &InvalidURLError{URL: rawURL, Reason: fmt.Sprintf("scheme %q is not allowed (only http and https)", parsed.Scheme)}
	}

	host := parsed.Hostname()
	if host == "" {
		return nil, &InvalidURLError{URL: rawURL, Reason: "missing host"}
	}

	// URLs with embedded credentials are refused outright. A crawler has
	// no business carrying credentials, and they leak into logs and reports.
	if parsed.User != nil {
		return nil, &InvalidURLError{URL: rawURL, Reason: "embedded credentials are not allowed"}
	}

	// IP literals are checked directly, without resolution
	if ip := net.ParseIP(host); ip != nil {
		if err := v.checkIP(trimmed, host, ip); err != nil {
			return nil, err
		}
		return parsed, nil
	}

	// With the range check disabled there is nothing to learn from
	// resolving here; the dialer resolves again at connect time anyway.
	if v.allowPrivate {
		return parsed, nil
	}

	addrs, err := v.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, &InvalidURLError{URL: rawURL, Reason: fmt.Sprintf("host does not resolve: %v", err)}
	}
	if len(addrs) == 0 {
		return nil, &InvalidURLError{URL: rawURL, Reason: "host resolves to no addresses"}
	}

	for _, addr := range addrs {
		if err := v.checkIP(trimmed, host, addr.IP); err != nil {
			return nil, err
		}
	}

	return parsed, nil
}

// checkIP applies the private-range rule to one address.
func (v *Validator) checkIP(rawURL, host string, ip net.IP) error {
	if v.allowPrivate {
		return nil
	}
	if IsPrivateIP(ip) {
		return &SSRFBlockedError{URL: rawURL, Host: host, IP: ip}
	}
	return nil
}
