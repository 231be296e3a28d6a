package urlsafe

import (
	"fmt"
	"net"
)

// InvalidURLError reports a URL that failed syntactic validation:
// unparseable input, a missing host, a disallowed scheme, embedded
// credentials, or a host that does not resolve. It is never retried.
type InvalidURLError struct {
	// URL is the offending raw URL as given by the caller.
	URL string

	// Reason describes which rule the URL violated.
	Reason string
}

// Error implements the error interface.
func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid URL %q: %s", e.URL, e.Reason)
}

// SSRFBlockedError reports a URL whose target lies in a disallowed network
// range. It is never retried, and the fetcher logs it as a security-relevant
// event.
type SSRFBlockedError struct {
	// URL is the offending raw URL as given by the caller.
	URL string

	// Host is the host component that triggered the block.
	Host string

	// IP is the disallowed address the host is or resolves to.
	IP net.IP
}

// Error implements the error interface.
func (e *SSRFBlockedError) Error() string {
	if e.IP == nil {
		return fmt.Sprintf("blocked URL %q: host %q is in a disallowed network range", e.URL, e.Host)
	}
	return fmt.Sprintf("blocked URL %q: host %q resolves to disallowed address %s", e.URL, e.Host, e.IP)
}
