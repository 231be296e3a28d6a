package model

import (
	"encoding/json"
	"fmt"
)

// ContentKind identifies the broad syntax family of a fetched body.
// The extractor resolves it once, from the declared content type plus a
// body sniff, and then dispatches on the tag. Downstream code switches on
// the kind instead of re-inspecting bytes.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons. The String() method provides human-readable
// output, and the JSON methods keep serialized documents readable.
type ContentKind int

const (
	// KindUnknown indicates a body that is neither HTML nor a feed.
	// Plain text bodies still yield main text; binary bodies yield
	// empty content.
	KindUnknown ContentKind = iota

	// KindHTML indicates an HTML or XHTML document.
	KindHTML

	// KindRSS indicates a syndication feed (RSS 2.0, RSS 1.0/RDF, or Atom).
	KindRSS
)

// String returns a human-readable representation of the content kind.
func (k ContentKind) String() string {
	switch k {
	case KindHTML:
		return "html"
	case KindRSS:
		return "rss"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the kind as its string form so that reports stay
// readable without a legend.
func (k ContentKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON accepts the string forms produced by MarshalJSON.
func (k *ContentKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("content kind must be a string: %w", err)
	}

	switch s {
	case "html":
		*k = KindHTML
	case "rss":
		*k = KindRSS
	case "unknown", "":
		*k = KindUnknown
	default:
		return fmt.Errorf("unknown content kind %q", s)
	}
	return nil
}
