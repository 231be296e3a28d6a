package extract

import (
	"strings"

	"github.com/nao1215/harvest/internal/model"
)

// sniffLen is how many leading bytes are inspected when the declared
// content type does not identify the document kind.
const sniffLen = 1024

// DetectKind determines whether a response body is an HTML document or
// an RSS/Atom feed. The declared content type is trusted first; when it
// is missing or inconclusive the leading bytes are sniffed. Bodies that
// match neither kind report KindUnknown, which the extractor treats as
// HTML for best-effort extraction.
func DetectKind(contentType string, body []byte) model.ContentKind {
	ct := strings.ToLower(contentType)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(ct)

	switch {
	case strings.Contains(ct, "html"):
		// text/html and application/xhtml+xml
		return model.KindHTML
	case strings.Contains(ct, "rss"), strings.Contains(ct, "atom"):
		return model.KindRSS
	case strings.Contains(ct, "xml"):
		// Generic XML (text/xml, application/xml) is how many servers
		// label their feeds. Let the body decide.
		if kind := sniffKind(body); kind != model.KindUnknown {
			return kind
		}
		return model.KindRSS
	}

	return sniffKind(body)
}

// sniffKind inspects the leading bytes for feed or HTML markers.
func sniffKind(body []byte) model.ContentKind {
	head := body
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	s := strings.ToLower(string(head))

	switch {
	case strings.Contains(s, "<rss"), strings.Contains(s, "<feed"), strings.Contains(s, "<rdf:rdf"):
		return model.KindRSS
	case strings.Contains(s, "<!doctype html"), strings.Contains(s, "<html"):
		return model.KindHTML
	}

	return model.KindUnknown
}
