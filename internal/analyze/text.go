package analyze

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// truncateText caps text at limit bytes, preferring to cut at a paragraph
// break, then at a sentence end, then at a rune boundary. Boundaries in
// the first half of the window are not used: cutting there would discard
// most of the budget.
func truncateText(text string, limit int) string {
	if len(text) <= limit {
		return text
	}

	window := text[:limit]
	if i := strings.LastIndex(window, "\n\n"); i > limit/2 {
		return strings.TrimSpace(window[:i])
	}
	if i := strings.LastIndexByte(window, '.'); i > limit/2 {
		return strings.TrimSpace(window[:i+1])
	}

	// No usable boundary: back up to the nearest rune start so the cut
	// never splits a multi-byte character.
	for i := limit; i > 0; i-- {
		if utf8.RuneStart(text[i]) {
			return strings.TrimSpace(text[:i])
		}
	}
	return ""
}

// stripFence unwraps a Markdown code fence around the body, so services
// that answer with a ```json block still parse. Bodies without a fence
// pass through untouched.
func stripFence(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	if !bytes.HasPrefix(trimmed, []byte("```")) {
		return trimmed
	}

	trimmed = bytes.TrimPrefix(trimmed, []byte("```"))
	// The fence line may carry an info string such as "json".
	if i := bytes.IndexByte(trimmed, '\n'); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if i := bytes.LastIndex(trimmed, []byte("```")); i >= 0 {
		trimmed = trimmed[:i]
	}

	return bytes.TrimSpace(trimmed)
}
