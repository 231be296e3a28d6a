package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/harvest/internal/model"
)

// stopWords are common English words removed from the keyword variant.
// The single letters s and t catch possessive and contraction fragments
// left behind by punctuation stripping (it's, don't).
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "will": true,
	"has": true, "have": true, "had": true, "does": true, "do": true,
	"can": true, "could": true, "would": true, "should": true, "not": true,
	"no": true, "how": true, "what": true, "where": true, "when": true,
	"why": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "and": true, "or": true,
	"but": true, "as": true, "by": true, "from": true, "it": true,
	"its": true, "this": true, "that": true, "these": true, "those": true,
	"s": true, "t": true,
}

// Normalizer derives NormalizedText from raw extracted text. The zero
// value produces only the collapsed variant; enable the keyword variant
// with WithKeywordText. A Normalizer is stateless and safe for
// concurrent use.
type Normalizer struct {
	keywordText bool
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithKeywordText enables the second, keyword-oriented variant
// (lower-cased, punctuation stripped, stop-words removed).
func WithKeywordText(enabled bool) NormalizerOption {
	return func(n *Normalizer) {
		n.keywordText = enabled
	}
}

// NewNormalizer creates a Normalizer with the given options.
func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize produces the configured text variants from rawText.
// It is deterministic and idempotent on the collapsed variant:
// normalizing Collapsed again yields the same Collapsed.
func (n *Normalizer) Normalize(rawText string) *model.NormalizedText {
	collapsed := Collapse(rawText)
	result := &model.NormalizedText{Collapsed: collapsed}
	if n.keywordText {
		result.CollapsedNoStopwords = stripToKeywords(collapsed)
	}
	return result
}

// Collapse canonicalizes whitespace: CRLF and CR become LF, every line
// is trimmed and single-spaced, runs of blank lines shrink to one, and
// leading/trailing blank lines are removed. Tabs, non-breaking spaces,
// and other Unicode space characters count as whitespace.
func Collapse(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	pendingBlank := false
	for _, line := range lines {
		// strings.Fields splits on Unicode whitespace, which covers
		// tabs, NBSP, and the less common space code points.
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			pendingBlank = true
			continue
		}
		if pendingBlank && len(out) > 0 {
			out = append(out, "")
		}
		pendingBlank = false
		out = append(out, line)
	}

	return strings.Join(out, "\n")
}

// stripToKeywords lower-cases the text, splits on anything that is not
// a letter or digit, and drops stop-words. Input is NFC-normalized
// first so that composed and decomposed accents tokenize identically.
func stripToKeywords(collapsed string) string {
	folded := strings.ToLower(norm.NFC.String(collapsed))

	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	kept := make([]string, 0, len(words))
	for _, word := range words {
		if stopWords[word] {
			continue
		}
		kept = append(kept, word)
	}

	return strings.Join(kept, " ")
}
