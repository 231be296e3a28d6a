// Package normalize produces canonical text variants from extracted page
// text. The collapsed variant unifies line endings, single-spaces each
// line, and bounds blank runs to one empty line; it is idempotent, so
// re-normalizing already collapsed text is a no-op. The optional keyword
// variant additionally lower-cases, strips punctuation, and drops common
// English stop-words for downstream keyword-style matching.
//
// All functions are pure: same input, same output, no I/O.
package normalize
