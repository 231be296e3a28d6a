// Package extract turns raw fetched bytes into structured content.
// It dispatches on the detected content kind: HTML documents pass
// through a parse, noise-pruning, and main-content selection pipeline,
// RSS and Atom feeds decode through a strict-then-lenient XML cascade.
//
// Extraction is best effort and never returns an error. Malformed
// markup degrades to partially filled fields; in the worst case the
// result carries an empty main text, never a nil one.
package extract
