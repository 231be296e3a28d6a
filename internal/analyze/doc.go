// Package analyze is the HTTP client boundary to the external content
// analysis service.
//
// The engine never interprets page content itself. When a crawl requests
// analysis, the root page's extracted text is posted as JSON to a
// configured endpoint, and the service answers with a structured report
// (summary, key points, topics, sentiment, entities). The whole exchange
// is best-effort: the crawler records a failed analysis as an advisory
// note on the result and still returns the document tree.
//
// The client tolerates services that wrap their JSON answer in a Markdown
// code fence, which is common for LLM-backed analyzers. Submitted text is
// truncated near a fixed byte budget at a paragraph boundary, so one
// oversized page cannot blow the analyzer's input window.
package analyze
