// Package crawler provides bounded breadth-first crawling over the page
// pipeline.
//
// # Architecture
//
// The package is designed around the Spider type, which coordinates the
// traversal. Starting from a validated seed page, it expands one depth
// level at a time: links discovered on the previous level are filtered,
// reserved against the page budget, and fetched concurrently. The result
// is a document tree whose children appear in link-discovery order.
//
// Design decision: We crawl level by level rather than with a shared work
// queue because:
//  1. Depth bookkeeping is implicit: every page of a level has the same depth
//  2. The deterministic child order only needs per-level result slots
//  3. Budget reservation before scheduling guarantees termination on
//     cyclic link graphs
//
// # Components
//
//   - Spider: the orchestrator; safe for concurrent crawls since all
//     traversal state lives in a per-crawl value
//   - Filters: URL normalization, glob ignore/follow patterns, and the
//     registrable-domain check used by same-domain crawls
//
// # Politeness
//
// The crawler is designed to be polite:
//   - Optional delay between dispatches within a level
//   - Bounded concurrency per level
//   - Respects max depth and max page settings
//
// # Usage
//
//	spider := crawler.NewSpider(pagePipeline, crawler.WithConcurrency(4))
//	result, err := spider.Crawl(ctx, model.CrawlRequest{
//		SeedURL:  "https://example.com",
//		MaxDepth: 2,
//		MaxPages: 20,
//	})
//
// # Security Considerations
//
// Every URL passes the safety validator inside the pipeline before any
// request, and the fetcher re-checks resolved addresses at dial time.
// The crawler itself never opens connections.
package crawler
