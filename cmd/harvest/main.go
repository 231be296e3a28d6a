// Package main provides the entry point for the harvest CLI.
//
// harvest is a web content ingestion tool. Starting from a seed URL it
// safely fetches a bounded set of linked pages, extracts clean structured
// content, and renders the merged document tree as a report.
//
// Usage:
//
//	harvest crawl <url>
//	harvest crawl --depth 2 --max-pages 20 <url>
//
// See --help for all available options.
package main

// main is the entry point for harvest.
func main() {
	Execute()
}
