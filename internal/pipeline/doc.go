// Package pipeline executes the per-page processing steps in sequence.
//
// Every page of a crawl moves through the same stages: URL safety
// validation, fetching, content extraction, and text normalization. Each
// stage is implemented as a Step that reads what earlier steps wrote to
// the shared Job and adds its own output.
//
// Design decision: We use a pipeline pattern instead of direct function
// calls because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context between stages
//
// A Pipeline holds no per-page state: the crawl builds one and shares it
// across all workers, each executing it over its own Job.
package pipeline
