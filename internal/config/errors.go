package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrInvalidFetchTimeout is returned when the per-request timeout is not
	// positive. A timeout of zero or negative would fail every request.
	ErrInvalidFetchTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidCrawlTimeout is returned when the whole-crawl deadline is not
	// positive. Use a generous value rather than zero to disable it in practice.
	ErrInvalidCrawlTimeout = errors.New("invalid crawl timeout: must be positive")

	// ErrInvalidConcurrency is returned when the worker limit is not positive.
	// A limit of zero would mean no pages are ever fetched.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxAttempts is returned when the retry attempt count is less
	// than one. The first request counts as an attempt.
	ErrInvalidMaxAttempts = errors.New("invalid max attempts: must be at least 1")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidCrawlDelay is returned when the politeness delay is negative.
	// A negative delay is invalid; use 0 for no delay between requests.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrNoAnalyzerURL is returned when analysis is requested but no analyzer
	// endpoint is configured.
	ErrNoAnalyzerURL = errors.New("analysis requested but no analyzer URL configured")
)
