package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/harvest/internal/model"
)

// Default configuration values.
// These values are tuned for polite crawling of public web sites while
// keeping a single crawl bounded in time and memory.
const (
	// DefaultFetchTimeout is the per-attempt HTTP timeout. 30 seconds
	// covers slow origins without letting a single page stall the crawl.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultCrawlTimeout is the deadline for one whole crawl invocation.
	// When it expires, in-flight fetches are cancelled and the partial
	// document tree is returned with the timeout indicator set.
	DefaultCrawlTimeout = 2 * time.Minute

	// DefaultMaxDepth of 1 fetches the seed page and the pages it links
	// to directly. Depth 0 fetches only the seed.
	DefaultMaxDepth = 1

	// DefaultMaxPages is the hard ceiling on pages fetched per crawl.
	// This prevents runaway crawling on large or infinitely-generating
	// sites. Users can override this via the --max-pages CLI flag.
	DefaultMaxPages = 10

	// DefaultConcurrency is the number of pages fetched in parallel
	// within one crawl level. Higher values speed up wide crawls but
	// hit origins harder.
	DefaultConcurrency = 8

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 3MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 3 * 1024 * 1024 // 3MB

	// DefaultMaxAttempts is the total number of tries per page,
	// counting the first request. Only transient failures are retried.
	DefaultMaxAttempts = 4

	// DefaultRetryBackoff is the wait before the first retry.
	// Subsequent retries double the wait.
	DefaultRetryBackoff = 1 * time.Second

	// DefaultMaxRetryBackoff caps the doubling backoff so that a long
	// retry chain never sleeps for minutes.
	DefaultMaxRetryBackoff = 30 * time.Second

	// DefaultMaxRedirects is the redirect hop limit per request.
	// Every redirect target is re-validated before it is followed.
	DefaultMaxRedirects = 5

	// DefaultCrawlDelay is the politeness delay between request
	// dispatches within a crawl level. 0 disables the delay; per-site
	// configuration can set one for origins that need gentler pacing.
	DefaultCrawlDelay = 0 * time.Second

	// DefaultAnalyzerTimeout bounds the external analysis call.
	// Analysis runs once per crawl, after the traversal finishes.
	DefaultAnalyzerTimeout = 90 * time.Second

	// AppName is the application name used for XDG directory paths.
	AppName = "harvest"
)

// Config holds all configuration options for harvest.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state. Once
// constructed it is treated as immutable.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., FetchConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// SeedURL is the URL where the crawl starts.
	// Populated from the CLI positional argument.
	SeedURL string

	// MaxDepth is the maximum link distance from the seed to follow.
	// Depth 0 means only fetch the seed page.
	MaxDepth int

	// MaxPages is the hard ceiling on pages fetched per crawl,
	// counting the seed. Checked before each fetch is scheduled.
	MaxPages int

	// SameDomainOnly restricts traversal to links on the seed's
	// registrable domain.
	SameDomainOnly bool

	// RunAnalysis submits the root page's text to the external
	// analyzer after the crawl. Requires AnalyzerURL.
	RunAnalysis bool

	// AnalyzerURL is the HTTP endpoint of the external content analyzer.
	AnalyzerURL string

	// AnalyzerTimeout bounds the analyzer call. Analysis failure never
	// fails the crawl; it only surfaces as an advisory message.
	AnalyzerTimeout time.Duration

	// FetchTimeout is the timeout for each HTTP request attempt.
	// This applies to individual attempts, not the overall crawl.
	FetchTimeout time.Duration

	// CrawlTimeout is the deadline for the whole crawl invocation.
	CrawlTimeout time.Duration

	// Concurrency is the number of pages fetched in parallel within
	// one crawl level.
	Concurrency int

	// MaxAttempts is the total number of tries per page, counting the
	// first request. Only transient failures are retried.
	MaxAttempts int

	// RetryBackoff is the wait before the first retry; it doubles on
	// each subsequent retry up to DefaultMaxRetryBackoff.
	RetryBackoff time.Duration

	// CrawlDelay is the delay between request dispatches during
	// crawling. This is a "politeness" setting to avoid overwhelming
	// origins. Per-site configuration can override it.
	CrawlDelay time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	// When empty, the fetcher rotates through its built-in pool of
	// browser User-Agent strings.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this fail the page with a size error.
	// Set to 0 to use the default (3MB).
	MaxBodySize int64

	// AllowPrivate disables the private-network safety check so that
	// intranet and development servers can be crawled deliberately.
	// The scheme and URL syntax checks remain active.
	AllowPrivate bool

	// UseReadability selects the readability engine for main-text
	// extraction instead of the built-in heuristic. The built-in
	// heuristic remains the fallback when readability yields nothing.
	UseReadability bool

	// KeywordText enables the second normalization variant: lower-cased,
	// punctuation stripped, stop-words removed.
	KeywordText bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONLog switches log output from the tinted console format to
	// line-delimited JSON, for machine consumption.
	JSONLog bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .harvest in the current directory,
	// the XDG config directory, and the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the
	// config file. This is populated by LoadConfigFile.
	SiteConfigs *File

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeouts, limits).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		MaxDepth:        DefaultMaxDepth,
		MaxPages:        DefaultMaxPages,
		AnalyzerTimeout: DefaultAnalyzerTimeout,
		FetchTimeout:    DefaultFetchTimeout,
		CrawlTimeout:    DefaultCrawlTimeout,
		Concurrency:     DefaultConcurrency,
		MaxAttempts:     DefaultMaxAttempts,
		RetryBackoff:    DefaultRetryBackoff,
		CrawlDelay:      DefaultCrawlDelay,
		MaxBodySize:     DefaultMaxBodySize,
	}
}

// XDGConfigDir returns the XDG config directory for harvest.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/harvest
// On macOS: ~/Library/Application Support/harvest
// On Windows: %APPDATA%\harvest
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the engine configuration is valid.
// It returns a specific error describing what is invalid.
// Request-level parameters (seed URL, depth, page budget) are validated
// separately by model.CrawlRequest.Validate.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any crawling begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// Zero timeouts would fail every request immediately
	if c.FetchTimeout <= 0 {
		return ErrInvalidFetchTimeout
	}
	if c.CrawlTimeout <= 0 {
		return ErrInvalidCrawlTimeout
	}

	// Concurrency must be positive; zero would mean no fetching
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	// The first request counts as an attempt
	if c.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// CrawlDelay must be non-negative
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	// MaxBodySize must be non-negative; 0 means default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	// Analysis needs somewhere to send the text
	if c.RunAnalysis && c.AnalyzerURL == "" {
		return ErrNoAnalyzerURL
	}

	return nil
}

// CrawlRequest builds the immutable request for this configuration's seed.
func (c *Config) CrawlRequest() model.CrawlRequest {
	return model.CrawlRequest{
		SeedURL:        c.SeedURL,
		MaxDepth:       c.MaxDepth,
		SameDomainOnly: c.SameDomainOnly,
		MaxPages:       c.MaxPages,
		RunAnalysis:    c.RunAnalysis,
	}
}
