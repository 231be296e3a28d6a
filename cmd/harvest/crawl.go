package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/harvest/internal/analyze"
	"github.com/nao1215/harvest/internal/config"
	"github.com/nao1215/harvest/internal/crawler"
	"github.com/nao1215/harvest/internal/extract"
	"github.com/nao1215/harvest/internal/fetch"
	"github.com/nao1215/harvest/internal/log"
	"github.com/nao1215/harvest/internal/model"
	"github.com/nao1215/harvest/internal/normalize"
	"github.com/nao1215/harvest/internal/pipeline"
	"github.com/nao1215/harvest/internal/report"
	"github.com/nao1215/harvest/internal/urlsafe"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Crawl a site and extract structured content",
		Long: `Crawl fetches the seed URL and, up to the configured depth and page
budget, the pages it links to. Each page passes through the same pipeline:
URL safety validation, fetch with retries, content extraction, and text
normalization. The merged document tree is rendered as a report.

Private, loopback, and link-local targets are refused unless
--allow-private is set.

Examples:
  # Fetch one page and its direct links
  harvest crawl https://example.com

  # Go two levels deep, up to 20 pages
  harvest crawl --depth 2 --max-pages 20 https://example.com

  # Follow cross-domain links too
  harvest crawl --same-domain=false https://example.com

  # Crawl an intranet server deliberately
  harvest crawl --allow-private http://dev.internal:8080

  # Summarize the seed page through an external analyzer
  harvest crawl --analyze --analyzer-url http://localhost:8089/v1/analyze https://example.com

  # Write a Markdown report to a file
  harvest crawl -m -o report.md https://example.com

Configuration file (.harvest) example:
  defaults:
    delay: "500ms"
  sites:
    example.com:
      cookie: "session_id=abc123"
      depth: 3
      ignorePatterns:
        - "/admin/*"`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	// Traversal flags
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum link distance from the seed to follow (0 fetches only the seed)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to fetch, counting the seed")
	cmd.Flags().BoolP("same-domain", "s", true,
		"Only follow links on the seed's registrable domain")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of pages fetched in parallel within one crawl level")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Politeness delay between request dispatches")

	// Fetch behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Timeout for each HTTP request attempt")
	cmd.Flags().DurationP("crawl-timeout", "T", config.DefaultCrawlTimeout,
		"Deadline for the whole crawl; expiry returns the partial tree")
	cmd.Flags().StringP("user-agent", "u", "",
		"Fixed User-Agent header (default: rotate through a browser pool)")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum response body size in bytes")
	cmd.Flags().Bool("allow-private", false,
		"Allow crawling private, loopback, and link-local network targets")

	// Extraction flags
	cmd.Flags().Bool("readability", false,
		"Use the readability engine for main text extraction")
	cmd.Flags().Bool("keyword-text", false,
		"Also produce the lower-cased, stop-word-filtered text variant")

	// Analysis flags
	cmd.Flags().BoolP("analyze", "a", false,
		"Send the root page's text to the external analyzer after the crawl")
	cmd.Flags().String("analyzer-url", "",
		"HTTP endpoint of the external content analyzer (required with --analyze)")
	cmd.Flags().Duration("analyzer-timeout", config.DefaultAnalyzerTimeout,
		"Timeout for the analyzer call")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .harvest in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("json-log", false,
		"Write logs as line-delimited JSON instead of the console format")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// newLogger creates the CLI logger from the config's verbosity and format.
func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.JSONLog {
		return log.NewJSONLogger(os.Stderr, cfg.Verbose)
	}
	return log.NewLogger(os.Stderr, cfg.Verbose)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.SeedURL = args[0]

	// Get flag values
	var err error

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.SameDomainOnly, err = cmd.Flags().GetBool("same-domain")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.FetchTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.CrawlTimeout, err = cmd.Flags().GetDuration("crawl-timeout")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.MaxBodySize, err = cmd.Flags().GetInt64("max-body-size")
	if err != nil {
		return nil, err
	}

	cfg.AllowPrivate, err = cmd.Flags().GetBool("allow-private")
	if err != nil {
		return nil, err
	}

	cfg.UseReadability, err = cmd.Flags().GetBool("readability")
	if err != nil {
		return nil, err
	}

	cfg.KeywordText, err = cmd.Flags().GetBool("keyword-text")
	if err != nil {
		return nil, err
	}

	cfg.RunAnalysis, err = cmd.Flags().GetBool("analyze")
	if err != nil {
		return nil, err
	}

	cfg.AnalyzerURL, err = cmd.Flags().GetString("analyzer-url")
	if err != nil {
		return nil, err
	}

	cfg.AnalyzerTimeout, err = cmd.Flags().GetDuration("analyzer-timeout")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	// A per-site depth from the config file applies unless --depth was
	// given explicitly. The crawl request is immutable, so this is the
	// one place the override can happen.
	if !cmd.Flags().Changed("depth") {
		if site := cfg.SiteConfigs.GetSiteConfig(seedHost(cfg.SeedURL)); site.Depth > 0 {
			cfg.MaxDepth = site.Depth
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.JSONLog, err = cmd.Flags().GetBool("json-log")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// seedHost extracts the host name from the seed URL for site-config
// lookup. Returns "" for unparseable input; validation rejects such
// seeds later with a proper error.
func seedHost(seedURL string) string {
	parsed, err := url.Parse(seedURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

// runCrawl assembles the pipeline and executes the crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	req := cfg.CrawlRequest()
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid crawl request: %w", err)
	}

	logger.Info("starting harvest",
		"seed", cfg.SeedURL,
		"depth", cfg.MaxDepth,
		"max_pages", cfg.MaxPages,
		"same_domain_only", cfg.SameDomainOnly,
		"allow_private", cfg.AllowPrivate,
	)

	spider, err := buildSpider(cfg, logger)
	if err != nil {
		return err
	}

	// The whole crawl runs under one deadline. Expiry cancels in-flight
	// fetches and the partial tree is still reported.
	ctx, cancel := context.WithTimeout(ctx, cfg.CrawlTimeout)
	defer cancel()

	fmt.Printf("Crawling %s...\n", cfg.SeedURL)
	startTime := time.Now()

	result, err := spider.Crawl(ctx, req)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Crawl completed in %s (%d pages)\n\n",
		elapsed.Round(time.Millisecond), result.TotalPages())

	return outputReport(cfg, result)
}

// buildSpider wires the validator, fetcher, extractor, and normalizer
// into a page pipeline and wraps it in a crawl orchestrator.
func buildSpider(cfg *config.Config, logger *slog.Logger) (*crawler.Spider, error) {
	validator := urlsafe.NewValidator(
		urlsafe.WithAllowPrivate(cfg.AllowPrivate),
	)

	retry := fetch.DefaultRetryPolicy()
	retry.MaxAttempts = cfg.MaxAttempts
	retry.Backoff = cfg.RetryBackoff

	fetcherOpts := []fetch.FetcherOption{
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithRetryPolicy(retry),
		fetch.WithSiteConfigs(cfg.SiteConfigs),
		fetch.WithLogger(logger),
	}
	if cfg.UserAgent != "" {
		fetcherOpts = append(fetcherOpts, fetch.WithUserAgent(cfg.UserAgent))
	}
	fetcher := fetch.NewFetcher(validator, fetcherOpts...)

	extractor := extract.NewExtractor(
		extract.WithReadability(cfg.UseReadability),
	)
	normalizer := normalize.NewNormalizer(
		normalize.WithKeywordText(cfg.KeywordText),
	)

	p := pipeline.NewPagePipeline(validator, fetcher, extractor, normalizer,
		pipeline.WithLogger(logger),
	)

	spiderOpts := []crawler.SpiderOption{
		crawler.WithConcurrency(cfg.Concurrency),
		crawler.WithDelay(cfg.CrawlDelay),
		crawler.WithSiteConfigs(cfg.SiteConfigs),
		crawler.WithAnalysisTimeout(cfg.AnalyzerTimeout),
		crawler.WithLogger(logger),
	}

	if cfg.RunAnalysis {
		client, err := analyze.NewClient(cfg.AnalyzerURL,
			analyze.WithTimeout(cfg.AnalyzerTimeout),
			analyze.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("analyzer: %w", err)
		}
		spiderOpts = append(spiderOpts, crawler.WithAnalyzer(client))
	}

	return crawler.NewSpider(p, spiderOpts...), nil
}

// outputReport outputs the crawl result in the requested format.
func outputReport(cfg *config.Config, result *model.CrawlResult) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with owner-only permissions.
		// Crawled content may include pages fetched with configured
		// cookies and should not default to world-readable.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (full result wrapped with version metadata)
	if cfg.JSONReport {
		writer := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
		_, err := writer.Write(result)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(result)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	_, err := writer.Write(result)
	return err
}
