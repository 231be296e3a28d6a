package crawler

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/harvest/internal/config"
	"github.com/nao1215/harvest/internal/model"
	"github.com/nao1215/harvest/internal/pipeline"
)

// Analyzer produces a content analysis report for a page's text.
// The concrete implementation posts to an external service; the interface
// keeps the crawler testable without one.
type Analyzer interface {
	Analyze(ctx context.Context, input model.AnalysisInput) (*model.AnalysisReport, error)
}

// Spider crawls a site breadth-first through the page pipeline.
//
// Design decision: We call it "Spider" rather than "Crawler" because:
//  1. "Spider" is the traditional term for web crawlers
//  2. Distinguishes the component from the package name
//  3. Clearer in code: crawler.NewSpider() vs crawler.NewCrawler()
//
// A Spider holds only configuration and collaborators. All traversal
// state (visited set, page budget, statistics) lives in a per-crawl
// value, so one Spider can serve concurrent Crawl calls.
type Spider struct {
	// pipeline processes one page: validate, fetch, extract, normalize.
	pipeline *pipeline.Pipeline

	// concurrency is the number of pages fetched in parallel within
	// one level.
	concurrency int

	// delay is the politeness pause between dispatches within a level.
	delay time.Duration

	// ignorePatterns are URL path patterns to skip during crawling.
	// Patterns use glob syntax (e.g., "/admin/*", "*.pdf").
	ignorePatterns []string

	// followPatterns are URL path patterns to follow during crawling.
	// If set, only URLs matching these patterns are crawled.
	followPatterns []string

	// sites supplies per-host delay and pattern overrides.
	sites *config.File

	// analyzer is the optional external content analyzer.
	analyzer Analyzer

	// analysisTimeout bounds the analyzer call.
	analysisTimeout time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithConcurrency sets how many pages are fetched in parallel within
// one level. Values below one are ignored.
func WithConcurrency(n int) SpiderOption {
	return func(s *Spider) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithDelay sets the politeness delay between dispatches within a level.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithIgnorePatterns sets URL path patterns to skip during crawling.
// Patterns use glob syntax (e.g., "/admin/*", "*.pdf", "/logout*").
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.ignorePatterns = patterns
	}
}

// WithFollowPatterns sets URL path patterns to follow during crawling.
// If set, only URLs matching at least one pattern are crawled.
func WithFollowPatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.followPatterns = patterns
	}
}

// WithSiteConfigs applies per-host crawl overrides from the config file:
// politeness delay and ignore/follow patterns for the seed's host.
func WithSiteConfigs(sites *config.File) SpiderOption {
	return func(s *Spider) {
		s.sites = sites
	}
}

// WithAnalyzer sets the external content analyzer used when a request
// asks for analysis.
func WithAnalyzer(a Analyzer) SpiderOption {
	return func(s *Spider) {
		s.analyzer = a
	}
}

// WithAnalysisTimeout bounds the analyzer call.
func WithAnalysisTimeout(d time.Duration) SpiderOption {
	return func(s *Spider) {
		if d > 0 {
			s.analysisTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the spider.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a Spider that processes pages through the given
// pipeline.
//
// Design decision: We require an external pipeline because:
//  1. The validator, fetcher, and extractor are configured at the boundary
//  2. One fetcher shares its connection pool across the whole crawl
//  3. Tests swap in pipelines backed by httptest servers
func NewSpider(p *pipeline.Pipeline, opts ...SpiderOption) *Spider {
	s := &Spider{
		pipeline:        p,
		concurrency:     config.DefaultConcurrency,
		delay:           config.DefaultCrawlDelay,
		analysisTimeout: config.DefaultAnalyzerTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Crawl fetches the seed page and expands it breadth-first up to the
// request's depth and page limits, returning the document tree.
//
// Seed failure of any kind is fatal and is returned unmodified. Failures
// of linked pages are logged, their budget slot is released, and the page
// is omitted from the tree. When the context deadline expires mid-crawl,
// the pages completed so far are returned with TimedOut set.
func (s *Spider) Crawl(ctx context.Context, req model.CrawlRequest) (*model.CrawlResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result := model.NewCrawlResult(req)
	state := newCrawlState(req.MaxPages)
	state.reserve(normalizeURL(req.SeedURL))

	s.logger.Info("starting crawl",
		"url", req.SeedURL,
		"max_depth", req.MaxDepth,
		"max_pages", req.MaxPages,
		"same_domain_only", req.SameDomainOnly,
	)

	// The seed page runs through the same pipeline as every other page,
	// but its failure fails the whole crawl.
	job := pipeline.NewJob(req.SeedURL, 0)
	if err := s.pipeline.Execute(ctx, job); err != nil {
		return nil, err
	}

	root := job.Document()
	state.pageFetched()
	if root.FinalURL != "" {
		state.markVisited(normalizeURL(root.FinalURL))
	}
	result.Document = root

	run := &crawlRun{
		state:          state,
		seedHost:       job.SafeURL.Hostname(),
		sameDomainOnly: req.SameDomainOnly,
		delay:          s.delay,
		ignorePatterns: s.ignorePatterns,
		followPatterns: s.followPatterns,
	}
	s.applySiteOverrides(run)

	parents := []*model.ScrapedDocument{root}
	for depth := 1; depth <= req.MaxDepth && len(parents) > 0; depth++ {
		if ctx.Err() != nil {
			result.TimedOut = true
			break
		}

		parents = s.crawlLevel(ctx, run, parents, depth)

		s.logger.Debug("level complete",
			"depth", depth,
			"pages", len(parents),
		)
	}
	if ctx.Err() != nil {
		result.TimedOut = true
	}

	if req.RunAnalysis {
		s.analyzeRoot(ctx, result)
	}

	result.Stats = state.snapshot()
	result.Elapsed = time.Since(result.StartedAt)

	s.logger.Info("crawl finished",
		"url", req.SeedURL,
		"pages_fetched", result.Stats.PagesFetched,
		"pages_failed", result.Stats.PagesFailed,
		"timed_out", result.TimedOut,
		"elapsed", result.Elapsed,
	)

	return result, nil
}

// crawlRun bundles the settings and state of one crawl invocation.
type crawlRun struct {
	state          *crawlState
	seedHost       string
	sameDomainOnly bool
	delay          time.Duration
	ignorePatterns []string
	followPatterns []string
}

// applySiteOverrides layers the seed host's site configuration over the
// spider-level crawl settings. Patterns add to the spider's lists;
// the delay replaces it.
func (s *Spider) applySiteOverrides(run *crawlRun) {
	if s.sites == nil {
		return
	}

	site := s.sites.GetSiteConfig(run.seedHost)
	if site.Delay > 0 {
		run.delay = site.Delay.Std()
	}
	if len(site.IgnorePatterns) > 0 {
		run.ignorePatterns = append(append([]string{}, run.ignorePatterns...), site.IgnorePatterns...)
	}
	if len(site.FollowPatterns) > 0 {
		run.followPatterns = append(append([]string{}, run.followPatterns...), site.FollowPatterns...)
	}
}

// crawlLevel schedules and fetches one depth level, attaches the fetched
// documents to their parents in link-discovery order, and returns them.
func (s *Spider) crawlLevel(ctx context.Context, run *crawlRun, parents []*model.ScrapedDocument, depth int) []*model.ScrapedDocument {
	items := s.scheduleLevel(run, parents)
	if len(items) == 0 {
		return nil
	}
	return s.fetchLevel(ctx, run, items, depth)
}

// levelItem is one scheduled page of a level. The slot index fixes where
// its document lands so that child order follows link discovery rather
// than fetch completion.
type levelItem struct {
	url    string
	parent *model.ScrapedDocument
	slot   int
}

// scheduleLevel walks the parents' links in discovery order and reserves
// a budget slot for every candidate that passes the filters. Scheduling
// runs on the coordinating goroutine only.
func (s *Spider) scheduleLevel(run *crawlRun, parents []*model.ScrapedDocument) []levelItem {
	items := make([]levelItem, 0)

	for _, parent := range parents {
		for _, link := range parent.Links {
			run.state.linkDiscovered()

			candidate, err := url.Parse(link)
			if err != nil {
				run.state.linkSkipped()
				continue
			}

			norm := normalizeURL(link)
			if run.state.isVisited(norm) {
				run.state.linkSkipped()
				s.logger.Debug("skipping link", "url", link, "reason", "already visited")
				continue
			}
			if !allowedByPatterns(candidate.Path, run.ignorePatterns, run.followPatterns) {
				run.state.linkSkipped()
				s.logger.Debug("skipping link", "url", link, "reason", "pattern filter")
				continue
			}
			if run.sameDomainOnly && !sameDomain(run.seedHost, candidate.Hostname()) {
				run.state.linkSkipped()
				s.logger.Debug("skipping link", "url", link, "reason", "cross-domain")
				continue
			}
			if !run.state.reserve(norm) {
				run.state.linkSkipped()
				s.logger.Debug("skipping link", "url", link, "reason", "page budget exhausted")
				continue
			}

			items = append(items, levelItem{
				url:    link,
				parent: parent,
				slot:   len(items),
			})
		}
	}

	return items
}

// fetchLevel runs the scheduled pages concurrently and attaches the
// results in slot order.
//
// Design decision: Workers never return errors to the errgroup because:
//  1. A failed page must not cancel its siblings
//  2. Failures are recorded in the crawl statistics instead
//  3. Cancellation still propagates through the group context
func (s *Spider) fetchLevel(ctx context.Context, run *crawlRun, items []levelItem, depth int) []*model.ScrapedDocument {
	docs := make([]*model.ScrapedDocument, len(items))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, item := range items {
		if run.delay > 0 && i > 0 {
			if !sleepContext(ctx, run.delay) {
				// Deadline hit while pacing: give back the slots that
				// were never dispatched.
				for range items[i:] {
					run.state.cancelReservation()
				}
				break
			}
		}

		item := item
		g.Go(func() error {
			job := pipeline.NewJob(item.url, depth)
			if err := s.pipeline.Execute(gctx, job); err != nil {
				s.logger.Warn("page skipped",
					"url", item.url,
					"depth", depth,
					"error", err,
				)
				run.state.pageFailed()
				return nil
			}

			doc := job.Document()
			mu.Lock()
			docs[item.slot] = doc
			mu.Unlock()
			run.state.pageFetched()

			// A page reached via redirect must not be fetched again
			// under its final URL.
			if doc.FinalURL != "" {
				run.state.markVisited(normalizeURL(doc.FinalURL))
			}
			return nil
		})
	}

	// Workers never return errors, so Wait only synchronizes.
	_ = g.Wait()

	// Attach children in slot order. Completion order does not matter:
	// the slots fix the final ordering.
	level := make([]*model.ScrapedDocument, 0, len(items))
	for i, item := range items {
		if docs[i] == nil {
			continue
		}
		item.parent.Children = append(item.parent.Children, docs[i])
		level = append(level, docs[i])
	}

	return level
}

// analyzeRoot submits the root page's text to the analyzer and attaches
// the report. Analyzer failure surfaces only as the advisory
// AnalysisError field, never as a crawl failure.
func (s *Spider) analyzeRoot(ctx context.Context, result *model.CrawlResult) {
	root := result.Document

	if s.analyzer == nil {
		result.AnalysisError = "analysis requested but no analyzer is configured"
		return
	}

	actx, cancel := context.WithTimeout(ctx, s.analysisTimeout)
	defer cancel()

	text := root.MainText
	if root.Normalized != nil {
		text = root.Normalized.Collapsed
	}

	report, err := s.analyzer.Analyze(actx, model.AnalysisInput{
		URL:   root.URL,
		Title: root.Title,
		Text:  text,
	})
	if err != nil {
		s.logger.Warn("content analysis failed", "url", root.URL, "error", err)
		result.AnalysisError = err.Error()
		return
	}

	root.Analysis = report
}

// sleepContext waits for the duration unless the context ends first.
// Returns false when the wait was cut short.
func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// crawlState tracks the visited set, remaining page budget, and counters
// of one crawl. All methods are safe for concurrent use: workers release
// budget and record outcomes while the coordinator schedules.
type crawlState struct {
	mu      sync.Mutex
	visited map[string]bool
	budget  int
	stats   model.CrawlStats
}

// newCrawlState creates state with the full page budget available.
func newCrawlState(maxPages int) *crawlState {
	return &crawlState{
		visited: make(map[string]bool),
		budget:  maxPages,
	}
}

// reserve marks the URL visited and takes one budget slot. It fails when
// the URL was already seen or the budget is spent; reserving before
// scheduling is what bounds the crawl on cyclic link graphs.
func (c *crawlState) reserve(normURL string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.visited[normURL] || c.budget <= 0 {
		return false
	}
	c.visited[normURL] = true
	c.budget--
	return true
}

// isVisited reports whether the URL was already discovered.
func (c *crawlState) isVisited(normURL string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visited[normURL]
}

// markVisited records a URL without touching the budget. Used for
// post-redirect final URLs.
func (c *crawlState) markVisited(normURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visited[normURL] = true
}

// pageFetched counts a successful page.
func (c *crawlState) pageFetched() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.PagesFetched++
}

// pageFailed counts a failed page and releases its budget slot so a
// later candidate can use it. The URL stays in the visited set: a page
// that failed is not retried within the same crawl.
func (c *crawlState) pageFailed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.PagesFailed++
	c.budget++
}

// cancelReservation releases a reserved slot that was never dispatched.
func (c *crawlState) cancelReservation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.LinksSkipped++
	c.budget++
}

// linkDiscovered counts a link collected from a fetched page.
func (c *crawlState) linkDiscovered() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.LinksDiscovered++
}

// linkSkipped counts a link that was not scheduled.
func (c *crawlState) linkSkipped() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.LinksSkipped++
}

// snapshot returns a copy of the counters.
func (c *crawlState) snapshot() model.CrawlStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
