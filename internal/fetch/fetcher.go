package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/nao1215/harvest/internal/config"
	"github.com/nao1215/harvest/internal/model"
	"github.com/nao1215/harvest/internal/urlsafe"
)

// Default limits applied when no option overrides them.
const (
	defaultMaxBodySize  = 3 * 1024 * 1024 // 3MB
	defaultTimeout      = 30 * time.Second
	defaultMaxRedirects = 5
)

// Dialer opens network connections. *net.Dialer satisfies it; tests
// substitute fakes to observe or refuse dial attempts.
type Dialer interface {
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}

// Fetcher performs safe HTTP GETs with retry, size enforcement, and
// User-Agent rotation. A single Fetcher is shared across a crawl and
// is safe for concurrent use.
//
// Design decision: The Fetcher builds its own http.Client rather than
// accepting one because:
//  1. The transport's dialer is the second half of the SSRF defense
//     and must not be swappable for an unchecked one
//  2. Redirect policy and connection pooling belong together
//  3. Tests inject behavior through the resolver, dialer, and sleep
//     hooks instead of a mock client
type Fetcher struct {
	client       *http.Client
	validator    *urlsafe.Validator
	resolver     urlsafe.Resolver
	dialer       Dialer
	userAgents   []string
	maxBodySize  int64
	timeout      time.Duration
	maxRedirects int
	retry        RetryPolicy
	sleep        SleepFunc
	sites        *config.File
	logger       *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent pins every request to a single User-Agent instead of
// rotating through the default pool.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgents = []string{ua}
		}
	}
}

// WithMaxBodySize sets the response body cap in bytes.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithTimeout sets the per-attempt timeout. Retries get a fresh one.
func WithTimeout(timeout time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = timeout
	}
}

// WithMaxRedirects sets how many redirect hops a request may follow.
func WithMaxRedirects(n int) FetcherOption {
	return func(f *Fetcher) {
		f.maxRedirects = n
	}
}

// WithRetryPolicy sets the retry policy for transient failures.
func WithRetryPolicy(policy RetryPolicy) FetcherOption {
	return func(f *Fetcher) {
		f.retry = policy
	}
}

// WithSleep sets the function used to wait between retries.
func WithSleep(sleep SleepFunc) FetcherOption {
	return func(f *Fetcher) {
		f.sleep = sleep
	}
}

// WithDialer sets the dialer the safe transport connects through.
func WithDialer(d Dialer) FetcherOption {
	return func(f *Fetcher) {
		f.dialer = d
	}
}

// WithResolver sets the DNS resolver used by the dial-time address
// check. Defaults to net.DefaultResolver.
func WithResolver(r urlsafe.Resolver) FetcherOption {
	return func(f *Fetcher) {
		f.resolver = r
	}
}

// WithSiteConfigs applies per-host request overrides: cookie, custom
// headers, and a fixed User-Agent for matching hosts.
func WithSiteConfigs(sites *config.File) FetcherOption {
	return func(f *Fetcher) {
		f.sites = sites
	}
}

// WithLogger sets the logger for retry and failure events.
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher whose transport enforces the validator's
// network rules at dial time.
func NewFetcher(validator *urlsafe.Validator, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		validator:    validator,
		resolver:     net.DefaultResolver,
		dialer:       &net.Dialer{Timeout: 10 * time.Second},
		userAgents:   defaultUserAgents,
		maxBodySize:  defaultMaxBodySize,
		timeout:      defaultTimeout,
		maxRedirects: defaultMaxRedirects,
		retry:        DefaultRetryPolicy(),
		sleep:        defaultSleep,
	}

	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}

	f.client = f.buildClient()
	return f
}

// buildClient assembles the HTTP client around the safe transport.
// No proxy is configured on purpose: a proxy would carry requests past
// the dial-time address check.
func (f *Fetcher) buildClient() *http.Client {
	transport := &http.Transport{
		DialContext:           f.safeDialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= f.maxRedirects {
				return fmt.Errorf("stopped after %d redirects", f.maxRedirects)
			}
			// Each hop is validated like a freshly discovered URL.
			if _, err := f.validator.Validate(req.Context(), req.URL.String()); err != nil {
				return err
			}
			return nil
		},
	}
}

// safeDialContext resolves the host itself and connects to a checked
// address, never to the host name. This closes the window between URL
// validation and connect in which a DNS answer can change.
func (f *Fetcher) safeDialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}

	if f.validator.AllowsPrivate() {
		return f.dialer.DialContext(ctx, network, addr)
	}

	if ip := net.ParseIP(host); ip != nil {
		if urlsafe.IsPrivateIP(ip) {
			return nil, &urlsafe.SSRFBlockedError{URL: host, Host: host, IP: ip}
		}
		return f.dialer.DialContext(ctx, network, addr)
	}

	addrs, err := f.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no addresses for %s", host)
	}

	// Any private record fails the whole host. Connecting to the public
	// record of a half-poisoned answer is still a rebind.
	for _, a := range addrs {
		if urlsafe.IsPrivateIP(a.IP) {
			return nil, &urlsafe.SSRFBlockedError{URL: host, Host: host, IP: a.IP}
		}
	}

	var lastErr error
	for _, a := range addrs {
		conn, err := f.dialer.DialContext(ctx, network, net.JoinHostPort(a.IP.String(), port))
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// Fetch performs a GET with retries and returns the capped response.
// Transient failures (connection errors, timeouts, 429, 5xx) are
// retried with exponential backoff; everything else fails immediately.
// The URL must already have passed validation.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*model.FetchedPage, error) {
	var lastErr error

	for attempt := 1; attempt <= f.retry.MaxAttempts; attempt++ {
		page, err := f.fetchOnce(ctx, rawURL)
		if err == nil {
			return page, nil
		}
		lastErr = err

		if !IsTransient(err) {
			return nil, err
		}

		if attempt < f.retry.MaxAttempts {
			backoff := f.retry.backoffFor(attempt)
			f.logger.Debug("fetch failed, retrying",
				"url", rawURL,
				"attempt", attempt,
				"max_attempts", f.retry.MaxAttempts,
				"backoff", backoff,
				"error", err)

			if err := f.sleep(ctx, backoff); err != nil {
				return nil, err
			}
		}
	}

	return nil, lastErr
}

// fetchOnce performs a single GET attempt under the per-attempt timeout.
func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (*model.FetchedPage, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &ScrapeError{URL: rawURL, Err: err}
	}
	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		// Safety blocks pass through unchanged so callers can tell
		// them apart from network trouble.
		var blocked *urlsafe.SSRFBlockedError
		if errors.As(err, &blocked) {
			return nil, blocked
		}
		var invalid *urlsafe.InvalidURLError
		if errors.As(err, &invalid) {
			return nil, invalid
		}
		return nil, &ScrapeError{URL: rawURL, Err: err, Transient: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ScrapeError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
			Transient:  transientStatus(resp.StatusCode),
		}
	}

	// Fast path: a declared length over the cap aborts before any
	// body bytes are read.
	if resp.ContentLength > f.maxBodySize {
		return nil, &TooLargeError{URL: rawURL, Limit: f.maxBodySize}
	}

	// Read one byte past the cap to distinguish "exactly at the cap"
	// from "over it" without buffering the excess.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, &ScrapeError{URL: rawURL, Err: err, Transient: true}
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, &TooLargeError{URL: rawURL, Limit: f.maxBodySize}
	}

	page := &model.FetchedPage{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Raw:         body,
		FetchedAt:   time.Now(),
	}
	page.ComputeHash()

	return page, nil
}

// setHeaders applies browser-shaped headers plus any per-site overrides.
func (f *Fetcher) setHeaders(req *http.Request) {
	ua := pickUserAgent(f.userAgents)

	var site config.SiteConfig
	if f.sites != nil {
		site = f.sites.GetSiteConfig(req.URL.Hostname())
		if site.UserAgent != "" {
			ua = site.UserAgent
		}
	}

	if ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	if site.Cookie != "" {
		req.Header.Set("Cookie", site.Cookie)
	}
	for k, v := range site.Headers {
		req.Header.Set(k, v)
	}
}
