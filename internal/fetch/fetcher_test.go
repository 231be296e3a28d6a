package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/harvest/internal/config"
	"github.com/nao1215/harvest/internal/urlsafe"
)

// fakeResolver returns canned DNS answers for the dial-time check.
type fakeResolver struct {
	addrs map[string][]net.IPAddr
	err   error
	calls int
}

// LookupIPAddr implements urlsafe.Resolver.
func (r *fakeResolver) LookupIPAddr(_ context.Context, host string) ([]net.IPAddr, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.addrs[host], nil
}

// fakeDialer records dialed addresses and can refuse specific ones.
type fakeDialer struct {
	addrs     []string
	failAddrs map[string]bool
}

// DialContext implements Dialer.
func (d *fakeDialer) DialContext(_ context.Context, _, addr string) (net.Conn, error) {
	d.addrs = append(d.addrs, addr)
	if d.failAddrs[addr] {
		return nil, fmt.Errorf("dial %s: connection refused", addr)
	}
	conn, _ := net.Pipe()
	return conn, nil
}

// ipAddrs builds a DNS answer from IP strings.
func ipAddrs(ips ...string) []net.IPAddr {
	addrs := make([]net.IPAddr, 0, len(ips))
	for _, ip := range ips {
		addrs = append(addrs, net.IPAddr{IP: net.ParseIP(ip)})
	}
	return addrs
}

// testValidator allows loopback addresses so fetches can hit httptest
// servers.
func testValidator() *urlsafe.Validator {
	return urlsafe.NewValidator(urlsafe.WithAllowPrivate(true))
}

// quickRetry is a deterministic retry policy for tests.
func quickRetry(maxAttempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		Backoff:     time.Millisecond,
		MaxBackoff:  time.Second,
		Jitter:      0,
	}
}

// recordingSleep captures retry delays instead of waiting them out.
type recordingSleep struct {
	delays []time.Duration
}

// sleep implements SleepFunc without blocking.
func (s *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

// TestNewFetcher tests the NewFetcher function.
func TestNewFetcher(t *testing.T) {
	t.Parallel()

	t.Run("creates fetcher with default settings", func(t *testing.T) {
		t.Parallel()

		f := NewFetcher(testValidator())

		if f.client == nil {
			t.Error("client is nil, expected a configured http.Client")
		}
		if f.maxBodySize != defaultMaxBodySize {
			t.Errorf("maxBodySize = %d, want %d", f.maxBodySize, defaultMaxBodySize)
		}
		if f.timeout != defaultTimeout {
			t.Errorf("timeout = %v, want %v", f.timeout, defaultTimeout)
		}
		if f.maxRedirects != defaultMaxRedirects {
			t.Errorf("maxRedirects = %d, want %d", f.maxRedirects, defaultMaxRedirects)
		}
		if f.retry.MaxAttempts != 4 {
			t.Errorf("retry.MaxAttempts = %d, want 4", f.retry.MaxAttempts)
		}
		if len(f.userAgents) != len(defaultUserAgents) {
			t.Errorf("userAgents has %d entries, want %d", len(f.userAgents), len(defaultUserAgents))
		}
		if f.logger == nil {
			t.Error("logger is nil, expected a default logger")
		}
	})

	t.Run("applies options", func(t *testing.T) {
		t.Parallel()

		f := NewFetcher(testValidator(),
			WithUserAgent("harvest-test/1.0"),
			WithMaxBodySize(1024),
			WithTimeout(5*time.Second),
			WithMaxRedirects(2),
			WithRetryPolicy(quickRetry(2)),
		)

		if len(f.userAgents) != 1 || f.userAgents[0] != "harvest-test/1.0" {
			t.Errorf("userAgents = %v, want pinned to harvest-test/1.0", f.userAgents)
		}
		if f.maxBodySize != 1024 {
			t.Errorf("maxBodySize = %d, want 1024", f.maxBodySize)
		}
		if f.timeout != 5*time.Second {
			t.Errorf("timeout = %v, want 5s", f.timeout)
		}
		if f.maxRedirects != 2 {
			t.Errorf("maxRedirects = %d, want 2", f.maxRedirects)
		}
		if f.retry.MaxAttempts != 2 {
			t.Errorf("retry.MaxAttempts = %d, want 2", f.retry.MaxAttempts)
		}
	})

	t.Run("ignores empty user agent option", func(t *testing.T) {
		t.Parallel()

		f := NewFetcher(testValidator(), WithUserAgent(""))

		if len(f.userAgents) != len(defaultUserAgents) {
			t.Errorf("userAgents has %d entries, want the default pool", len(f.userAgents))
		}
	})
}

// TestFetcherFetch tests the Fetch method.
func TestFetcherFetch(t *testing.T) {
	t.Parallel()

	t.Run("fetches a page and fills every field", func(t *testing.T) {
		t.Parallel()

		const body = `<html><head><title>Hello</title></head><body>World</body></html>`
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(body)) //nolint:errcheck
		}))
		defer server.Close()

		f := NewFetcher(testValidator())
		page, err := f.Fetch(context.Background(), server.URL+"/page")
		if err != nil {
			t.Fatalf("Fetch() error = %v, want nil", err)
		}

		if page.URL != server.URL+"/page" {
			t.Errorf("URL = %q, want %q", page.URL, server.URL+"/page")
		}
		if page.FinalURL != server.URL+"/page" {
			t.Errorf("FinalURL = %q, want %q", page.FinalURL, server.URL+"/page")
		}
		if page.StatusCode != http.StatusOK {
			t.Errorf("StatusCode = %d, want %d", page.StatusCode, http.StatusOK)
		}
		if page.ContentType != "text/html; charset=utf-8" {
			t.Errorf("ContentType = %q, want text/html; charset=utf-8", page.ContentType)
		}
		if string(page.Raw) != body {
			t.Errorf("Raw = %q, want %q", string(page.Raw), body)
		}
		if len(page.Hash) != 64 {
			t.Errorf("Hash = %q, want a sha256 hex digest", page.Hash)
		}
		if page.FetchedAt.IsZero() {
			t.Error("FetchedAt is zero, expected a timestamp")
		}
	})

	t.Run("retries rate limited responses until success", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if attempts.Add(1) < 3 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			_, _ = w.Write([]byte("ok")) //nolint:errcheck
		}))
		defer server.Close()

		sleeper := &recordingSleep{}
		f := NewFetcher(testValidator(),
			WithRetryPolicy(quickRetry(4)),
			WithSleep(sleeper.sleep),
		)

		page, err := f.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("Fetch() error = %v, want nil", err)
		}
		if string(page.Raw) != "ok" {
			t.Errorf("Raw = %q, want %q", string(page.Raw), "ok")
		}
		if got := attempts.Load(); got != 3 {
			t.Errorf("server saw %d requests, want 3", got)
		}
		if len(sleeper.delays) != 2 {
			t.Fatalf("recorded %d retry delays, want 2", len(sleeper.delays))
		}
		if sleeper.delays[0] != time.Millisecond {
			t.Errorf("first delay = %v, want %v", sleeper.delays[0], time.Millisecond)
		}
		if sleeper.delays[1] != 2*time.Millisecond {
			t.Errorf("second delay = %v, want %v", sleeper.delays[1], 2*time.Millisecond)
		}
	})

	t.Run("gives up after exhausting attempts", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		f := NewFetcher(testValidator(),
			WithRetryPolicy(quickRetry(3)),
			WithSleep((&recordingSleep{}).sleep),
		)

		_, err := f.Fetch(context.Background(), server.URL)
		if err == nil {
			t.Fatal("Fetch() error = nil, want a server error")
		}

		var scrapeErr *ScrapeError
		if !errors.As(err, &scrapeErr) {
			t.Fatalf("Fetch() error = %T, want *ScrapeError", err)
		}
		if scrapeErr.StatusCode != http.StatusInternalServerError {
			t.Errorf("StatusCode = %d, want %d", scrapeErr.StatusCode, http.StatusInternalServerError)
		}
		if !IsTransient(err) {
			t.Error("IsTransient() = false, want true for a 500")
		}
		if got := attempts.Load(); got != 3 {
			t.Errorf("server saw %d requests, want 3", got)
		}
	})

	t.Run("does not retry not found", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		f := NewFetcher(testValidator(),
			WithRetryPolicy(quickRetry(4)),
			WithSleep((&recordingSleep{}).sleep),
		)

		_, err := f.Fetch(context.Background(), server.URL)

		var scrapeErr *ScrapeError
		if !errors.As(err, &scrapeErr) {
			t.Fatalf("Fetch() error = %T, want *ScrapeError", err)
		}
		if scrapeErr.StatusCode != http.StatusNotFound {
			t.Errorf("StatusCode = %d, want %d", scrapeErr.StatusCode, http.StatusNotFound)
		}
		if IsTransient(err) {
			t.Error("IsTransient() = true, want false for a 404")
		}
		if got := attempts.Load(); got != 1 {
			t.Errorf("server saw %d requests, want 1", got)
		}
	})

	t.Run("rejects bodies over the size cap", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("a", 64))) //nolint:errcheck
		}))
		defer server.Close()

		f := NewFetcher(testValidator(), WithMaxBodySize(16))

		_, err := f.Fetch(context.Background(), server.URL)

		var tooLarge *TooLargeError
		if !errors.As(err, &tooLarge) {
			t.Fatalf("Fetch() error = %v, want *TooLargeError", err)
		}
		if tooLarge.Limit != 16 {
			t.Errorf("Limit = %d, want 16", tooLarge.Limit)
		}
		if IsTransient(err) {
			t.Error("IsTransient() = true, want false for an oversized body")
		}
	})

	t.Run("accepts a body exactly at the cap", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("a", 16))) //nolint:errcheck
		}))
		defer server.Close()

		f := NewFetcher(testValidator(), WithMaxBodySize(16))

		page, err := f.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("Fetch() error = %v, want nil", err)
		}
		if len(page.Raw) != 16 {
			t.Errorf("Raw has %d bytes, want 16", len(page.Raw))
		}
	})

	t.Run("rejects oversized chunked bodies", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			flusher, ok := w.(http.Flusher)
			if !ok {
				t.Error("response writer does not support flushing")
				return
			}
			// Flushing before the second write forces chunked encoding,
			// so no Content-Length header reveals the size up front.
			_, _ = w.Write([]byte(strings.Repeat("a", 8))) //nolint:errcheck
			flusher.Flush()
			_, _ = w.Write([]byte(strings.Repeat("b", 16))) //nolint:errcheck
		}))
		defer server.Close()

		f := NewFetcher(testValidator(), WithMaxBodySize(16))

		_, err := f.Fetch(context.Background(), server.URL)

		var tooLarge *TooLargeError
		if !errors.As(err, &tooLarge) {
			t.Fatalf("Fetch() error = %v, want *TooLargeError", err)
		}
	})

	t.Run("follows redirects and records the final url", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		server := httptest.NewServer(mux)
		defer server.Close()

		mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, server.URL+"/final", http.StatusFound)
		})
		mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("done")) //nolint:errcheck
		})

		f := NewFetcher(testValidator())

		page, err := f.Fetch(context.Background(), server.URL+"/start")
		if err != nil {
			t.Fatalf("Fetch() error = %v, want nil", err)
		}
		if page.URL != server.URL+"/start" {
			t.Errorf("URL = %q, want the requested URL %q", page.URL, server.URL+"/start")
		}
		if page.FinalURL != server.URL+"/final" {
			t.Errorf("FinalURL = %q, want %q", page.FinalURL, server.URL+"/final")
		}
		if string(page.Raw) != "done" {
			t.Errorf("Raw = %q, want %q", string(page.Raw), "done")
		}
	})

	t.Run("stops after the redirect cap", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		server := httptest.NewServer(mux)
		defer server.Close()

		mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, server.URL+"/b", http.StatusFound)
		})
		mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, server.URL+"/a", http.StatusFound)
		})

		f := NewFetcher(testValidator(),
			WithMaxRedirects(2),
			WithRetryPolicy(quickRetry(1)),
		)

		_, err := f.Fetch(context.Background(), server.URL+"/a")
		if err == nil {
			t.Fatal("Fetch() error = nil, want a redirect limit error")
		}
		if !strings.Contains(err.Error(), "stopped after 2 redirects") {
			t.Errorf("error = %v, want it to mention the redirect limit", err)
		}
	})

	t.Run("rejects redirect targets that fail validation", func(t *testing.T) {
		t.Parallel()

		var nextCalls atomic.Int32
		mux := http.NewServeMux()
		server := httptest.NewServer(mux)
		defer server.Close()

		mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
			target := strings.Replace(server.URL, "http://", "http://user:secret@", 1)
			w.Header().Set("Location", target+"/next")
			w.WriteHeader(http.StatusFound)
		})
		mux.HandleFunc("/next", func(w http.ResponseWriter, r *http.Request) {
			nextCalls.Add(1)
			_, _ = w.Write([]byte("should not be reached")) //nolint:errcheck
		})

		f := NewFetcher(testValidator(),
			WithRetryPolicy(quickRetry(4)),
			WithSleep((&recordingSleep{}).sleep),
		)

		_, err := f.Fetch(context.Background(), server.URL+"/start")

		var invalidErr *urlsafe.InvalidURLError
		if !errors.As(err, &invalidErr) {
			t.Fatalf("Fetch() error = %v, want *urlsafe.InvalidURLError", err)
		}
		if got := nextCalls.Load(); got != 0 {
			t.Errorf("redirect target saw %d requests, want 0", got)
		}
	})

	t.Run("sends browser shaped headers", func(t *testing.T) {
		t.Parallel()

		var gotUA, gotAccept, gotLang string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			gotAccept = r.Header.Get("Accept")
			gotLang = r.Header.Get("Accept-Language")
			_, _ = w.Write([]byte("ok")) //nolint:errcheck
		}))
		defer server.Close()

		f := NewFetcher(testValidator(), WithUserAgent("harvest-test/1.0"))

		if _, err := f.Fetch(context.Background(), server.URL); err != nil {
			t.Fatalf("Fetch() error = %v, want nil", err)
		}
		if gotUA != "harvest-test/1.0" {
			t.Errorf("User-Agent = %q, want harvest-test/1.0", gotUA)
		}
		if !strings.Contains(gotAccept, "text/html") {
			t.Errorf("Accept = %q, want it to include text/html", gotAccept)
		}
		if gotLang != "en-US,en;q=0.5" {
			t.Errorf("Accept-Language = %q, want en-US,en;q=0.5", gotLang)
		}
	})

	t.Run("uses an agent from the default pool", func(t *testing.T) {
		t.Parallel()

		var gotUA string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			_, _ = w.Write([]byte("ok")) //nolint:errcheck
		}))
		defer server.Close()

		f := NewFetcher(testValidator())

		if _, err := f.Fetch(context.Background(), server.URL); err != nil {
			t.Fatalf("Fetch() error = %v, want nil", err)
		}

		found := false
		for _, ua := range defaultUserAgents {
			if gotUA == ua {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("User-Agent = %q, want an entry from the default pool", gotUA)
		}
	})

	t.Run("applies site specific overrides", func(t *testing.T) {
		t.Parallel()

		var gotUA, gotCookie, gotAPIKey string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			gotCookie = r.Header.Get("Cookie")
			gotAPIKey = r.Header.Get("X-Api-Key")
			_, _ = w.Write([]byte("ok")) //nolint:errcheck
		}))
		defer server.Close()

		sites := &config.File{
			Sites: map[string]config.SiteConfig{
				"127.0.0.1": {
					Cookie:    "session=abc123",
					UserAgent: "harvest-custom/2.0",
					Headers:   map[string]string{"X-Api-Key": "secret-key"},
				},
			},
		}
		f := NewFetcher(testValidator(), WithSiteConfigs(sites))

		if _, err := f.Fetch(context.Background(), server.URL); err != nil {
			t.Fatalf("Fetch() error = %v, want nil", err)
		}
		if gotUA != "harvest-custom/2.0" {
			t.Errorf("User-Agent = %q, want harvest-custom/2.0", gotUA)
		}
		if gotCookie != "session=abc123" {
			t.Errorf("Cookie = %q, want session=abc123", gotCookie)
		}
		if gotAPIKey != "secret-key" {
			t.Errorf("X-Api-Key = %q, want secret-key", gotAPIKey)
		}
	})

	t.Run("aborts the retry wait when the context expires", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		f := NewFetcher(testValidator(), WithRetryPolicy(RetryPolicy{
			MaxAttempts: 3,
			Backoff:     10 * time.Second,
			MaxBackoff:  10 * time.Second,
			Jitter:      0,
		}))

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := f.Fetch(ctx, server.URL)
		elapsed := time.Since(start)

		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Fetch() error = %v, want context.DeadlineExceeded", err)
		}
		if elapsed > 5*time.Second {
			t.Errorf("Fetch() took %v, expected the backoff wait to be cut short", elapsed)
		}
	})
}

// TestFetcherSafeDialContext tests the safeDialContext method.
func TestFetcherSafeDialContext(t *testing.T) {
	t.Parallel()

	t.Run("dials the resolved address instead of the host name", func(t *testing.T) {
		t.Parallel()

		resolver := &fakeResolver{addrs: map[string][]net.IPAddr{
			"public.test": ipAddrs("93.184.216.34"),
		}}
		dialer := &fakeDialer{}
		f := NewFetcher(urlsafe.NewValidator(), WithResolver(resolver), WithDialer(dialer))

		conn, err := f.safeDialContext(context.Background(), "tcp", "public.test:80")
		if err != nil {
			t.Fatalf("safeDialContext() error = %v, want nil", err)
		}
		defer conn.Close()

		if len(dialer.addrs) != 1 || dialer.addrs[0] != "93.184.216.34:80" {
			t.Errorf("dialed %v, want [93.184.216.34:80]", dialer.addrs)
		}
	})

	t.Run("blocks hosts that resolve to private addresses", func(t *testing.T) {
		t.Parallel()

		resolver := &fakeResolver{addrs: map[string][]net.IPAddr{
			"rebind.test": ipAddrs("10.0.0.5"),
		}}
		dialer := &fakeDialer{}
		f := NewFetcher(urlsafe.NewValidator(), WithResolver(resolver), WithDialer(dialer))

		_, err := f.safeDialContext(context.Background(), "tcp", "rebind.test:80")

		var blockedErr *urlsafe.SSRFBlockedError
		if !errors.As(err, &blockedErr) {
			t.Fatalf("safeDialContext() error = %v, want *urlsafe.SSRFBlockedError", err)
		}
		if len(dialer.addrs) != 0 {
			t.Errorf("dialed %v, want no dial attempts", dialer.addrs)
		}
	})

	t.Run("blocks when any record is private", func(t *testing.T) {
		t.Parallel()

		resolver := &fakeResolver{addrs: map[string][]net.IPAddr{
			"mixed.test": ipAddrs("93.184.216.34", "192.168.1.10"),
		}}
		dialer := &fakeDialer{}
		f := NewFetcher(urlsafe.NewValidator(), WithResolver(resolver), WithDialer(dialer))

		_, err := f.safeDialContext(context.Background(), "tcp", "mixed.test:80")

		var blockedErr *urlsafe.SSRFBlockedError
		if !errors.As(err, &blockedErr) {
			t.Fatalf("safeDialContext() error = %v, want *urlsafe.SSRFBlockedError", err)
		}
		if len(dialer.addrs) != 0 {
			t.Errorf("dialed %v, want no dial attempts", dialer.addrs)
		}
	})

	t.Run("blocks private ip literals", func(t *testing.T) {
		t.Parallel()

		resolver := &fakeResolver{}
		dialer := &fakeDialer{}
		f := NewFetcher(urlsafe.NewValidator(), WithResolver(resolver), WithDialer(dialer))

		_, err := f.safeDialContext(context.Background(), "tcp", "169.254.169.254:80")

		var blockedErr *urlsafe.SSRFBlockedError
		if !errors.As(err, &blockedErr) {
			t.Fatalf("safeDialContext() error = %v, want *urlsafe.SSRFBlockedError", err)
		}
		if resolver.calls != 0 {
			t.Errorf("resolver saw %d lookups, want 0 for an IP literal", resolver.calls)
		}
	})

	t.Run("tries each address until one connects", func(t *testing.T) {
		t.Parallel()

		resolver := &fakeResolver{addrs: map[string][]net.IPAddr{
			"multi.test": ipAddrs("192.0.2.1", "93.184.216.34"),
		}}
		dialer := &fakeDialer{failAddrs: map[string]bool{"192.0.2.1:443": true}}
		f := NewFetcher(urlsafe.NewValidator(), WithResolver(resolver), WithDialer(dialer))

		conn, err := f.safeDialContext(context.Background(), "tcp", "multi.test:443")
		if err != nil {
			t.Fatalf("safeDialContext() error = %v, want nil", err)
		}
		defer conn.Close()

		want := []string{"192.0.2.1:443", "93.184.216.34:443"}
		if len(dialer.addrs) != len(want) {
			t.Fatalf("dialed %v, want %v", dialer.addrs, want)
		}
		for i, addr := range want {
			if dialer.addrs[i] != addr {
				t.Errorf("dial %d = %q, want %q", i, dialer.addrs[i], addr)
			}
		}
	})

	t.Run("skips checks when private addresses are allowed", func(t *testing.T) {
		t.Parallel()

		resolver := &fakeResolver{}
		dialer := &fakeDialer{}
		f := NewFetcher(testValidator(), WithResolver(resolver), WithDialer(dialer))

		conn, err := f.safeDialContext(context.Background(), "tcp", "127.0.0.1:8080")
		if err != nil {
			t.Fatalf("safeDialContext() error = %v, want nil", err)
		}
		defer conn.Close()

		if resolver.calls != 0 {
			t.Errorf("resolver saw %d lookups, want 0", resolver.calls)
		}
		if len(dialer.addrs) != 1 || dialer.addrs[0] != "127.0.0.1:8080" {
			t.Errorf("dialed %v, want [127.0.0.1:8080]", dialer.addrs)
		}
	})
}

// TestPickUserAgent tests the pickUserAgent function.
func TestPickUserAgent(t *testing.T) {
	t.Parallel()

	t.Run("returns empty string for an empty pool", func(t *testing.T) {
		t.Parallel()

		if got := pickUserAgent(nil); got != "" {
			t.Errorf("pickUserAgent(nil) = %q, want empty", got)
		}
	})

	t.Run("returns the only entry of a single element pool", func(t *testing.T) {
		t.Parallel()

		if got := pickUserAgent([]string{"only"}); got != "only" {
			t.Errorf("pickUserAgent() = %q, want %q", got, "only")
		}
	})

	t.Run("returns a member of the pool", func(t *testing.T) {
		t.Parallel()

		pool := []string{"first", "second", "third"}
		for i := 0; i < 20; i++ {
			got := pickUserAgent(pool)
			if got != "first" && got != "second" && got != "third" {
				t.Fatalf("pickUserAgent() = %q, want a pool member", got)
			}
		}
	})
}
