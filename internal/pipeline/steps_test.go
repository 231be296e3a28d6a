package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/harvest/internal/extract"
	"github.com/nao1215/harvest/internal/fetch"
	"github.com/nao1215/harvest/internal/model"
	"github.com/nao1215/harvest/internal/normalize"
	"github.com/nao1215/harvest/internal/urlsafe"
)

// newTestPipeline builds a page pipeline whose validator admits loopback
// addresses, so steps can run against httptest servers.
func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()

	validator := urlsafe.NewValidator(urlsafe.WithAllowPrivate(true))
	fetcher := fetch.NewFetcher(validator, fetch.WithRetryPolicy(fetch.RetryPolicy{
		MaxAttempts: 1,
		Backoff:     time.Millisecond,
	}))

	return NewPagePipeline(validator, fetcher, extract.NewExtractor(), normalize.NewNormalizer())
}

// TestNewPagePipeline tests the NewPagePipeline function.
func TestNewPagePipeline(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t)

	names := p.StepNames()
	expected := []string{"validate", "fetch", "extract", "normalize"}

	if len(names) != len(expected) {
		t.Fatalf("expected %d steps, got %d", len(expected), len(names))
	}
	for i, name := range expected {
		if names[i] != name {
			t.Errorf("step %d: got %q, expected %q", i, names[i], name)
		}
	}
}

// TestPagePipelineExecute tests the standard steps working together.
func TestPagePipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("processes an html page end to end", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(`<html>
<head><title>Release Notes</title></head>
<body>
<article>
<h1>Version 2.0</h1>
<p>This   release adds    streaming support.</p>
<a href="/changelog">Changelog</a>
</article>
</body>
</html>`)) //nolint:errcheck
		}))
		defer server.Close()

		p := newTestPipeline(t)
		job := NewJob(server.URL+"/notes", 0)

		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if job.SafeURL == nil {
			t.Fatal("expected SafeURL to be set by the validate step")
		}
		if job.Page == nil {
			t.Fatal("expected Page to be set by the fetch step")
		}
		if job.Kind != model.KindHTML {
			t.Errorf("expected KindHTML, got %v", job.Kind)
		}
		if job.Content == nil {
			t.Fatal("expected Content to be set by the extract step")
		}
		if job.Content.Title != "Release Notes" {
			t.Errorf("expected title 'Release Notes', got %q", job.Content.Title)
		}
		if !strings.Contains(job.Content.MainText, "streaming support") {
			t.Errorf("expected main text to mention streaming support, got %q", job.Content.MainText)
		}
		if len(job.Content.Links) != 1 || job.Content.Links[0] != server.URL+"/changelog" {
			t.Errorf("expected one resolved link, got %v", job.Content.Links)
		}
		if job.Normalized == nil {
			t.Fatal("expected Normalized to be set by the normalize step")
		}
		if strings.Contains(job.Normalized.Collapsed, "   ") {
			t.Errorf("expected collapsed whitespace, got %q", job.Normalized.Collapsed)
		}

		expected := []string{"validate", "fetch", "extract", "normalize"}
		if len(job.Completed) != len(expected) {
			t.Fatalf("expected %d completed steps, got %v", len(expected), job.Completed)
		}
		for i, name := range expected {
			if job.Completed[i] != name {
				t.Errorf("completed step %d: got %q, expected %q", i, job.Completed[i], name)
			}
		}
	})

	t.Run("assembles a document from the job", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><head><title>Doc</title></head><body><p>Body text</p></body></html>`)) //nolint:errcheck
		}))
		defer server.Close()

		p := newTestPipeline(t)
		job := NewJob(server.URL, 2)

		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		doc := job.Document()
		if doc == nil {
			t.Fatal("expected a document")
		}
		if doc.URL != server.URL {
			t.Errorf("expected URL %q, got %q", server.URL, doc.URL)
		}
		if doc.Depth != 2 {
			t.Errorf("expected depth 2, got %d", doc.Depth)
		}
		if doc.Title != "Doc" {
			t.Errorf("expected title 'Doc', got %q", doc.Title)
		}
		if doc.HTTPStatus != http.StatusOK {
			t.Errorf("expected status 200, got %d", doc.HTTPStatus)
		}
		if doc.Normalized == nil {
			t.Error("expected normalized text on the document")
		}
		if doc.Hash == "" {
			t.Error("expected a content hash on the document")
		}
	})

	t.Run("rejects disallowed schemes before any fetch", func(t *testing.T) {
		t.Parallel()

		p := newTestPipeline(t)
		job := NewJob("ftp://example.com/files", 0)

		err := p.Execute(context.Background(), job)

		var invalidErr *urlsafe.InvalidURLError
		if !errors.As(err, &invalidErr) {
			t.Fatalf("expected *urlsafe.InvalidURLError, got %v", err)
		}
		if job.Page != nil {
			t.Error("expected no page for a rejected URL")
		}
		if len(job.Completed) != 0 {
			t.Errorf("expected no completed steps, got %v", job.Completed)
		}
	})

	t.Run("blocks private targets when private is disallowed", func(t *testing.T) {
		t.Parallel()

		validator := urlsafe.NewValidator()
		fetcher := fetch.NewFetcher(validator)
		p := NewPagePipeline(validator, fetcher, extract.NewExtractor(), normalize.NewNormalizer())

		job := NewJob("http://169.254.169.254/latest/meta-data/", 0)
		err := p.Execute(context.Background(), job)

		var blockedErr *urlsafe.SSRFBlockedError
		if !errors.As(err, &blockedErr) {
			t.Fatalf("expected *urlsafe.SSRFBlockedError, got %v", err)
		}
		if job.Page != nil {
			t.Error("expected no page for a blocked URL")
		}
	})

	t.Run("propagates fetch failures with their type", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		p := newTestPipeline(t)
		job := NewJob(server.URL+"/missing", 0)

		err := p.Execute(context.Background(), job)

		var scrapeErr *fetch.ScrapeError
		if !errors.As(err, &scrapeErr) {
			t.Fatalf("expected *fetch.ScrapeError, got %v", err)
		}
		if scrapeErr.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", scrapeErr.StatusCode)
		}
		if len(job.Completed) != 1 || job.Completed[0] != "validate" {
			t.Errorf("expected only validate to complete, got %v", job.Completed)
		}
	})
}

// TestExtractStepDo tests the ExtractStep guard.
func TestExtractStepDo(t *testing.T) {
	t.Parallel()

	t.Run("fails without a fetched page", func(t *testing.T) {
		t.Parallel()

		step := NewExtractStep(extract.NewExtractor())
		job := NewJob("https://example.com", 0)

		if err := step.Do(context.Background(), job); err == nil {
			t.Error("expected an error for a job without a page")
		}
	})
}

// TestNormalizeStepDo tests the NormalizeStep guard.
func TestNormalizeStepDo(t *testing.T) {
	t.Parallel()

	t.Run("fails without extracted content", func(t *testing.T) {
		t.Parallel()

		step := NewNormalizeStep(normalize.NewNormalizer())
		job := NewJob("https://example.com", 0)

		if err := step.Do(context.Background(), job); err == nil {
			t.Error("expected an error for a job without content")
		}
	})

	t.Run("normalizes the extracted main text", func(t *testing.T) {
		t.Parallel()

		step := NewNormalizeStep(normalize.NewNormalizer())
		job := NewJob("https://example.com", 0)
		job.Content = &model.ExtractedContent{MainText: "Too   many    spaces here"}

		if err := step.Do(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if job.Normalized == nil {
			t.Fatal("expected normalized text")
		}
		if job.Normalized.Collapsed != "Too many spaces here" {
			t.Errorf("expected collapsed text, got %q", job.Normalized.Collapsed)
		}
	})
}
