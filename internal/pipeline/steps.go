package pipeline

import (
	"context"
	"errors"

	"github.com/nao1215/harvest/internal/extract"
	"github.com/nao1215/harvest/internal/fetch"
	"github.com/nao1215/harvest/internal/normalize"
	"github.com/nao1215/harvest/internal/urlsafe"
)

// ValidateStep runs the URL safety validator over the job's URL.
// It is always the first step: nothing touches the network for a URL
// that has not passed validation.
type ValidateStep struct {
	// validator checks schemes and resolved network ranges.
	validator *urlsafe.Validator
}

// NewValidateStep creates a validation step.
func NewValidateStep(validator *urlsafe.Validator) *ValidateStep {
	return &ValidateStep{validator: validator}
}

// Name returns the step name.
func (s *ValidateStep) Name() string {
	return "validate"
}

// Do executes the validation step.
func (s *ValidateStep) Do(ctx context.Context, job *Job) error {
	parsed, err := s.validator.Validate(ctx, job.URL)
	if err != nil {
		return err
	}
	job.SafeURL = parsed
	return nil
}

// FetchStep performs the HTTP GET for the job's URL.
type FetchStep struct {
	// fetcher carries retry, size, and redirect policy.
	fetcher *fetch.Fetcher
}

// NewFetchStep creates a fetch step.
func NewFetchStep(fetcher *fetch.Fetcher) *FetchStep {
	return &FetchStep{fetcher: fetcher}
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return "fetch"
}

// Do executes the fetch step. It prefers the validated URL so the
// fetcher sees the canonical form of whatever the validator accepted.
func (s *FetchStep) Do(ctx context.Context, job *Job) error {
	target := job.URL
	if job.SafeURL != nil {
		target = job.SafeURL.String()
	}

	page, err := s.fetcher.Fetch(ctx, target)
	if err != nil {
		return err
	}
	job.Page = page
	return nil
}

// ExtractStep turns the fetched body into structured content.
// Extraction itself never fails; malformed markup degrades to partial
// content.
type ExtractStep struct {
	// extractor dispatches on the detected content kind.
	extractor *extract.Extractor
}

// NewExtractStep creates an extraction step.
func NewExtractStep(extractor *extract.Extractor) *ExtractStep {
	return &ExtractStep{extractor: extractor}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do executes the extraction step.
func (s *ExtractStep) Do(_ context.Context, job *Job) error {
	if job.Page == nil {
		return errors.New("extract: no fetched page")
	}

	kind, content := s.extractor.Extract(job.Page)
	job.Kind = kind
	job.Content = content
	return nil
}

// NormalizeStep derives canonical text variants from the extracted
// main text.
type NormalizeStep struct {
	// normalizer produces the collapsed and keyword variants.
	normalizer *normalize.Normalizer
}

// NewNormalizeStep creates a normalization step.
func NewNormalizeStep(normalizer *normalize.Normalizer) *NormalizeStep {
	return &NormalizeStep{normalizer: normalizer}
}

// Name returns the step name.
func (s *NormalizeStep) Name() string {
	return "normalize"
}

// Do executes the normalization step.
func (s *NormalizeStep) Do(_ context.Context, job *Job) error {
	if job.Content == nil {
		return errors.New("normalize: no extracted content")
	}

	job.Normalized = s.normalizer.Normalize(job.Content.MainText)
	return nil
}

// NewPagePipeline assembles the standard page pipeline: validate, fetch,
// extract, normalize.
//
// Design decision: The components arrive fully configured rather than
// being built inside the steps because:
// 1. One fetcher shares its connection pool across every page of a crawl
// 2. The validator must be the same instance the fetcher dials through
// 3. Workers can share a single pipeline since steps hold no job state
func NewPagePipeline(
	validator *urlsafe.Validator,
	fetcher *fetch.Fetcher,
	extractor *extract.Extractor,
	normalizer *normalize.Normalizer,
	opts ...Option,
) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		NewValidateStep(validator),
		NewFetchStep(fetcher),
		NewExtractStep(extractor),
		NewNormalizeStep(normalizer),
	)
	return p
}
