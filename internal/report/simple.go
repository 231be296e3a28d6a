package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/harvest/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no content are shown.
	showEmpty bool

	// verbose enables additional per-page detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the crawl result in human-readable format.
func (w *SimpleWriter) Write(result *model.CrawlResult) (int, error) {
	var sb strings.Builder

	// Header
	w.writeHeader(&sb, result)

	// Traversal statistics
	w.writeStats(&sb, result)

	// Document tree
	w.writeTree(&sb, result.Document)

	// Optional analysis section
	w.writeAnalysis(&sb, result)

	// Footer
	w.writeFooter(&sb)

	// Write to output
	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with crawl information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, result *model.CrawlResult) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        HARVEST CRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Seed URL:   %s\n", result.Request.SeedURL))
	sb.WriteString(fmt.Sprintf("Started:    %s\n", result.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Elapsed:    %s\n", result.Elapsed.Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Pages:      %d\n", result.TotalPages()))

	if result.TimedOut {
		sb.WriteString("Status:     TIMED OUT (partial results)\n")
	} else {
		sb.WriteString("Status:     Complete\n")
	}

	sb.WriteString("\n")
}

// writeStats writes the traversal statistics section.
func (w *SimpleWriter) writeStats(sb *strings.Builder, result *model.CrawlResult) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CRAWL STATISTICS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Pages fetched:    %d\n", result.Stats.PagesFetched))
	sb.WriteString(fmt.Sprintf("  Pages failed:     %d\n", result.Stats.PagesFailed))
	sb.WriteString(fmt.Sprintf("  Links discovered: %d\n", result.Stats.LinksDiscovered))
	sb.WriteString(fmt.Sprintf("  Links skipped:    %d\n", result.Stats.LinksSkipped))
	sb.WriteString("\n")
}

// writeTree writes the document tree section.
func (w *SimpleWriter) writeTree(sb *strings.Builder, root *model.ScrapedDocument) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGE TREE\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	w.writeTreeNode(sb, root, 0)
	sb.WriteString("\n")
}

// writeTreeNode writes one document and its children with indentation.
func (w *SimpleWriter) writeTreeNode(sb *strings.Builder, doc *model.ScrapedDocument, level int) {
	indent := strings.Repeat("  ", level+1)

	title := doc.Title
	if title == "" {
		title = "(untitled)"
	}
	sb.WriteString(fmt.Sprintf("%s- %s (%s)\n", indent, title, doc.URL))

	if w.verbose {
		sb.WriteString(fmt.Sprintf("%s    status=%d kind=%s", indent, doc.HTTPStatus, doc.Kind))
		if doc.FinalURL != "" {
			sb.WriteString(fmt.Sprintf(" redirected=%s", doc.FinalURL))
		}
		sb.WriteString("\n")
	}

	for _, child := range doc.Children {
		w.writeTreeNode(sb, child, level+1)
	}
}

// writeAnalysis writes the content analysis section. The section is
// skipped when analysis was neither produced nor attempted, unless
// showEmpty is set.
func (w *SimpleWriter) writeAnalysis(sb *strings.Builder, result *model.CrawlResult) {
	analysis := result.Document.Analysis
	if analysis == nil && result.AnalysisError == "" && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CONTENT ANALYSIS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	switch {
	case result.AnalysisError != "":
		sb.WriteString(fmt.Sprintf("  Analysis failed: %s\n", result.AnalysisError))
	case analysis == nil:
		sb.WriteString("  No analysis requested\n")
	default:
		if analysis.Summary != "" {
			sb.WriteString(fmt.Sprintf("  Summary:   %s\n", analysis.Summary))
		}
		if analysis.Sentiment != "" {
			sb.WriteString(fmt.Sprintf("  Sentiment: %s\n", analysis.Sentiment))
		}
		if len(analysis.Topics) > 0 {
			sb.WriteString(fmt.Sprintf("  Topics:    %s\n", strings.Join(analysis.Topics, ", ")))
		}
		if len(analysis.Entities) > 0 {
			sb.WriteString(fmt.Sprintf("  Entities:  %s\n", strings.Join(analysis.Entities, ", ")))
		}
		if len(analysis.KeyPoints) > 0 {
			sb.WriteString("  Key points:\n")
			for _, point := range analysis.KeyPoints {
				sb.WriteString(fmt.Sprintf("    * %s\n", point))
			}
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by harvest\n")
	sb.WriteString("https://github.com/nao1215/harvest\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
