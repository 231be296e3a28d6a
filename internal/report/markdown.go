package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/harvest/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs crawl results in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the crawl result in Markdown format.
func (w *MarkdownWriter) Write(result *model.CrawlResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	// Header
	w.writeHeader(md, result)

	// Traversal statistics
	w.writeStats(md, result)

	// Document tree
	w.writeTree(md, result.Document)

	// Optional analysis section
	w.writeAnalysis(md, result)

	// Footer
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.CrawlResult) {
	md.H1("Crawl Report")
	md.PlainText("")

	// Basic info table
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed URL", "`" + result.Request.SeedURL + "`"},
			{"Started", result.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", result.Elapsed.Round(time.Millisecond).String()},
			{"Pages", strconv.Itoa(result.TotalPages())},
			{"Deepest Level", strconv.Itoa(result.Document.MaxChildDepth())},
			{"Status", w.getStatusText(result)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on the result state.
func (w *MarkdownWriter) getStatusText(result *model.CrawlResult) string {
	if result.TimedOut {
		return "⚠️ Timed Out (partial results)"
	}
	return "✅ Complete"
}

// writeStats writes the traversal statistics section.
func (w *MarkdownWriter) writeStats(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Crawl Statistics")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Pages fetched", strconv.Itoa(result.Stats.PagesFetched)},
			{"Pages failed", strconv.Itoa(result.Stats.PagesFailed)},
			{"Links discovered", strconv.Itoa(result.Stats.LinksDiscovered)},
			{"Links skipped", strconv.Itoa(result.Stats.LinksSkipped)},
		},
	})
	md.PlainText("")

	// Add a depth distribution chart when the tree has more than one page
	if result.TotalPages() > 1 {
		w.writePieChart(md, result.Document)
	}

	// Add alert based on the crawl outcome
	w.writeAlert(md, result)
}

// writePieChart writes a mermaid pie chart of pages per depth level.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, root *model.ScrapedDocument) {
	counts := make([]int, root.MaxChildDepth()+1)
	for _, doc := range root.Flatten() {
		counts[doc.Depth]++
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Pages per Depth"),
		piechart.WithShowData(true),
	)
	for depth, count := range counts {
		if count == 0 {
			continue
		}
		chart.LabelAndIntValue("Depth "+strconv.Itoa(depth), uint64(count))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the crawl outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, result *model.CrawlResult) {
	switch {
	case result.TimedOut:
		md.Warningf(
			"The crawl deadline expired after %d page(s); the tree is partial.",
			result.Stats.PagesFetched,
		)
	case result.Stats.PagesFailed > 0:
		md.Importantf(
			"%d linked page(s) failed and were omitted from the tree.",
			result.Stats.PagesFailed,
		)
	default:
		md.Tip("All scheduled pages were fetched successfully.")
	}
	md.PlainText("")
}

// writeTree writes the document tree as a nested link list.
func (w *MarkdownWriter) writeTree(md *markdown.Markdown, root *model.ScrapedDocument) {
	md.H2("Page Tree")
	md.PlainText("")

	var sb strings.Builder
	w.appendTreeLines(&sb, root, 0)
	md.PlainText(strings.TrimRight(sb.String(), "\n"))
	md.PlainText("")
}

// appendTreeLines renders one document and its children as indented
// markdown list items.
func (w *MarkdownWriter) appendTreeLines(sb *strings.Builder, doc *model.ScrapedDocument, level int) {
	title := doc.Title
	if title == "" {
		title = doc.URL
	}

	fmt.Fprintf(sb, "%s- [%s](%s)\n",
		strings.Repeat("  ", level),
		truncateString(title, 60),
		doc.URL,
	)
	for _, child := range doc.Children {
		w.appendTreeLines(sb, child, level+1)
	}
}

// writeAnalysis writes the content analysis section. The section is
// omitted entirely when analysis was neither produced nor attempted.
func (w *MarkdownWriter) writeAnalysis(md *markdown.Markdown, result *model.CrawlResult) {
	analysis := result.Document.Analysis
	if analysis == nil && result.AnalysisError == "" {
		return
	}

	md.H2("Content Analysis")
	md.PlainText("")

	if result.AnalysisError != "" {
		md.Warningf("Content analysis failed: %s", result.AnalysisError)
		md.PlainText("")
		return
	}

	if analysis.Summary != "" {
		md.PlainText(analysis.Summary)
		md.PlainText("")
	}

	if len(analysis.KeyPoints) > 0 {
		md.PlainText("### Key Points")
		md.PlainText("")
		md.BulletList(analysis.KeyPoints...)
		md.PlainText("")
	}

	rows := make([][]string, 0, 3)
	if analysis.Sentiment != "" {
		rows = append(rows, []string{"Sentiment", analysis.Sentiment})
	}
	if len(analysis.Topics) > 0 {
		rows = append(rows, []string{"Topics", strings.Join(analysis.Topics, ", ")})
	}
	if len(analysis.Entities) > 0 {
		rows = append(rows, []string{"Entities", truncateString(strings.Join(analysis.Entities, ", "), 80)})
	}
	if len(rows) > 0 {
		md.Table(markdown.TableSet{
			Header: []string{"Aspect", "Value"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [harvest](https://github.com/nao1215/harvest)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
