package extract

import (
	"bytes"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/nao1215/harvest/internal/model"
)

// applyReadability re-extracts the main content with the readability
// algorithm and overwrites the heuristic result where it succeeds.
// Links, images, metadata, and headings from the native pass are kept;
// readability only judges which region of the page is the article.
//
// Any failure leaves the native result untouched, preserving the
// never-fails contract of extraction.
func (e *Extractor) applyReadability(body []byte, base *url.URL, content *model.ExtractedContent) {
	article, err := readability.FromReader(bytes.NewReader(body), base)
	if err != nil {
		return
	}

	if text := strings.Join(strings.Fields(article.TextContent), " "); text != "" {
		content.MainText = text
	}
	if content.Title == "" && article.Title != "" {
		content.Title = strings.TrimSpace(article.Title)
	}
	if article.Content != "" {
		if markdown, err := e.converter.ConvertString(article.Content); err == nil {
			if trimmed := strings.TrimSpace(markdown); trimmed != "" {
				content.Markdown = trimmed
			}
		}
	}
}
