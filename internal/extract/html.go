package extract

import (
	"bytes"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/nao1215/harvest/internal/model"
)

// noiseElements are element names removed wholesale before main-text
// selection. They never carry article content.
var noiseElements = []string{
	"nav", "header", "footer", "aside", "script", "style", "noscript",
	"iframe", "object", "embed", "form", "button",
}

// noiseTokens are class and id tokens that mark boilerplate containers:
// navigation chrome, ad slots, cookie notices, share bars, comment
// sections. Matching is exact per token, so "article-header" survives
// while "header" is removed.
var noiseTokens = []string{
	"nav", "navbar", "navigation", "menu", "sidebar", "footer", "header",
	"breadcrumb", "breadcrumbs", "ad", "ads", "advert", "advertisement",
	"banner", "cookie", "cookie-notice", "cookie-banner", "cookie-consent",
	"consent", "social", "share", "comments", "comment", "comment-section",
	"related", "promo", "popup", "newsletter",
}

// mainSelectors is the priority order for locating the main content
// region. The body fallback is handled separately.
var mainSelectors = []string{"article", "main", "[role=main]"}

// extractHTML runs the HTML pipeline: decode to UTF-8, parse, collect
// page-level fields from the full document, prune boilerplate, then
// select the main content region for text and Markdown.
//
// Design decision: We collect links and metadata before pruning because:
//  1. Crawl expansion must see navigation links, which pruning removes
//  2. Meta tags live in head, outside any content region
//  3. A single walk over the intact tree is simpler than two partial ones
func (e *Extractor) extractHTML(body []byte, contentType string, base *url.URL) *model.ExtractedContent {
	content := &model.ExtractedContent{}

	doc, err := parseHTML(body, contentType)
	if err != nil {
		return content
	}

	c := newHTMLCollector(base)
	c.walk(doc)

	content.Title = c.title
	content.Meta = c.meta
	content.Headings = c.headings
	content.Links = c.links
	content.Images = c.images

	pruneNoise(doc)

	main := findMainNode(doc)
	if main == nil {
		return content
	}

	content.MainText = visibleText(main)
	if rendered := renderNode(main); rendered != "" {
		if markdown, err := e.converter.ConvertString(rendered); err == nil {
			content.Markdown = strings.TrimSpace(markdown)
		}
	}

	return content
}

// parseHTML decodes the body to UTF-8 based on the declared content type
// and in-document charset hints, then parses it. The parser implements
// HTML5 error recovery, so malformed markup still yields a tree.
func parseHTML(body []byte, contentType string) (*html.Node, error) {
	var r io.Reader = bytes.NewReader(body)
	if decoded, err := charset.NewReader(r, contentType); err == nil {
		r = decoded
	} else {
		r = bytes.NewReader(body)
	}
	return html.Parse(r)
}

// htmlCollector gathers page-level fields in one pass over the tree.
type htmlCollector struct {
	base *url.URL

	title    string
	meta     map[string]string
	headings []string
	links    []string
	images   []string

	seenLinks  map[string]bool
	seenImages map[string]bool
}

func newHTMLCollector(base *url.URL) *htmlCollector {
	return &htmlCollector{
		base:       base,
		meta:       make(map[string]string),
		headings:   make([]string, 0),
		links:      make([]string, 0),
		images:     make([]string, 0),
		seenLinks:  make(map[string]bool),
		seenImages: make(map[string]bool),
	}
}

func (c *htmlCollector) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		c.processElement(n)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.walk(child)
	}
}

func (c *htmlCollector) processElement(n *html.Node) {
	switch n.Data {
	case "title":
		if c.title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			c.title = strings.TrimSpace(n.FirstChild.Data)
		}

	case "h1", "h2", "h3", "h4", "h5", "h6":
		if text := visibleText(n); text != "" {
			c.headings = append(c.headings, text)
		}

	case "a":
		if href := getAttr(n, "href"); href != "" {
			c.addLink(resolveURL(c.base, href))
		}

	case "img":
		if src := getAttr(n, "src"); src != "" {
			c.addImage(resolveURL(c.base, src))
		}

	case "meta":
		name := getAttr(n, "name")
		if name == "" {
			// OpenGraph and Twitter cards use property
			name = getAttr(n, "property")
		}
		value := getAttr(n, "content")
		if name != "" && value != "" {
			key := strings.ToLower(name)
			if _, ok := c.meta[key]; !ok {
				c.meta[key] = value
			}
		}

	case "link":
		if href := getAttr(n, "href"); href != "" {
			rel := getAttr(n, "rel")
			if rel == "icon" || rel == "shortcut icon" {
				c.addImage(resolveURL(c.base, href))
			}
		}
	}
}

// addLink records a resolved hyperlink, keeping http/https targets only
// and preserving first-seen order.
func (c *htmlCollector) addLink(link string) {
	if link == "" || c.seenLinks[link] {
		return
	}
	u, err := url.Parse(link)
	if err != nil {
		return
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return
	}
	c.seenLinks[link] = true
	c.links = append(c.links, link)
}

func (c *htmlCollector) addImage(src string) {
	if src == "" || c.seenImages[src] {
		return
	}
	c.seenImages[src] = true
	c.images = append(c.images, src)
}

// resolveURL resolves href against base and filters out script, mail,
// phone, and fragment-only targets.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return ""
	}
	if strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return u.String()
	}
	return base.ResolveReference(u).String()
}

// pruneNoise strips boilerplate from the tree in place.
func pruneNoise(doc *html.Node) {
	removeElements(doc, noiseElements)
	removeByToken(doc, noiseTokens)
}

// removeElements removes every element whose tag name is in tags.
func removeElements(n *html.Node, tags []string) {
	tagSet := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tagSet[tag] = true
	}

	var toRemove []*html.Node
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.ElementNode && tagSet[node.Data] {
			toRemove = append(toRemove, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)

	for _, node := range toRemove {
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
	}
}

// removeByToken removes every element whose class tokens or id match one
// of the given tokens, case-insensitively.
func removeByToken(n *html.Node, tokens []string) {
	tokenSet := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		tokenSet[strings.ToLower(token)] = true
	}

	var toRemove []*html.Node
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.ElementNode && matchesToken(node, tokenSet) {
			toRemove = append(toRemove, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)

	for _, node := range toRemove {
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
	}
}

func matchesToken(n *html.Node, tokenSet map[string]bool) bool {
	for _, a := range n.Attr {
		switch a.Key {
		case "class":
			for _, c := range strings.Fields(strings.ToLower(a.Val)) {
				if tokenSet[c] {
					return true
				}
			}
		case "id":
			if tokenSet[strings.ToLower(strings.TrimSpace(a.Val))] {
				return true
			}
		}
	}
	return false
}

// findMainNode locates the main content region in priority order:
// article, main, [role=main], then the whole body.
func findMainNode(doc *html.Node) *html.Node {
	for _, selector := range mainSelectors {
		if n := findElement(doc, selector); n != nil {
			return n
		}
	}
	return findElement(doc, "body")
}

// findElement finds the first element matching a tag name or a simple
// [attr=value] selector, in document order.
func findElement(n *html.Node, selector string) *html.Node {
	var result *html.Node
	var find func(*html.Node)
	find = func(node *html.Node) {
		if result != nil {
			return
		}
		if node.Type == html.ElementNode && matchesSelector(node, selector) {
			result = node
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(n)
	return result
}

func matchesSelector(n *html.Node, selector string) bool {
	if strings.HasPrefix(selector, "[") && strings.HasSuffix(selector, "]") {
		attr := strings.TrimSuffix(strings.TrimPrefix(selector, "["), "]")
		parts := strings.SplitN(attr, "=", 2)
		if len(parts) != 2 {
			return false
		}
		for _, a := range n.Attr {
			if a.Key == parts[0] && a.Val == parts[1] {
				return true
			}
		}
		return false
	}
	return n.Data == selector
}

// visibleText concatenates the text nodes under n with single spaces,
// skipping elements that never render.
func visibleText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			switch node.Data {
			case "script", "style", "noscript", "template", "iframe":
				return
			}
		}
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteString(" ")
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.Join(strings.Fields(sb.String()), " ")
}

// renderNode renders a node and its children back to an HTML string.
func renderNode(n *html.Node) string {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return ""
	}
	return sb.String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
