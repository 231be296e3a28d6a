package extract

import (
	"bytes"
	"encoding/xml"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/nao1215/harvest/internal/model"
)

// rssFeed models the RSS 2.0 structure the extractor cares about.
type rssFeed struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title       string    `xml:"title"`
		Link        string    `xml:"link"`
		Description string    `xml:"description"`
		Items       []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	Enclosure   struct {
		URL  string `xml:"url,attr"`
		Type string `xml:"type,attr"`
	} `xml:"enclosure"`
}

// atomFeed models the Atom structure the extractor cares about.
type atomFeed struct {
	XMLName  xml.Name    `xml:"feed"`
	Title    string      `xml:"title"`
	Subtitle string      `xml:"subtitle"`
	Entries  []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string     `xml:"title"`
	Links     []atomLink `xml:"link"`
	Summary   string     `xml:"summary"`
	Content   string     `xml:"content"`
	Published string     `xml:"published"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

// extractFeed decodes an RSS or Atom feed into ExtractedContent.
// Each format is tried with a strict decode first, then a lenient one
// that tolerates bad entities and unclosed tags. A body that decodes
// as neither degrades to an empty result.
func (e *Extractor) extractFeed(body []byte, base *url.URL) *model.ExtractedContent {
	var rss rssFeed
	if err := decodeFeedXML(body, true, &rss); err != nil {
		rss = rssFeed{}
		if err := decodeFeedXML(body, false, &rss); err != nil {
			rss = rssFeed{}
		}
	}
	if rss.Channel.Title != "" || len(rss.Channel.Items) > 0 {
		return contentFromRSS(&rss, base)
	}

	var atom atomFeed
	if err := decodeFeedXML(body, true, &atom); err != nil {
		atom = atomFeed{}
		if err := decodeFeedXML(body, false, &atom); err != nil {
			atom = atomFeed{}
		}
	}
	if atom.Title != "" || len(atom.Entries) > 0 {
		return contentFromAtom(&atom, base)
	}

	return &model.ExtractedContent{}
}

// decodeFeedXML decodes body into v. Non-UTF-8 encodings declared in
// the XML prolog are handled in both modes; the lenient mode
// additionally accepts HTML entities and auto-closes HTML-style tags.
func decodeFeedXML(body []byte, strict bool, v any) error {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel
	if !strict {
		dec.Strict = false
		dec.AutoClose = xml.HTMLAutoClose
		dec.Entity = xml.HTMLEntity
	}
	return dec.Decode(v)
}

func contentFromRSS(feed *rssFeed, base *url.URL) *model.ExtractedContent {
	content := &model.ExtractedContent{
		Title: strings.TrimSpace(feed.Channel.Title),
		Meta:  make(map[string]string),
	}

	description := stripMarkup(feed.Channel.Description)
	if description != "" {
		content.Meta["description"] = description
	}

	seenLinks := make(map[string]bool)
	seenImages := make(map[string]bool)
	addFeedLink(content, seenLinks, base, feed.Channel.Link)

	parts := make([]string, 0, len(feed.Channel.Items)+1)
	if description != "" {
		parts = append(parts, description)
	}

	for _, item := range feed.Channel.Items {
		title := stripMarkup(item.Title)
		if title != "" {
			content.Headings = append(content.Headings, title)
			parts = append(parts, title)
		}
		if text := stripMarkup(item.Description); text != "" {
			parts = append(parts, text)
		}
		addFeedLink(content, seenLinks, base, item.Link)
		if item.Enclosure.URL != "" && strings.HasPrefix(item.Enclosure.Type, "image/") {
			if src := resolveURL(base, item.Enclosure.URL); src != "" && !seenImages[src] {
				seenImages[src] = true
				content.Images = append(content.Images, src)
			}
		}
	}

	content.MainText = strings.Join(parts, " ")
	return content
}

func contentFromAtom(feed *atomFeed, base *url.URL) *model.ExtractedContent {
	content := &model.ExtractedContent{
		Title: strings.TrimSpace(feed.Title),
		Meta:  make(map[string]string),
	}

	subtitle := stripMarkup(feed.Subtitle)
	if subtitle != "" {
		content.Meta["description"] = subtitle
	}

	seenLinks := make(map[string]bool)

	parts := make([]string, 0, len(feed.Entries)+1)
	if subtitle != "" {
		parts = append(parts, subtitle)
	}

	for _, entry := range feed.Entries {
		title := stripMarkup(entry.Title)
		if title != "" {
			content.Headings = append(content.Headings, title)
			parts = append(parts, title)
		}
		text := stripMarkup(entry.Summary)
		if text == "" {
			text = stripMarkup(entry.Content)
		}
		if text != "" {
			parts = append(parts, text)
		}
		addFeedLink(content, seenLinks, base, entryLink(entry))
	}

	content.MainText = strings.Join(parts, " ")
	return content
}

// entryLink picks the alternate link of an Atom entry, or the first
// link when no rel is set.
func entryLink(entry atomEntry) string {
	for _, l := range entry.Links {
		if l.Rel == "" || l.Rel == "alternate" {
			return l.Href
		}
	}
	if len(entry.Links) > 0 {
		return entry.Links[0].Href
	}
	return ""
}

// addFeedLink resolves and appends a feed link, keeping http/https
// targets only and preserving first-seen order.
func addFeedLink(content *model.ExtractedContent, seen map[string]bool, base *url.URL, raw string) {
	link := resolveURL(base, strings.TrimSpace(raw))
	if link == "" || seen[link] {
		return
	}
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return
	}
	seen[link] = true
	content.Links = append(content.Links, link)
}

// stripMarkup removes HTML tags and entities from feed text, which
// frequently embeds markup inside descriptions, and collapses the
// remaining whitespace.
func stripMarkup(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return visibleText(doc)
}
