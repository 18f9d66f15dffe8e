package adapters

import (
	"strings"

	"golang.org/x/net/html"
)

// WikipediaAdapter extracts accident narratives from Wikipedia articles
type WikipediaAdapter struct {
	BaseAdapter
	sectionKeywords []string
}

// NewWikipediaAdapter creates a new Wikipedia adapter
func NewWikipediaAdapter() *WikipediaAdapter {
	return &WikipediaAdapter{
		sectionKeywords: []string{
			"grounding", "incident", "accident", "collision", "sinking",
			"stranding", "refloat", "salvage", "investigation", "background",
		},
	}
}

// Name returns the adapter name
func (a *WikipediaAdapter) Name() string {
	return "wikipedia"
}

// CanHandle checks if this is a Wikipedia URL
func (a *WikipediaAdapter) CanHandle(rawURL string, contentType string) bool {
	return strings.Contains(rawURL, "wikipedia.org")
}

// ReportText returns the lead section followed by accident-related sections
func (a *WikipediaAdapter) ReportText(doc *html.Node, rawURL string) (string, error) {
	content := a.FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "div" &&
			(a.HasClass(n, "mw-parser-output") || a.GetAttribute(n, "id") == "mw-content-text")
	})
	if content == nil {
		content = doc
	}

	var paragraphs []string

	// Lead section (before first h2)
	paragraphs = append(paragraphs, a.leadParagraphs(content)...)

	// Sections whose heading names the event
	headers := a.FindAll(content, func(n *html.Node) bool {
		if !isElement("h2", "h3")(n) {
			return false
		}
		text := strings.ToLower(a.ExtractText(n))
		for _, k := range a.sectionKeywords {
			if strings.Contains(text, k) {
				return true
			}
		}
		return false
	})

	for _, header := range headers {
		paragraphs = append(paragraphs, a.sectionParagraphs(header)...)
	}

	text := joinParagraphs(paragraphs)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// leadParagraphs collects paragraphs before the first h2, skipping infoboxes and navboxes
func (a *WikipediaAdapter) leadParagraphs(content *html.Node) []string {
	var paragraphs []string

	var inLead = true
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if !inLead {
			return
		}

		if n.Type == html.ElementNode && n.Data == "h2" {
			inLead = false
			return
		}

		if n.Type == html.ElementNode && n.Data == "table" &&
			(a.HasClass(n, "infobox") || a.HasClass(n, "navbox")) {
			return
		}

		if n.Type == html.ElementNode && n.Data == "p" {
			if text := a.ExtractText(n); text != "" {
				paragraphs = append(paragraphs, text)
			}
			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(content)
	return paragraphs
}

// sectionParagraphs collects paragraphs after a header until the next h2/h3.
// Modern Wikipedia wraps headers in <div class="mw-heading">, so siblings are
// taken from the wrapper when present.
func (a *WikipediaAdapter) sectionParagraphs(header *html.Node) []string {
	start := header
	if p := header.Parent; p != nil && a.HasClass(p, "mw-heading") {
		start = p
	}

	var paragraphs []string
	for sibling := start.NextSibling; sibling != nil; sibling = sibling.NextSibling {
		if isElement("h2", "h3")(sibling) || a.HasClass(sibling, "mw-heading") {
			break
		}
		if isElement("p")(sibling) {
			if text := a.ExtractText(sibling); text != "" {
				paragraphs = append(paragraphs, text)
			}
		}
	}
	return paragraphs
}
