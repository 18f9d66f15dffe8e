package adapters

import (
	"golang.org/x/net/html"
)

// minParagraph is the shortest <p> text treated as prose
const minParagraph = 40

// GenericAdapter is the fallback adapter for unknown domains. It prefers
// paragraphs inside <article> or <main> and falls back to all visible text.
type GenericAdapter struct {
	BaseAdapter
}

// NewGenericAdapter creates a new generic adapter
func NewGenericAdapter() *GenericAdapter {
	return &GenericAdapter{}
}

// Name returns the adapter name
func (a *GenericAdapter) Name() string {
	return "generic"
}

// CanHandle always returns true (fallback adapter)
func (a *GenericAdapter) CanHandle(url string, contentType string) bool {
	return true
}

// ReportText returns article paragraphs, or the visible page text when there are none
func (a *GenericAdapter) ReportText(doc *html.Node, url string) (string, error) {
	content := a.FindFirst(doc, func(n *html.Node) bool {
		return isElement("article", "main")(n) || a.GetAttribute(n, "role") == "main"
	})
	if content != nil {
		if text := joinParagraphs(a.Paragraphs(content, minParagraph)); text != "" {
			return text, nil
		}
	}

	if text := joinParagraphs(a.Paragraphs(doc, minParagraph)); text != "" {
		return text, nil
	}

	body := a.FindFirst(doc, isElement("body"))
	if body == nil {
		body = doc
	}
	if text := a.ExtractText(body); text != "" {
		return text, nil
	}
	return "", ErrNoText
}
