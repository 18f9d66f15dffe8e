package adapters

import (
	"strings"

	"golang.org/x/net/html"
)

// InvestigationAdapter extracts the narrative of marine accident investigation reports
type InvestigationAdapter struct {
	BaseAdapter
	narrativeKeywords []string
	domains           map[string]bool
}

// NewInvestigationAdapter creates a new investigation report adapter
func NewInvestigationAdapter() *InvestigationAdapter {
	return &InvestigationAdapter{
		narrativeKeywords: []string{
			"aground", "grounded", "grounding", "struck", "collided", "stranded",
			"vessel", "ship", "master", "crew", "bridge", "tide", "passage",
		},
		domains: map[string]bool{
			"gov.uk/maib-reports": true,
			"ntsb.gov":            true,
			"atsb.gov.au":         true,
			"tsb.gc.ca":           true,
			"mlit.go.jp/jtsb":     true,
			"dmaib.dk":            true,
			"safetyinvestigation": true,
		},
	}
}

// Name returns the adapter name
func (a *InvestigationAdapter) Name() string {
	return "investigation"
}

// CanHandle checks if this is an accident investigation board URL
func (a *InvestigationAdapter) CanHandle(rawURL string, contentType string) bool {
	lowerURL := strings.ToLower(rawURL)

	for domain := range a.domains {
		if strings.Contains(lowerURL, domain) {
			return true
		}
	}

	return strings.Contains(lowerURL, "/marine-accident") ||
		strings.Contains(lowerURL, "/marine/investigation") ||
		strings.Contains(lowerURL, "/maib")
}

// ReportText returns paragraphs of the main content that read like an accident narrative
func (a *InvestigationAdapter) ReportText(doc *html.Node, rawURL string) (string, error) {
	mainContent := a.FindFirst(doc, isElement("main"))
	if mainContent == nil {
		mainContent = a.FindFirst(doc, func(n *html.Node) bool {
			return isElement("article")(n) || a.GetAttribute(n, "role") == "main"
		})
	}
	if mainContent == nil {
		mainContent = doc
	}

	var narrative []string
	for _, p := range a.Paragraphs(mainContent, minParagraph) {
		lower := strings.ToLower(p)
		for _, keyword := range a.narrativeKeywords {
			if strings.Contains(lower, keyword) {
				narrative = append(narrative, p)
				break
			}
		}
	}

	text := joinParagraphs(narrative)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}
