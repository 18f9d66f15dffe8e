package adapters

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// ReportLink is a link on an index page that likely leads to an accident report
type ReportLink struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// reportKeywords mark a link as an accident report candidate
var reportKeywords = []string{
	"grounding", "grounded", "aground", "stranding", "accident", "casualty",
	"incident", "investigation", "report",
}

// ExtractReportLinks returns absolute http(s) links whose anchor text or URL
// mentions an accident keyword, de-duplicated in document order
func ExtractReportLinks(doc *html.Node, baseURL string) []ReportLink {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	var b BaseAdapter
	var links []ReportLink
	seen := make(map[string]bool)

	for _, a := range b.FindAll(doc, isElement("a")) {
		href := b.GetAttribute(a, "href")
		if href == "" {
			continue
		}

		resolved := resolveURL(base, href)
		if resolved == "" || seen[resolved] {
			continue
		}

		text := b.ExtractText(a)
		if !mentionsReport(text) && !mentionsReport(resolved) {
			continue
		}

		seen[resolved] = true
		links = append(links, ReportLink{URL: resolved, Text: text})
	}

	return links
}

func mentionsReport(s string) bool {
	lower := strings.ToLower(s)
	for _, k := range reportKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// resolveURL resolves href against base, dropping fragments and non-http(s) targets
func resolveURL(base *url.URL, href string) string {
	if strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""

	return resolved.String()
}
