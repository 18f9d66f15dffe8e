package extract

import (
	"sort"

	"github.com/ppiankov/groundex/internal/nlp"
)

// TokenSpec constrains one token. Every non-empty field must hold.
type TokenSpec struct {
	Lower      string   // Exact lowercase text
	LowerIn    []string // Lowercase text is one of
	NotLowerIn []string // Lowercase text is none of
	TextIn     []string // Exact text is one of
	POS        string   // Part-of-speech tag
	EntIn      []string // Entity label is one of
}

// Matches reports whether the token satisfies every constraint
func (s TokenSpec) Matches(t nlp.Token) bool {
	if s.Lower != "" && t.Lower != s.Lower {
		return false
	}
	if len(s.LowerIn) > 0 && !inList(s.LowerIn, t.Lower) {
		return false
	}
	if len(s.NotLowerIn) > 0 && inList(s.NotLowerIn, t.Lower) {
		return false
	}
	if len(s.TextIn) > 0 && !inList(s.TextIn, t.Text) {
		return false
	}
	if s.POS != "" && t.POS != s.POS {
		return false
	}
	if len(s.EntIn) > 0 && !inList(s.EntIn, t.EntType) {
		return false
	}
	return true
}

// Pattern is a sequence of token specs matched against consecutive tokens
type Pattern []TokenSpec

// Match is a labeled token span [Start, End)
type Match struct {
	Label string
	Start int
	End   int
}

// Matcher finds labeled token patterns
type Matcher struct {
	labels   []string
	patterns map[string][]Pattern
}

// NewMatcher creates an empty matcher
func NewMatcher() *Matcher {
	return &Matcher{patterns: make(map[string][]Pattern)}
}

// Add registers patterns under a label
func (m *Matcher) Add(label string, patterns ...Pattern) {
	if _, ok := m.patterns[label]; !ok {
		m.labels = append(m.labels, label)
	}
	m.patterns[label] = append(m.patterns[label], patterns...)
}

// Labels returns labels in registration order
func (m *Matcher) Labels() []string {
	return m.labels
}

// Match returns every match of every pattern, ordered by start, then end,
// then label registration order. A label reports a given span once.
func (m *Matcher) Match(tokens []nlp.Token) []Match {
	var matches []Match
	seen := make(map[Match]bool)
	rank := make(map[string]int, len(m.labels))

	for li, label := range m.labels {
		rank[label] = li
		for _, p := range m.patterns[label] {
			for start := 0; start+len(p) <= len(tokens); start++ {
				if !matchAt(p, tokens, start) {
					continue
				}
				mt := Match{Label: label, Start: start, End: start + len(p)}
				if !seen[mt] {
					seen[mt] = true
					matches = append(matches, mt)
				}
			}
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		return rank[a.Label] < rank[b.Label]
	})
	return matches
}

func matchAt(p Pattern, tokens []nlp.Token, start int) bool {
	if len(p) == 0 {
		return false
	}
	for i, c := range p {
		if !c.Matches(tokens[start+i]) {
			return false
		}
	}
	return true
}

// LongestPerLabel drops matches strictly contained in a longer match with the same label
func LongestPerLabel(matches []Match) []Match {
	out := make([]Match, 0, len(matches))
	for i, m := range matches {
		contained := false
		for j, o := range matches {
			if i == j || o.Label != m.Label {
				continue
			}
			if o.Start <= m.Start && m.End <= o.End && o.End-o.Start > m.End-m.Start {
				contained = true
				break
			}
		}
		if !contained {
			out = append(out, m)
		}
	}
	return out
}

func inList(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
