// Package extract turns accident report text into structured grounding events.
package extract

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/ppiankov/groundex/internal/lexicon"
	"github.com/ppiankov/groundex/internal/model"
	"github.com/ppiankov/groundex/internal/nlp"
)

var (
	// ErrEmptyText is returned when the input has no non-space characters
	ErrEmptyText = errors.New("empty text")

	// ErrUnknownExtractor is returned by Registry.Get for unregistered names
	ErrUnknownExtractor = errors.New("unknown extractor")
)

// Extractor extracts one event from a report text
type Extractor interface {
	Name() string
	Extract(ctx context.Context, text string) (*model.Event, error)
}

// Options are shared by the built-in extractors
type Options struct {
	Features bool // Attach linguistic features to events
}

// Registry resolves extractors by name
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]Extractor
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{extractors: make(map[string]Extractor)}
}

// DefaultRegistry registers the pattern and matcher extractors
func DefaultRegistry(lex *lexicon.Lexicon, opts Options) *Registry {
	r := NewRegistry()
	r.Register(NewPatternExtractor(lex, opts))
	r.Register(NewMatcherExtractor(opts))
	return r
}

// Register adds or replaces an extractor
func (r *Registry) Register(e Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[e.Name()] = e
}

// Get returns the extractor registered under name
func (r *Registry) Get(name string) (Extractor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.extractors[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownExtractor, name, strings.Join(r.namesLocked(), ", "))
	}
	return e, nil
}

// Names returns registered extractor names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.extractors))
	for name := range r.extractors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// checkText rejects blank input
func checkText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	return nil
}

// buildFeatures summarizes the analysis behind an extraction
func buildFeatures(doc *nlp.Doc) *model.LinguisticFeatures {
	const limit = 10

	f := &model.LinguisticFeatures{
		POSTags:  []model.TaggedWord{},
		Chunks:   []string{},
		Entities: []model.EntityRef{},
	}
	for i, tok := range doc.Tokens {
		if i >= limit {
			break
		}
		f.POSTags = append(f.POSTags, model.TaggedWord{Text: tok.Text, POS: tok.POS})
	}
	for i, c := range doc.Chunks {
		if i >= limit {
			break
		}
		f.Chunks = append(f.Chunks, c.Text)
	}
	for _, e := range doc.Entities {
		f.Entities = append(f.Entities, model.EntityRef{Text: e.Text, Label: e.Label})
	}
	return f
}

// truncate shortens text to at most max bytes on a rune boundary and appends "..."
func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
