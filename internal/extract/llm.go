package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/groundex/internal/cache"
	"github.com/ppiankov/groundex/internal/llm"
	"github.com/ppiankov/groundex/internal/model"
	"github.com/ppiankov/groundex/internal/nlp"
)

// llmCacheTTL bounds how long a model answer is reused for the same text
const llmCacheTTL = 7 * 24 * time.Hour

// LLMExtractor asks a language model for an event and grounds its answer in the text.
// Trigger words and argument values the text does not contain are dropped.
type LLMExtractor struct {
	provider llm.Provider
	cache    cache.Cache
	roles    []string
	opts     Options
}

// NewLLMExtractor creates a model-backed extractor. c may be nil.
func NewLLMExtractor(provider llm.Provider, c cache.Cache, opts Options) *LLMExtractor {
	return &LLMExtractor{
		provider: provider,
		cache:    c,
		roles:    llm.DefaultRoles,
		opts:     opts,
	}
}

// Name returns the extractor name
func (e *LLMExtractor) Name() string {
	return "llm"
}

// Extract requests a raw event from the provider and normalizes it
func (e *LLMExtractor) Extract(ctx context.Context, text string) (*model.Event, error) {
	if err := checkText(text); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := e.rawEvent(ctx, text)
	if err != nil {
		return nil, err
	}

	triggers := locateTriggers(text, raw.Triggers)
	words := make([]string, 0, len(triggers))
	for _, t := range triggers {
		words = append(words, t.Word)
	}

	event := &model.Event{
		Text:         text,
		Extractor:    e.Name(),
		EventType:    normalizeEventType(raw.EventType, len(triggers) > 0),
		TriggerWords: words,
		Triggers:     triggers,
		Arguments:    e.arguments(text, raw.Arguments),
	}
	if e.opts.Features {
		event.Features = buildFeatures(nlp.Analyze(text))
	}
	return event, nil
}

func (e *LLMExtractor) rawEvent(ctx context.Context, text string) (*llm.RawEvent, error) {
	key := cache.ExtractionKey(e.Name()+":"+e.provider.Name(), text)
	if e.cache != nil {
		if data, ok := e.cache.Get(key); ok {
			var raw llm.RawEvent
			if err := json.Unmarshal(data, &raw); err == nil {
				return &raw, nil
			}
		}
	}

	resp, err := e.provider.ExtractEvent(ctx, llm.ExtractRequest{Text: text, Roles: e.roles})
	if err != nil {
		return nil, fmt.Errorf("%s extraction: %w", e.provider.Name(), err)
	}

	if e.cache != nil {
		if data, err := json.Marshal(resp.Event); err == nil {
			_ = e.cache.Set(key, data, llmCacheTTL)
		}
	}
	return &resp.Event, nil
}

// arguments keeps the requested roles and any extra role the model returned,
// with values rewritten to the casing found in the text
func (e *LLMExtractor) arguments(text string, raw map[string][]string) model.Arguments {
	args := model.NewArguments(e.roles...)
	for role, values := range raw {
		role = strings.ToLower(strings.TrimSpace(role))
		if role == "" {
			continue
		}
		if _, ok := args[role]; !ok {
			args[role] = []string{}
		}
		for _, v := range values {
			if loc := findFold(text, v); loc != nil {
				args.Add(role, text[loc[0]:loc[1]])
			}
		}
	}
	return args
}

// locateTriggers finds every whole-word occurrence of each reported trigger.
// Words are compared lowercased with collapsed whitespace, and each span is reported once.
func locateTriggers(text string, words []string) []model.Trigger {
	normalized := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.Join(strings.Fields(strings.ToLower(w)), " "); w != "" {
			normalized = append(normalized, w)
		}
	}

	type span struct{ start, end int }
	seen := make(map[span]bool)
	triggers := []model.Trigger{}
	for _, w := range uniqueStrings(normalized) {
		for _, loc := range wordPattern(w).FindAllStringIndex(text, -1) {
			if k := (span{loc[0], loc[1]}); !seen[k] {
				seen[k] = true
				triggers = append(triggers, model.Trigger{Word: w, Start: loc[0], End: loc[1]})
			}
		}
	}
	sort.SliceStable(triggers, func(i, j int) bool {
		return triggers[i].Start < triggers[j].Start
	})
	return triggers
}

func findFold(text, value string) []int {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return wordPattern(value).FindStringIndex(text)
}

// wordPattern matches phrase case-insensitively with flexible whitespace.
// Boundaries are only enforced on word characters so values like "M/V" still match.
func wordPattern(phrase string) *regexp.Regexp {
	parts := strings.Fields(phrase)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	expr := strings.Join(parts, `\s+`)
	if isWordByte(phrase[0]) {
		expr = `\b` + expr
	}
	if isWordByte(phrase[len(phrase)-1]) {
		expr += `\b`
	}
	return regexp.MustCompile(`(?i)` + expr)
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

// normalizeEventType maps a model label onto the known event types
func normalizeEventType(label string, triggered bool) model.EventType {
	if !triggered {
		return model.EventUnknown
	}

	label = strings.ToLower(strings.TrimSpace(label))
	label = strings.NewReplacer(" ", "_", "-", "_").Replace(label)
	switch t := model.EventType(label); t {
	case model.EventGrounding, model.EventCollision, model.EventStranding, model.EventAccident,
		model.EventCollisionGrounding, model.EventMarineAccident:
		return t
	case "aground", "ran_aground", "grounded":
		return model.EventGrounding
	default:
		return model.EventMarineAccident
	}
}
