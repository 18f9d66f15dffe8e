package extract

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/groundex/internal/lexicon"
	"github.com/ppiankov/groundex/internal/model"
	"github.com/ppiankov/groundex/internal/nlp"
)

// PatternExtractor extracts events by whole-word keyword matching, enriched with entities
type PatternExtractor struct {
	lex      *lexicon.Lexicon
	opts     Options
	triggers []keywordPattern
	roles    map[string][]keywordPattern
}

type keywordPattern struct {
	keyword string
	re      *regexp.Regexp
}

// NewPatternExtractor compiles the lexicon into case-insensitive whole-word patterns
func NewPatternExtractor(lex *lexicon.Lexicon, opts Options) *PatternExtractor {
	if lex == nil {
		lex = lexicon.Default()
	}

	e := &PatternExtractor{
		lex:   lex,
		opts:  opts,
		roles: make(map[string][]keywordPattern, len(lex.Roles)),
	}
	for _, t := range lex.Triggers {
		e.triggers = append(e.triggers, compileKeyword(t))
	}
	for _, role := range lex.Roles {
		for _, k := range role.Keywords {
			e.roles[role.Name] = append(e.roles[role.Name], compileKeyword(k))
		}
	}
	return e
}

// compileKeyword builds `(?i)\bkeyword\b`; inner spaces match any whitespace run
func compileKeyword(keyword string) keywordPattern {
	parts := strings.Fields(keyword)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return keywordPattern{
		keyword: keyword,
		re:      regexp.MustCompile(`(?i)\b` + strings.Join(parts, `\s+`) + `\b`),
	}
}

// Name returns the extractor name
func (e *PatternExtractor) Name() string {
	return "pattern"
}

// Extract runs trigger, event type and argument extraction over text
func (e *PatternExtractor) Extract(ctx context.Context, text string) (*model.Event, error) {
	if err := checkText(text); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := nlp.Analyze(text)
	triggers := e.Triggers(text)

	words := make([]string, len(triggers))
	for i, t := range triggers {
		words[i] = t.Word
	}

	event := &model.Event{
		Text:         text,
		Extractor:    e.Name(),
		EventType:    e.EventType(triggers),
		TriggerWords: words,
		Triggers:     triggers,
		Arguments:    e.arguments(text, doc, triggers),
	}
	if e.opts.Features {
		event.Features = buildFeatures(doc)
	}
	return event, nil
}

// Triggers finds every whole-word occurrence of every trigger keyword.
// Results are grouped by keyword in lexicon order, then by position.
func (e *PatternExtractor) Triggers(text string) []model.Trigger {
	triggers := []model.Trigger{}
	for _, p := range e.triggers {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			triggers = append(triggers, model.Trigger{
				Word:  p.keyword,
				Start: loc[0],
				End:   loc[1],
			})
		}
	}
	return triggers
}

// EventType votes trigger words into event types. The type with most votes
// wins and ties go to the type listed first. No triggers yields unknown;
// triggers that vote for no type yield grounding.
func (e *PatternExtractor) EventType(triggers []model.Trigger) model.EventType {
	if len(triggers) == 0 {
		return model.EventUnknown
	}

	best, bestScore := "", 0
	for _, et := range e.lex.EventTypes {
		score := 0
		for _, t := range triggers {
			if containsFold(et.Keywords, t.Word) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = et.Name, score
		}
	}

	if bestScore == 0 {
		return model.EventGrounding
	}
	return model.EventType(best)
}

// Arguments extracts role values from text
func (e *PatternExtractor) Arguments(text string) model.Arguments {
	return e.arguments(text, nlp.Analyze(text), e.Triggers(text))
}

func (e *PatternExtractor) arguments(text string, doc *nlp.Doc, triggers []model.Trigger) model.Arguments {
	args := model.NewArguments(e.lex.RoleNames()...)

	// 1. Keyword matches, keeping the casing found in the text
	for _, role := range e.lex.Roles {
		for _, p := range e.roles[role.Name] {
			for _, loc := range p.re.FindAllStringIndex(text, -1) {
				args.Add(role.Name, text[loc[0]:loc[1]])
			}
		}
	}

	// 2. Entities
	for _, ent := range doc.Entities {
		switch ent.Label {
		case nlp.LabelGPE, nlp.LabelLoc, nlp.LabelFac:
			args.Add(model.RoleLocation, ent.Text)
		case nlp.LabelDate, nlp.LabelTime:
			args.Add(model.RoleTime, ent.Text)
		case nlp.LabelOrg:
			if isResponder(ent.Text) {
				args.Add(model.RoleResponse, ent.Text)
			} else {
				args.Add(model.RoleVessel, ent.Text)
			}
		}
	}

	// 3. Proper-noun subjects of trigger words
	for _, name := range triggerSubjects(doc, triggers) {
		args.Add(model.RoleVessel, name)
	}

	return args
}

// triggerSubjects returns proper-noun runs that directly precede a trigger,
// skipping auxiliaries and adverbs: "Blue Star collided", "MV Ever Given has grounded".
func triggerSubjects(doc *nlp.Doc, triggers []model.Trigger) []string {
	starts := make([]int, 0, len(triggers))
	for _, t := range triggers {
		starts = append(starts, t.Start)
	}
	sort.Ints(starts)

	var subjects []string
	for _, tokIdx := range tokensStartingAt(doc, starts) {
		j := tokIdx - 1
		for j >= 0 && (doc.Tokens[j].POS == nlp.PosAux || doc.Tokens[j].POS == nlp.PosAdv || doc.Tokens[j].POS == nlp.PosPart) {
			j--
		}
		end := j + 1
		for j >= 0 && doc.Tokens[j].POS == nlp.PosPropn && !isPlaceOrTime(doc.Tokens[j]) {
			j--
		}
		if start := j + 1; start < end {
			subjects = append(subjects, doc.Span(start, end))
		}
	}
	return subjects
}

// tokensStartingAt maps sorted byte offsets to indexes of tokens starting there
func tokensStartingAt(doc *nlp.Doc, offsets []int) []int {
	var out []int
	k := 0
	for i, tok := range doc.Tokens {
		for k < len(offsets) && offsets[k] < tok.Start {
			k++
		}
		if k < len(offsets) && offsets[k] == tok.Start {
			out = append(out, i)
		}
	}
	return out
}

func isPlaceOrTime(t nlp.Token) bool {
	switch t.EntType {
	case nlp.LabelGPE, nlp.LabelLoc, nlp.LabelFac, nlp.LabelDate, nlp.LabelTime:
		return true
	}
	return false
}

func isResponder(org string) bool {
	lower := strings.ToLower(org)
	for _, k := range []string{"guard", "rescue", "maritime"} {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
