package extract

import (
	"context"
	"strings"

	"github.com/ppiankov/groundex/internal/model"
	"github.com/ppiankov/groundex/internal/nlp"
)

const maxEventText = 200

// triggerVerbs anchor the structural pass
var triggerVerbs = map[string]bool{
	"grounded": true, "grounding": true, "struck": true, "hit": true, "collided": true,
	"beached": true, "stranded": true, "stuck": true, "ran": true,
}

// objectPrepositions introduce where a vessel grounded or what it struck
var objectPrepositions = map[string]bool{
	"in": true, "on": true, "near": true, "off": true, "at": true, "onto": true,
	"into": true, "against": true, "with": true, "upon": true, "outside": true,
	"along": true, "across": true,
}

// causeMarkers introduce a cause phrase
var causeMarkers = [][]string{
	{"due", "to"},
	{"caused", "by"},
	{"because", "of"},
	{"owing", "to"},
	{"resulting", "from"},
	{"attributed", "to"},
}

// shipStems mark an organization name as a vessel anywhere in the name ("Evergreen Shipping");
// vesselAbbrevs only as whole words
var (
	shipStems     = []string{"ship", "vessel", "tanker", "ferry"}
	vesselAbbrevs = []string{"mv", "mt", "ms"}
)

var articles = map[string]bool{"a": true, "an": true, "the": true}

// MatcherExtractor combines token rules, entities and a structural pass over
// trigger verbs. Its event types distinguish grounding after a collision.
type MatcherExtractor struct {
	matcher *Matcher
	opts    Options
}

// NewMatcherExtractor creates a matcher extractor with the default rules
func NewMatcherExtractor(opts Options) *MatcherExtractor {
	return &MatcherExtractor{matcher: DefaultMatcher(), opts: opts}
}

// Name returns the extractor name
func (e *MatcherExtractor) Name() string {
	return "matcher"
}

// matchResults collects matcher spans by label
type matchResults struct {
	triggers  []string
	positions []model.Trigger
	byLabel   map[string][]string
}

// structural holds phrases found around trigger verbs
type structural struct {
	vessels   []string
	locations []string
	causes    []string
}

// Extract runs the three passes over text and merges them
func (e *MatcherExtractor) Extract(ctx context.Context, text string) (*model.Event, error) {
	if err := checkText(text); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := nlp.Analyze(text)
	mr := e.matchPass(doc)
	st := structuralPass(doc)

	args := model.NewArguments(
		model.RoleVessel, model.RoleLocation, model.RoleTime, model.RoleCause,
		model.RoleDamage, model.RoleResponse, model.RolePerson,
	)

	args.Add(model.RoleVessel, mr.byLabel[LabelVessel]...)
	args.Add(model.RoleVessel, st.vessels...)
	for _, org := range doc.EntitiesWithLabel(nlp.LabelOrg) {
		if isVesselName(org.Text) {
			args.Add(model.RoleVessel, org.Text)
		}
	}

	args.Add(model.RoleLocation, mr.byLabel[LabelLocation]...)
	for _, ent := range doc.EntitiesWithLabel(nlp.LabelGPE, nlp.LabelLoc, nlp.LabelFac) {
		args.Add(model.RoleLocation, ent.Text)
	}
	args.Add(model.RoleLocation, st.locations...)

	for _, ent := range doc.EntitiesWithLabel(nlp.LabelDate, nlp.LabelTime) {
		args.Add(model.RoleTime, ent.Text)
	}

	args.Add(model.RoleCause, mr.byLabel[LabelCause]...)
	args.Add(model.RoleCause, st.causes...)
	args.Add(model.RoleDamage, mr.byLabel[LabelDamage]...)
	args.Add(model.RoleResponse, mr.byLabel[LabelResponse]...)

	for _, ent := range doc.EntitiesWithLabel(nlp.LabelPerson) {
		args.Add(model.RolePerson, ent.Text)
	}

	event := &model.Event{
		Text:         truncate(text, maxEventText),
		Extractor:    e.Name(),
		EventType:    MatcherEventType(mr.triggers),
		TriggerWords: uniqueStrings(mr.triggers),
		Triggers:     mr.positions,
		Arguments:    args,
	}
	if e.opts.Features {
		event.Features = buildFeatures(doc)
	}
	return event, nil
}

func (e *MatcherExtractor) matchPass(doc *nlp.Doc) matchResults {
	mr := matchResults{
		triggers:  []string{},
		positions: []model.Trigger{},
		byLabel:   make(map[string][]string),
	}

	matches := e.matcher.Match(doc.Tokens)
	for _, m := range matches {
		if m.Label != LabelTrigger {
			continue
		}
		word := tokenWords(doc, m.Start, m.End)
		mr.triggers = append(mr.triggers, word)
		mr.positions = append(mr.positions, model.Trigger{
			Word:  word,
			Start: doc.Tokens[m.Start].Start,
			End:   doc.Tokens[m.End-1].End,
		})
	}

	// Argument spans drop matches nested in a longer one: "MV Ever Given", not "MV Ever"
	for _, m := range LongestPerLabel(matches) {
		if m.Label == LabelTrigger {
			continue
		}
		mr.byLabel[m.Label] = append(mr.byLabel[m.Label], doc.Span(m.Start, m.End))
	}
	return mr
}

// structuralPass finds the subject and prepositional objects of trigger verbs, and cause phrases
func structuralPass(doc *nlp.Doc) structural {
	var st structural
	tokens := doc.Tokens

	for i, tok := range tokens {
		if triggerVerbs[tok.Lower] && tok.POS != nlp.PosNoun {
			if s, ok := subjectBefore(doc, i); ok {
				st.vessels = append(st.vessels, s)
			}
			st.locations = append(st.locations, objectsAfter(doc, i)...)
		}

		for _, marker := range causeMarkers {
			if tok.Lower != marker[0] || i+1 >= len(tokens) || tokens[i+1].Lower != marker[1] {
				continue
			}
			st.causes = append(st.causes, coordinatedChunks(doc, i+2)...)
		}
	}
	return st
}

// subjectBefore returns the noun chunk ending right before a verb, skipping auxiliaries and adverbs
func subjectBefore(doc *nlp.Doc, verb int) (string, bool) {
	j := verb - 1
	for j >= 0 && isVerbalFiller(doc.Tokens[j]) {
		j--
	}
	if j < 0 || doc.Tokens[j].Sentence != doc.Tokens[verb].Sentence {
		return "", false
	}
	if c, ok := doc.ChunkAt(j); ok && c.TokenEnd == j+1 {
		return chunkPhrase(doc, c), true
	}
	return "", false
}

// objectsAfter returns noun chunks introduced by prepositions following a verb:
// "grounded on a reef near the Great Barrier Reef"
func objectsAfter(doc *nlp.Doc, verb int) []string {
	var objects []string
	tokens := doc.Tokens

	j := verb + 1
	for j < len(tokens) && (tokens[j].POS == nlp.PosAdv || tokens[j].Lower == "itself") {
		j++
	}

	for n := 0; n < 3 && j+1 < len(tokens); n++ {
		if !objectPrepositions[tokens[j].Lower] {
			break
		}
		c, ok := doc.ChunkAt(j + 1)
		if !ok || c.TokenStart != j+1 || isTemporal(tokens[c.TokenEnd-1]) {
			break
		}
		objects = append(objects, chunkPhrase(doc, c))
		j = c.TokenEnd
	}
	return objects
}

// coordinatedChunks returns the chunk starting at i and any chunks joined to it by "and"/"or"/","
func coordinatedChunks(doc *nlp.Doc, i int) []string {
	var chunks []string
	for i < len(doc.Tokens) {
		c, ok := doc.ChunkAt(i)
		if !ok || c.TokenStart != i {
			break
		}
		chunks = append(chunks, chunkPhrase(doc, c))
		i = c.TokenEnd
		if i < len(doc.Tokens) && (doc.Tokens[i].POS == nlp.PosCConj || doc.Tokens[i].Text == ",") {
			i++
			continue
		}
		break
	}
	return chunks
}

// tokenWords joins the lowercase forms of tokens [start, end) with single spaces
func tokenWords(doc *nlp.Doc, start, end int) string {
	words := make([]string, 0, end-start)
	for _, t := range doc.Tokens[start:end] {
		words = append(words, t.Lower)
	}
	return strings.Join(words, " ")
}

// chunkPhrase returns a chunk's text without a leading article and with whitespace collapsed
func chunkPhrase(doc *nlp.Doc, c nlp.Chunk) string {
	start := c.TokenStart
	if c.TokenEnd-start > 1 && articles[doc.Tokens[start].Lower] {
		start++
	}
	return strings.Join(strings.Fields(doc.Span(start, c.TokenEnd)), " ")
}

func isVerbalFiller(t nlp.Token) bool {
	return t.POS == nlp.PosAux || t.POS == nlp.PosAdv || t.POS == nlp.PosPart
}

func isTemporal(t nlp.Token) bool {
	return t.EntType == nlp.LabelDate || t.EntType == nlp.LabelTime
}

// MatcherEventType classifies matched trigger words
func MatcherEventType(triggers []string) model.EventType {
	if len(triggers) == 0 {
		return model.EventUnknown
	}

	lowered := make([]string, len(triggers))
	for i, t := range triggers {
		lowered[i] = strings.Join(strings.Fields(strings.ToLower(t)), " ")
	}

	switch {
	case anyIn(lowered, "grounding", "grounded", "ran aground"):
		return model.EventGrounding
	case anyIn(lowered, "struck", "hit", "collided"):
		return model.EventCollisionGrounding
	case anyIn(lowered, "stranded", "beached", "stuck"):
		return model.EventStranding
	default:
		return model.EventMarineAccident
	}
}

func anyIn(values []string, candidates ...string) bool {
	for _, c := range candidates {
		if inList(values, c) {
			return true
		}
	}
	return false
}

func isVesselName(name string) bool {
	lower := strings.ToLower(name)
	for _, stem := range shipStems {
		if strings.Contains(lower, stem) {
			return true
		}
	}
	return hasAnyWord(name, vesselAbbrevs)
}

// hasAnyWord reports whether any whitespace-separated word of s equals a needle, ignoring case
func hasAnyWord(s string, needles []string) bool {
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if inList(needles, w) {
			return true
		}
	}
	return false
}
