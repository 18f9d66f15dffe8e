package nlp

import (
	"regexp"
	"sort"
	"strconv"
)

// Entity labels
const (
	LabelDate   = "DATE"
	LabelTime   = "TIME"
	LabelPerson = "PERSON"
	LabelOrg    = "ORG"
	LabelFac    = "FAC"
	LabelLoc    = "LOC"
	LabelGPE    = "GPE"
)

// Entity is a labeled token span
type Entity struct {
	Text       string `json:"text"`
	Label      string `json:"label"`
	Start      int    `json:"start"`       // Byte offset
	End        int    `json:"end"`         // Byte offset
	TokenStart int    `json:"token_start"` // First token index
	TokenEnd   int    `json:"token_end"`   // One past the last token index
}

var clockPattern = regexp.MustCompile(`^\d{1,2}[:.]\d{2}$`)

type span struct {
	start, end int
	label      string
}

// Recognize finds named entities in tagged tokens, sets Token.EntType and
// returns the entities ordered by position. Rules run in priority order and
// a token belongs to at most one entity.
func Recognize(text string, tokens []Token) []Entity {
	taken := make([]bool, len(tokens))
	var spans []span

	claim := func(s span) {
		if s.start < 0 || s.end > len(tokens) || s.start >= s.end {
			return
		}
		for i := s.start; i < s.end; i++ {
			if taken[i] {
				return
			}
		}
		for i := s.start; i < s.end; i++ {
			taken[i] = true
		}
		spans = append(spans, s)
	}

	for _, rule := range []func([]Token) []span{
		clockTimes,
		durations,
		calendarDates,
		persons,
	} {
		for _, s := range rule(tokens) {
			claim(s)
		}
	}

	// Capitalized runs: organizations, places, then bare names after locative prepositions
	for _, run := range capitalizedRuns(tokens, taken) {
		if s, ok := classifyRun(tokens, run); ok {
			claim(s)
		}
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	entities := make([]Entity, 0, len(spans))
	for _, s := range spans {
		for i := s.start; i < s.end; i++ {
			tokens[i].EntType = s.label
		}
		start, end := tokens[s.start].Start, tokens[s.end-1].End
		entities = append(entities, Entity{
			Text:       text[start:end],
			Label:      s.label,
			Start:      start,
			End:        end,
			TokenStart: s.start,
			TokenEnd:   s.end,
		})
	}
	return entities
}

// clockTimes: "3:00 AM", "0815 hrs", "3 PM"
func clockTimes(tokens []Token) []span {
	var spans []span
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		isClock := clockPattern.MatchString(tok.Text)
		hasMeridiem := i+1 < len(tokens) && meridiems[tokens[i+1].Lower]
		if !isClock && !(tok.POS == PosNum && hasMeridiem && isAllDigits(tok.Text)) {
			continue
		}
		end := i + 1
		if hasMeridiem {
			end++
		}
		spans = append(spans, span{i, end, LabelTime})
		i = end - 1
	}
	return spans
}

// durations: "six days" (DATE), "12 hours" (TIME)
func durations(tokens []Token) []span {
	var spans []span
	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i].POS != PosNum {
			continue
		}
		next := tokens[i+1].Lower
		switch {
		case dateUnits[next]:
			spans = append(spans, span{i, i + 2, LabelDate})
		case timeUnits[next]:
			spans = append(spans, span{i, i + 2, LabelTime})
		}
	}
	return spans
}

// calendarDates: "March 23, 2021", "23 March 2021", "Monday", "Monday night",
// "yesterday morning", "last night", "2021"
func calendarDates(tokens []Token) []span {
	var spans []span
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case tok.POS == PosPropn && months[tok.Lower]:
			start, end := i, i+1
			if i > 0 && isDayNumber(tokens[i-1].Text) {
				start = i - 1
			}
			if end < len(tokens) && isDayNumber(tokens[end].Text) {
				end++
			}
			if end+1 < len(tokens) && tokens[end].Text == "," && isYear(tokens[end+1].Text) {
				end += 2
			} else if end < len(tokens) && isYear(tokens[end].Text) {
				end++
			}
			spans = append(spans, span{start, end, LabelDate})
			i = end - 1

		case weekdays[tok.Lower] || relativeDays[tok.Lower]:
			if i+1 < len(tokens) && dayParts[tokens[i+1].Lower] {
				spans = append(spans, span{i, i + 2, LabelTime})
				i++
				continue
			}
			spans = append(spans, span{i, i + 1, LabelDate})

		case (tok.Lower == "last" || tok.Lower == "this" || tok.Lower == "early" || tok.Lower == "late") &&
			i+1 < len(tokens) && dayParts[tokens[i+1].Lower]:
			spans = append(spans, span{i, i + 2, LabelTime})
			i++

		case isYear(tok.Text):
			spans = append(spans, span{i, i + 1, LabelDate})
		}
	}
	return spans
}

// persons: "Captain John Smith", "Capt. Lee"
func persons(tokens []Token) []span {
	var spans []span
	for i := 0; i < len(tokens); i++ {
		if !personTitles[tokens[i].Lower] || !tokens[i].IsCapitalized() {
			continue
		}
		j := i + 1
		if j < len(tokens) && tokens[j].Text == "." {
			j++
		}
		end := j
		for end < len(tokens) && tokens[end].IsWord() && tokens[end].IsCapitalized() && !(end > j && tokens[end].SentStart) {
			end++
		}
		if end > j {
			spans = append(spans, span{j, end, LabelPerson})
			i = end - 1
		}
	}
	return spans
}

// capitalizedRuns returns [start, end) runs of untaken proper nouns. "of" may
// join two capitalized parts: "Strait of Malacca".
func capitalizedRuns(tokens []Token, taken []bool) [][2]int {
	var runs [][2]int
	inRun := func(i int) bool {
		return i < len(tokens) && !taken[i] && tokens[i].POS == PosPropn && !vesselPrefixes[tokens[i].Lower]
	}

	for i := 0; i < len(tokens); i++ {
		if !inRun(i) {
			continue
		}
		end := i + 1
		for {
			if inRun(end) && !tokens[end].SentStart {
				end++
				continue
			}
			if end+1 < len(tokens) && tokens[end].Lower == "of" && inRun(end+1) {
				end += 2
				continue
			}
			break
		}
		runs = append(runs, [2]int{i, end})
		i = end - 1
	}
	return runs
}

func classifyRun(tokens []Token, run [2]int) (span, bool) {
	start, end := run[0], run[1]
	last := tokens[end-1].Lower
	first := tokens[start].Lower

	switch {
	case orgSuffixes[last]:
		return span{start, end, LabelOrg}, true
	case facilitySuffixes[last]:
		return span{start, end, LabelFac}, true
	case geoSuffixes[last] || geoSuffixes[first] && end-start > 1:
		return span{start, end, LabelLoc}, true
	}

	// Lowercase place noun right after the run: "Sydney harbor"
	if end < len(tokens) && (geoSuffixes[tokens[end].Lower] || facilitySuffixes[tokens[end].Lower]) {
		return span{start, end, LabelGPE}, true
	}

	// Bare name after a locative preposition, optionally through "the"
	p := start - 1
	if p >= 0 && tokens[p].POS == PosDet {
		p--
	}
	if p >= 0 && locativePrepositions[tokens[p].Lower] && !precededByVesselWord(tokens, start) {
		return span{start, end, LabelGPE}, true
	}
	return span{}, false
}

func precededByVesselWord(tokens []Token, i int) bool {
	return i > 0 && vesselPrefixes[tokens[i-1].Lower]
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isDayNumber(s string) bool {
	s = trimOrdinal(s)
	if !isAllDigits(s) || len(s) > 2 {
		return false
	}
	n, _ := strconv.Atoi(s)
	return n >= 1 && n <= 31
}

func trimOrdinal(s string) string {
	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		if len(s) > len(suffix) && s[len(s)-len(suffix):] == suffix {
			return s[:len(s)-len(suffix)]
		}
	}
	return s
}

func isYear(s string) bool {
	if len(s) != 4 || !isAllDigits(s) {
		return false
	}
	n, _ := strconv.Atoi(s)
	return n >= 1800 && n <= 2099
}
