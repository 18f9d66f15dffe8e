package nlp

import (
	"strings"
	"unicode"
)

// Part-of-speech tags (Universal Dependencies names)
const (
	PosDet   = "DET"
	PosAdp   = "ADP"
	PosPron  = "PRON"
	PosCConj = "CCONJ"
	PosSConj = "SCONJ"
	PosAux   = "AUX"
	PosPart  = "PART"
	PosNum   = "NUM"
	PosPunct = "PUNCT"
	PosPropn = "PROPN"
	PosVerb  = "VERB"
	PosAdj   = "ADJ"
	PosAdv   = "ADV"
	PosNoun  = "NOUN"
)

// vesselPrefixes are written before ship names ("MV Ever Given")
var vesselPrefixes = setOf("mv", "mt", "ms", "ss", "fv", "hms", "uss", "rms", "lng", "lpg")

// Tag assigns part-of-speech tags in place
func Tag(tokens []Token) {
	for i := range tokens {
		tokens[i].POS = tagToken(tokens, i)
	}

	// Second pass: context corrections
	for i := range tokens {
		tok := &tokens[i]
		switch tok.POS {
		case PosVerb:
			// "the grounding", "a minor stranding"
			if i > 0 && isNominalModifier(tokens[i-1]) && !verbForms[tok.Lower] {
				tok.POS = PosNoun
			}
		case PosNoun:
			// Sentence-initial capital before a proper noun: "Coast Guard"
			if tok.SentStart && tok.IsCapitalized() && i+1 < len(tokens) && tokens[i+1].POS == PosPropn {
				tok.POS = PosPropn
			}
		}
	}
}

func isNominalModifier(t Token) bool {
	return t.POS == PosDet || t.POS == PosAdj || possessives[t.Lower]
}

func tagToken(tokens []Token, i int) string {
	tok := tokens[i]
	if !tok.IsWord() {
		return PosPunct
	}
	if containsDigit(tok.Text) {
		return PosNum
	}

	if tok.IsAllCaps() && vesselPrefixes[tok.Lower] {
		return PosPropn
	}
	if tok.IsCapitalized() && !tok.SentStart {
		return PosPropn
	}

	// Ambiguous month names stay auxiliaries or verbs unless next to a number
	if tok.IsCapitalized() && months[tok.Lower] && (!ambiguousMonths[tok.Lower] || nextToNumber(tokens, i)) {
		return PosPropn
	}

	return tagLower(tok.Lower)
}

// tagLower tags a word by its lowercase form alone
func tagLower(w string) string {
	switch {
	case determiners[w]:
		return PosDet
	case possessives[w]:
		return PosPron
	case adpositions[w]:
		return PosAdp
	case pronouns[w]:
		return PosPron
	case conjunctions[w]:
		return PosCConj
	case subordinators[w]:
		return PosSConj
	case auxiliaries[w]:
		return PosAux
	case particles[w]:
		return PosPart
	case numberWords[w]:
		return PosNum
	case adverbs[w]:
		return PosAdv
	case adjectives[w]:
		return PosAdj
	case verbForms[w]:
		return PosVerb
	case nounExceptions[w]:
		return PosNoun
	}

	switch {
	case strings.HasSuffix(w, "ly") && len(w) > 4:
		return PosAdv
	case strings.HasSuffix(w, "ed") && len(w) > 3:
		return PosVerb
	case strings.HasSuffix(w, "ing") && len(w) > 4:
		return PosVerb
	case hasAnySuffix(w, "ous", "ful", "ive", "able", "ible", "less", "ical", "ish"):
		return PosAdj
	}
	return PosNoun
}

func hasAnySuffix(w string, suffixes ...string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(w, s) && len(w) > len(s)+2 {
			return true
		}
	}
	return false
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func nextToNumber(tokens []Token, i int) bool {
	if i > 0 && containsDigit(tokens[i-1].Text) {
		return true
	}
	return i+1 < len(tokens) && containsDigit(tokens[i+1].Text)
}
