package nlp

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token is a word or punctuation mark with its byte span in the source text
type Token struct {
	Index     int    // Position in the document (0-based)
	Text      string // Exact source text
	Lower     string // Lowercased text
	Start     int    // Byte offset of the first byte
	End       int    // Byte offset after the last byte
	Sentence  int    // Sentence index (0-based)
	SentStart bool   // First token of its sentence
	POS       string // Part-of-speech tag
	EntType   string // Entity label, empty outside entities
}

// IsWord reports whether the token starts with a letter or digit
func (t Token) IsWord() bool {
	r, _ := utf8.DecodeRuneInString(t.Text)
	return isWordRune(r)
}

// IsCapitalized reports whether the token starts with an uppercase letter
func (t Token) IsCapitalized() bool {
	r, _ := utf8.DecodeRuneInString(t.Text)
	return unicode.IsUpper(r)
}

// IsAllCaps reports whether every letter in the token is uppercase (and there are at least two)
func (t Token) IsAllCaps() bool {
	letters := 0
	for _, r := range t.Text {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 2
}

// Tokenize splits text into word and punctuation tokens and assigns sentence indexes.
// Tokens are not tagged.
func Tokenize(text string) []Token {
	var tokens []Token
	sentence := 0
	newSentence := true

	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}

		start := i
		if isWordRune(r) {
			i = scanWord(text, i)
		} else {
			i += size
		}

		word := text[start:i]
		tok := Token{
			Index:     len(tokens),
			Text:      word,
			Lower:     strings.ToLower(word),
			Start:     start,
			End:       i,
			Sentence:  sentence,
			SentStart: newSentence,
		}
		tokens = append(tokens, tok)
		newSentence = false

		if isTerminator(word) && !followsAbbreviation(tokens) {
			sentence++
			newSentence = true
		}
	}

	return tokens
}

// scanWord returns the end offset of the word starting at i.
// Joiners stay inside a word only between word characters: "200-meter", "ship's", "3:00", "2.5".
func scanWord(text string, i int) int {
	prev := rune(0)
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if isWordRune(r) {
			prev = r
			i += size
			continue
		}
		if !isJoiner(r) || i+size >= len(text) {
			break
		}
		next, _ := utf8.DecodeRuneInString(text[i+size:])
		if !isWordRune(next) {
			break
		}
		switch r {
		case '.', ':', ',':
			// Only numeric joins: "2.5", "3:00", "1,200"
			if !unicode.IsDigit(prev) || !unicode.IsDigit(next) {
				return i
			}
		}
		prev = r
		i += size
	}
	return i
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isJoiner(r rune) bool {
	switch r {
	case '-', '\'', '’', '.', ':', ',':
		return true
	}
	return false
}

func isTerminator(s string) bool {
	return s == "." || s == "!" || s == "?"
}

// followsAbbreviation reports whether the last token is a "." closing an abbreviation such as "Capt."
func followsAbbreviation(tokens []Token) bool {
	n := len(tokens)
	if n < 2 || tokens[n-1].Text != "." {
		return false
	}
	prev := tokens[n-2]
	if prev.End != tokens[n-1].Start {
		return false
	}
	if abbreviations[prev.Lower] {
		return true
	}
	// Single capital initials: "J. Smith"
	return len(prev.Text) == 1 && prev.IsCapitalized()
}
