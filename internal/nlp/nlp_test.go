package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const everGiven = "The cargo ship MV Ever Given ran aground in the Suez Canal on March 23, 2021, blocking the waterway for six days."

func texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func TestTokenize_OffsetsMatchSource(t *testing.T) {
	text := "The 200-meter vessel's hull struck rocks at 3:00 AM.  Salvage began."
	tokens := Tokenize(text)
	require.NotEmpty(t, tokens)

	for i, tok := range tokens {
		assert.Equal(t, i, tok.Index)
		assert.Equal(t, tok.Text, text[tok.Start:tok.End], "token %d", i)
	}

	assert.Equal(t, []string{
		"The", "200-meter", "vessel's", "hull", "struck", "rocks", "at", "3:00", "AM", ".",
		"Salvage", "began", ".",
	}, texts(tokens))
}

func TestTokenize_Sentences(t *testing.T) {
	tokens := Tokenize("Capt. Lee reported the grounding. The ship was refloated! Was anyone hurt? No.")

	assert.True(t, tokens[0].SentStart)
	assert.Equal(t, 0, tokens[2].Sentence, "abbreviation must not end the sentence")

	var starts []string
	for _, tok := range tokens {
		if tok.SentStart {
			starts = append(starts, tok.Text)
		}
	}
	assert.Equal(t, []string{"Capt", "The", "Was", "No"}, starts)
}

func TestTokenize_NumbersAndPunctuation(t *testing.T) {
	tokens := Tokenize("About 1,200 tonnes (2.5%) leaked, reportedly.")
	assert.Equal(t, []string{"About", "1,200", "tonnes", "(", "2.5", "%", ")", "leaked", ",", "reportedly", "."}, texts(tokens))
}

func TestTokenize_Empty(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("   \n\t "))
}

func TestTag_Basics(t *testing.T) {
	doc := Analyze(everGiven)

	tags := map[string]string{}
	for _, tok := range doc.Tokens {
		tags[tok.Text] = tok.POS
	}

	assert.Equal(t, PosDet, tags["The"])
	assert.Equal(t, PosNoun, tags["cargo"])
	assert.Equal(t, PosPropn, tags["MV"])
	assert.Equal(t, PosPropn, tags["Ever"])
	assert.Equal(t, PosPropn, tags["Given"])
	assert.Equal(t, PosVerb, tags["ran"])
	assert.Equal(t, PosAdv, tags["aground"])
	assert.Equal(t, PosAdp, tags["in"])
	assert.Equal(t, PosNum, tags["2021"])
	assert.Equal(t, PosNum, tags["six"])
	assert.Equal(t, PosPunct, tags[","])
}

func TestTag_NominalGerund(t *testing.T) {
	doc := Analyze("The grounding was caused by strong winds.")
	assert.Equal(t, PosNoun, doc.Tokens[1].POS)
	assert.Equal(t, PosAux, doc.Tokens[2].POS)
	assert.Equal(t, PosVerb, doc.Tokens[3].POS)
	assert.Equal(t, PosAdj, doc.Tokens[5].POS)
}

func TestTag_SentenceInitialProperNoun(t *testing.T) {
	doc := Analyze("Coast Guard dispatched emergency response teams.")
	assert.Equal(t, PosPropn, doc.Tokens[0].POS)
	assert.Equal(t, PosPropn, doc.Tokens[1].POS)
}

func TestRecognize_EverGiven(t *testing.T) {
	doc := Analyze(everGiven)

	var got [][2]string
	for _, e := range doc.Entities {
		got = append(got, [2]string{e.Text, e.Label})
		assert.Equal(t, e.Text, everGiven[e.Start:e.End])
	}

	assert.Equal(t, [][2]string{
		{"Suez Canal", LabelFac},
		{"March 23, 2021", LabelDate},
		{"six days", LabelDate},
	}, got)
}

func TestRecognize_Labels(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  string
		label string
	}{
		{"reef", "A bulk carrier grounded near the Great Barrier Reef yesterday.", "Great Barrier Reef", LabelLoc},
		{"strait", "It collided with a sandbar in Singapore Strait on Monday night.", "Singapore Strait", LabelLoc},
		{"weekday daypart", "It collided with a sandbar in Singapore Strait on Monday night.", "Monday night", LabelTime},
		{"relative day", "A bulk carrier grounded near the Great Barrier Reef yesterday.", "yesterday", LabelDate},
		{"clock", "The ferry beached at 3:00 AM during fog.", "3:00 AM", LabelTime},
		{"hours", "The vessel remained stuck for 12 hours.", "12 hours", LabelTime},
		{"org", "Then the Coast Guard dispatched a helicopter.", "Coast Guard", LabelOrg},
		{"person", "The master, Captain John Smith, was interviewed.", "John Smith", LabelPerson},
		{"gpe after preposition", "The ferry struck rocks near Sydney harbor entrance.", "Sydney", LabelGPE},
		{"gulf of", "The tanker grounded in the Gulf of Mexico.", "Gulf of Mexico", LabelLoc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Analyze(tt.text)
			found := false
			for _, e := range doc.Entities {
				if e.Text == tt.want {
					assert.Equal(t, tt.label, e.Label)
					found = true
				}
			}
			assert.True(t, found, "entity %q not found in %+v", tt.want, doc.Entities)
		})
	}
}

func TestRecognize_VesselNameIsNotPlace(t *testing.T) {
	doc := Analyze("The cargo ship MV Ever Given ran aground.")
	assert.Empty(t, doc.Entities)
}

func TestRecognize_NoOverlap(t *testing.T) {
	doc := Analyze("On Monday, March 1, 2021 at 10:30 PM the Coast Guard of Norway towed it to Bergen Port for 3 days.")
	owner := map[int]int{}
	for ei, e := range doc.Entities {
		for i := e.TokenStart; i < e.TokenEnd; i++ {
			prev, dup := owner[i]
			assert.False(t, dup, "token %d in entities %d and %d", i, prev, ei)
			owner[i] = ei
			assert.Equal(t, e.Label, doc.Tokens[i].EntType)
		}
	}
}

func TestNounChunks(t *testing.T) {
	doc := Analyze(everGiven)

	var chunks []string
	for _, c := range doc.Chunks {
		chunks = append(chunks, c.Text)
	}
	assert.Contains(t, chunks, "The cargo ship MV Ever Given")
	assert.Contains(t, chunks, "the Suez Canal")
	assert.Contains(t, chunks, "the waterway")

	// "Canal" is inside "the Suez Canal"
	for i, tok := range doc.Tokens {
		if tok.Text == "Canal" {
			assert.Equal(t, "the Suez Canal", doc.ChunkFor(i))
		}
		if tok.Text == "ran" {
			assert.Equal(t, "ran", doc.ChunkFor(i))
		}
	}
	assert.Equal(t, "", doc.ChunkFor(-1))
}

func TestDoc_SpanAndLabels(t *testing.T) {
	doc := Analyze(everGiven)
	assert.Equal(t, "MV Ever Given", doc.Span(3, 6))
	assert.Equal(t, "", doc.Span(4, 4))
	assert.Len(t, doc.EntitiesWithLabel(LabelDate), 2)
	assert.Len(t, doc.EntitiesWithLabel(LabelFac, LabelLoc), 1)
}
