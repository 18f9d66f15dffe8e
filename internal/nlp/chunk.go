package nlp

// Chunk is a base noun phrase: optional determiner, modifiers, nominal head
type Chunk struct {
	Text       string `json:"text"`
	TokenStart int    `json:"token_start"`
	TokenEnd   int    `json:"token_end"`
}

// NounChunks finds base noun phrases in tagged tokens
func NounChunks(text string, tokens []Token) []Chunk {
	var chunks []Chunk

	for i := 0; i < len(tokens); {
		start := i
		j := i
		if isChunkOpener(tokens[j]) {
			j++
		}

		head := -1
		for j < len(tokens) && isChunkBody(tokens[j]) && (j == start || !tokens[j].SentStart) && !temporalBoundary(tokens, j, start) {
			if isNominal(tokens[j]) {
				head = j
			}
			j++
		}

		if head < 0 {
			i++
			continue
		}

		chunks = append(chunks, Chunk{
			Text:       text[tokens[start].Start:tokens[head].End],
			TokenStart: start,
			TokenEnd:   head + 1,
		})
		i = head + 1
	}

	return chunks
}

func isChunkOpener(t Token) bool {
	return t.POS == PosDet || possessives[t.Lower]
}

func isChunkBody(t Token) bool {
	switch t.POS {
	case PosAdj, PosNum, PosNoun, PosPropn:
		return true
	}
	return false
}

func isNominal(t Token) bool {
	return t.POS == PosNoun || t.POS == PosPropn
}

// temporalBoundary reports whether a date or time entity starts or ends between tokens j-1 and j
func temporalBoundary(tokens []Token, j, start int) bool {
	if j == start {
		return false
	}
	prev, cur := tokens[j-1].EntType, tokens[j].EntType
	if prev == cur {
		return false
	}
	return isTemporalLabel(prev) || isTemporalLabel(cur)
}

func isTemporalLabel(label string) bool {
	return label == LabelDate || label == LabelTime
}
