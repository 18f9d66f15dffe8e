// Package nlp provides lightweight English text analysis for accident reports:
// tokenization with byte offsets, rule-based part-of-speech tagging, entity
// recognition and noun chunking. It is deterministic and has no model files.
package nlp

// Doc is an analyzed text
type Doc struct {
	Text     string
	Tokens   []Token
	Entities []Entity
	Chunks   []Chunk

	chunkOf []int // token index -> chunk index, -1 outside chunks
}

// Analyze runs the full analysis over text
func Analyze(text string) *Doc {
	tokens := Tokenize(text)
	Tag(tokens)
	entities := Recognize(text, tokens)
	chunks := NounChunks(text, tokens)

	chunkOf := make([]int, len(tokens))
	for i := range chunkOf {
		chunkOf[i] = -1
	}
	for ci, c := range chunks {
		for t := c.TokenStart; t < c.TokenEnd; t++ {
			chunkOf[t] = ci
		}
	}

	return &Doc{
		Text:     text,
		Tokens:   tokens,
		Entities: entities,
		Chunks:   chunks,
		chunkOf:  chunkOf,
	}
}

// ChunkFor returns the text of the noun chunk containing token i, or the token text itself
func (d *Doc) ChunkFor(i int) string {
	if i < 0 || i >= len(d.Tokens) {
		return ""
	}
	if ci := d.chunkOf[i]; ci >= 0 {
		return d.Chunks[ci].Text
	}
	return d.Tokens[i].Text
}

// ChunkAt returns the chunk containing token i
func (d *Doc) ChunkAt(i int) (Chunk, bool) {
	if i < 0 || i >= len(d.Tokens) || d.chunkOf[i] < 0 {
		return Chunk{}, false
	}
	return d.Chunks[d.chunkOf[i]], true
}

// Span returns the source text covering tokens [start, end)
func (d *Doc) Span(start, end int) string {
	if start < 0 || end > len(d.Tokens) || start >= end {
		return ""
	}
	return d.Text[d.Tokens[start].Start:d.Tokens[end-1].End]
}

// EntitiesWithLabel returns entities carrying any of the given labels
func (d *Doc) EntitiesWithLabel(labels ...string) []Entity {
	var out []Entity
	for _, e := range d.Entities {
		for _, l := range labels {
			if e.Label == l {
				out = append(out, e)
				break
			}
		}
	}
	return out
}
