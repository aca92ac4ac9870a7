// Package chunker splits document text into bounded-size overlapping
// segments suitable for embedding.
package chunker

import (
	"fmt"
	"strings"

	"github.com/quarry-labs/quarry/internal/core/domain"
)

// DefaultChunkSize is the default maximum chunk size in runes.
const DefaultChunkSize = 1000

// DefaultOverlap is the default overlap between adjacent chunks in runes.
const DefaultOverlap = 100

// Splitter splits text on semantic boundaries (paragraphs, then
// sentences) and falls back to hard rune cuts when a single unit
// exceeds the maximum size. Adjacent chunks share trailing/leading
// content so context is not lost at boundaries.
type Splitter struct {
	maxSize int
	overlap int
}

// New creates a splitter. maxSize > overlap >= 0 is required;
// violating it is a configuration error, not a runtime condition.
func New(maxSize, overlap int) (*Splitter, error) {
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap %d is negative", domain.ErrConfiguration, overlap)
	}
	if maxSize <= overlap {
		return nil, fmt.Errorf("%w: max chunk size %d must exceed overlap %d",
			domain.ErrConfiguration, maxSize, overlap)
	}
	return &Splitter{maxSize: maxSize, overlap: overlap}, nil
}

// MaxSize returns the maximum chunk size in runes.
func (s *Splitter) MaxSize() int {
	return s.maxSize
}

// Overlap returns the chunk overlap in runes.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split returns the chunks of text in source order. Empty or
// whitespace-only input yields no chunks.
func (s *Splitter) Split(text string) []string {
	units := s.units(text)
	if len(units) == 0 {
		return nil
	}

	var chunks []string
	var current []rune
	seedLen := 0 // leading runes of current carried over as overlap

	flush := func() {
		chunks = append(chunks, string(current))
		if s.overlap > 0 {
			// Seed the next chunk with the tail of this one.
			tail := current[len(current)-min(s.overlap, len(current)):]
			current = append([]rune(nil), tail...)
			seedLen = len(current)
		} else {
			current = nil
			seedLen = 0
		}
	}

	for _, unit := range units {
		runes := []rune(unit)
		joined := len(runes)
		if len(current) > 0 {
			joined += len(current) + 1
		}
		if joined > s.maxSize && len(current) > seedLen {
			flush()
		}
		if len(current) > 0 {
			current = append(current, ' ')
		}
		current = append(current, runes...)
	}
	if len(current) > seedLen {
		chunks = append(chunks, string(current))
	}

	return chunks
}

// Chunks splits a document and wraps the segments as domain chunks,
// assigning ordered indexes and the document title as source label.
func (s *Splitter) Chunks(doc domain.Document) []domain.Chunk {
	parts := s.Split(doc.Text)
	chunks := make([]domain.Chunk, len(parts))
	for i, part := range parts {
		chunks[i] = domain.Chunk{
			DocumentID:  doc.ID,
			Index:       i,
			Text:        part,
			SourceLabel: doc.Title,
		}
	}
	return chunks
}

// units breaks text into paragraph and sentence units no longer than
// the largest piece a chunk can absorb, hard-cutting oversized units.
func (s *Splitter) units(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	// A unit must fit in a fresh chunk that may already carry the
	// overlap tail of its predecessor plus a joining space.
	limit := s.maxSize
	if s.overlap > 0 {
		limit = s.maxSize - s.overlap - 1
		if limit < 1 {
			limit = 1
		}
	}

	var units []string
	for _, para := range splitParagraphs(text) {
		if len([]rune(para)) <= limit {
			units = append(units, para)
			continue
		}
		for _, sentence := range splitSentences(para) {
			runes := []rune(sentence)
			for len(runes) > limit {
				units = append(units, string(runes[:limit]))
				runes = runes[limit:]
			}
			if len(runes) > 0 {
				units = append(units, string(runes))
			}
		}
	}
	return units
}

// splitParagraphs splits on blank lines and trims each paragraph.
func splitParagraphs(text string) []string {
	var paras []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}

// splitSentences splits after terminal punctuation followed by
// whitespace. It is intentionally simple; abbreviations may split
// early, which only shifts a chunk boundary.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		// Absorb runs of terminal punctuation ("?!", "...").
		end := i + 1
		for end < len(runes) && isTerminal(runes[end]) {
			end++
		}
		if end == len(runes) || isSpace(runes[end]) {
			sentence := strings.TrimSpace(string(runes[start:end]))
			if sentence != "" {
				sentences = append(sentences, sentence)
			}
			start = end
			i = end - 1
		}
	}
	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
