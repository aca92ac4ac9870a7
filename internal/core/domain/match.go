package domain

import "fmt"

// PlaceholderValue substitutes missing metadata fields when rendering
// matches. Partial metadata corruption degrades display quality rather
// than breaking retrieval.
const PlaceholderValue = "unknown"

// Match is a single similarity search hit. Higher scores are more
// relevant. Matches are ordered by descending score, ties broken by
// lower chunk index, then lexicographic document ID.
type Match struct {
	// RecordID is the matched vector record.
	RecordID string

	// Score is the cosine similarity of the query and record vectors.
	Score float64

	// Metadata is the matched record's metadata.
	Metadata RecordMetadata
}

// RenderedMatch is a match formatted for prompt assembly and citation.
type RenderedMatch struct {
	// Rank is the 1-based position in the result list.
	Rank int

	// Score is the similarity score.
	Score float64

	// Text is the chunk content, or "unknown" when missing.
	Text string

	// Source is the provenance label, or "unknown" when missing.
	Source string
}

// Render formats the match at the given rank, substituting
// PlaceholderValue for missing metadata fields.
func (m Match) Render(rank int) RenderedMatch {
	text := m.Metadata.Text
	if text == "" {
		text = PlaceholderValue
	}
	source := m.Metadata.Source
	if source == "" {
		source = PlaceholderValue
	}
	return RenderedMatch{
		Rank:   rank,
		Score:  m.Score,
		Text:   text,
		Source: source,
	}
}

// String formats the rendered match as a prompt block.
func (r RenderedMatch) String() string {
	return fmt.Sprintf("[%d] (score %.3f, source: %s)\n%s", r.Rank, r.Score, r.Source, r.Text)
}

// ContextBundle is the output of retrieval: an assembled prompt plus
// the raw matches so the caller can surface citations independent of
// the generated answer text.
type ContextBundle struct {
	// Prompt is the instruction preamble, rendered matches and the
	// original question, bounded by the composer's input budget.
	Prompt string

	// Rendered are the matches that made it into the prompt, in rank
	// order. Lowest-ranked matches are dropped whole when the budget
	// would be exceeded, never truncated mid-match.
	Rendered []RenderedMatch

	// Matches are the raw similarity hits for citation purposes.
	Matches []Match
}
