package domain

// Reference is a citation attached to an answer, surfaced
// independently of the generated text.
type Reference struct {
	// Source is the provenance label of the matched chunk.
	Source string

	// Score is the similarity score of the match.
	Score float64
}

// Answer is the result of the ask operation: the composed answer plus
// the references it was grounded on.
type Answer struct {
	// Text is the generated answer.
	Text string

	// References lists the retrieved matches in rank order.
	References []Reference
}

// ReferencesFrom derives citations from retrieval matches,
// substituting the placeholder for missing source labels.
func ReferencesFrom(matches []Match) []Reference {
	refs := make([]Reference, len(matches))
	for i, m := range matches {
		source := m.Metadata.Source
		if source == "" {
			source = PlaceholderValue
		}
		refs[i] = Reference{Source: source, Score: m.Score}
	}
	return refs
}
