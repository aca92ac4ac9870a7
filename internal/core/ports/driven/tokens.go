package driven

// TokenCounter reports how many model tokens a piece of text consumes.
// Implementations may approximate when an exact tokeniser for the
// configured model is unavailable.
type TokenCounter interface {
	// Count returns the number of tokens in text.
	Count(text string) int
}
