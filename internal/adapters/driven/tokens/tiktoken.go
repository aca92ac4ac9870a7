// Package tokens provides token counting backed by the tiktoken BPE
// vocabularies, with a character-based estimate as fallback.
package tokens

import (
	"github.com/pkoukk/tiktoken-go"

	"github.com/quarry-labs/quarry/internal/core/ports/driven"
	"github.com/quarry-labs/quarry/internal/logger"
)

// Ensure Counter implements the interface.
var _ driven.TokenCounter = (*Counter)(nil)

// estimateCharsPerToken is the rough ratio used when no tokeniser is
// available for the model.
const estimateCharsPerToken = 4

// Counter counts model tokens for prompt budgeting.
type Counter struct {
	encoding *tiktoken.Tiktoken
}

// NewForModel creates a counter for the given model name. Unknown
// models fall back to a character-count estimate rather than failing:
// budgeting slightly wrong beats not budgeting at all.
func NewForModel(model string) *Counter {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		logger.Debug("no tokeniser for model %s, estimating token counts: %v", model, err)
		return &Counter{}
	}
	return &Counter{encoding: encoding}
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	if c.encoding == nil {
		return (len(text) + estimateCharsPerToken - 1) / estimateCharsPerToken
	}
	return len(c.encoding.Encode(text, nil, nil))
}
