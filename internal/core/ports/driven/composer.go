package driven

import "context"

// AnswerComposer produces the final answer from an assembled prompt.
// It is an external collaborator: the pipeline treats it as an opaque
// generate(prompt) -> text function. Failure is fatal to the request;
// no retry policy is defined here.
//
// Implementations may include:
//   - OpenAI chat completions (gpt-4o, gpt-4o-mini)
type AnswerComposer interface {
	// Generate produces the answer text for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// InputBudget returns the maximum prompt size in tokens. The
	// context assembler truncates lowest-ranked matches to fit it.
	InputBudget() int

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
