package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/quarry-labs/quarry/internal/core/domain"
	"github.com/quarry-labs/quarry/internal/core/ports/driven"
	"github.com/quarry-labs/quarry/internal/core/ports/driving"
	"github.com/quarry-labs/quarry/internal/logger"
)

// MaxQuestionLength caps how long a single question may be, in runes.
const MaxQuestionLength = 5000

// AskService answers questions grounded in previously indexed content.
type AskService struct {
	retriever driving.Retriever
	composer  driven.AnswerComposer
	topK      int
}

var _ driving.AskService = (*AskService)(nil)

// NewAskService creates the question-answering service. topK controls
// how many context chunks are retrieved per question; zero or negative
// selects the default.
func NewAskService(retriever driving.Retriever, composer driven.AnswerComposer, topK int) *AskService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &AskService{retriever: retriever, composer: composer, topK: topK}
}

// Ask retrieves context for the question and asks the composer to
// answer from it. References to the supporting sources are returned
// alongside the answer text.
func (s *AskService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question must not be empty", domain.ErrValidation)
	}
	if n := utf8.RuneCountInString(question); n > MaxQuestionLength {
		return nil, fmt.Errorf("%w: question is %d characters, maximum is %d", domain.ErrValidation, n, MaxQuestionLength)
	}
	if s.composer == nil {
		return nil, fmt.Errorf("%w: no answer model configured", domain.ErrComposerUnavailable)
	}

	bundle, err := s.retriever.Retrieve(ctx, question, s.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}
	logger.Debug("retrieved %d context chunks for question", len(bundle.Matches))

	text, err := s.composer.Generate(ctx, bundle.Prompt)
	if err != nil {
		return nil, fmt.Errorf("composing answer: %w", err)
	}

	return &domain.Answer{
		Text:       text,
		References: domain.ReferencesFrom(bundle.Matches),
	}, nil
}
