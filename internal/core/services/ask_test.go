package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-labs/quarry/internal/core/domain"
)

func TestAskService_Ask_EmptyQuestion(t *testing.T) {
	service := NewAskService(&mockRetriever{}, &mockComposer{}, 3)

	_, err := service.Ask(context.Background(), "  \t\n ")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAskService_Ask_QuestionTooLong(t *testing.T) {
	service := NewAskService(&mockRetriever{}, &mockComposer{}, 3)

	_, err := service.Ask(context.Background(), strings.Repeat("q", MaxQuestionLength+1))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAskService_Ask_QuestionAtLimit(t *testing.T) {
	service := NewAskService(&mockRetriever{}, &mockComposer{}, 3)

	_, err := service.Ask(context.Background(), strings.Repeat("q", MaxQuestionLength))

	require.NoError(t, err)
}

func TestAskService_Ask_NoComposer(t *testing.T) {
	service := NewAskService(&mockRetriever{}, nil, 3)

	_, err := service.Ask(context.Background(), "what is quarry?")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrComposerUnavailable)
}

func TestAskService_Ask_RetrieveError(t *testing.T) {
	retriever := &mockRetriever{retrieveErr: errors.New("index down")}
	service := NewAskService(retriever, &mockComposer{}, 3)

	_, err := service.Ask(context.Background(), "what is quarry?")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "index down")
}

func TestAskService_Ask_ComposerError(t *testing.T) {
	composer := &mockComposer{generateErr: errors.New("model overloaded")}
	service := NewAskService(&mockRetriever{}, composer, 3)

	_, err := service.Ask(context.Background(), "what is quarry?")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestAskService_Ask_ReturnsAnswerWithReferences(t *testing.T) {
	matches := testMatches(2)
	retriever := &mockRetriever{bundle: &domain.ContextBundle{
		Prompt:  "assembled prompt",
		Matches: matches,
	}}
	composer := &mockComposer{answer: "Quarry is a question-answering service."}
	service := NewAskService(retriever, composer, 3)

	answer, err := service.Ask(context.Background(), "what is quarry?")

	require.NoError(t, err)
	assert.Equal(t, "Quarry is a question-answering service.", answer.Text)
	assert.Equal(t, domain.ReferencesFrom(matches), answer.References)
	// The composer receives the assembled prompt, not the raw question.
	assert.Equal(t, "assembled prompt", composer.lastPrompt)
}

func TestAskService_Ask_PassesConfiguredTopK(t *testing.T) {
	retriever := &mockRetriever{}
	service := NewAskService(retriever, &mockComposer{}, 7)

	_, err := service.Ask(context.Background(), "what is quarry?")

	require.NoError(t, err)
	assert.Equal(t, 7, retriever.lastTopK)
}

func TestNewAskService_DefaultTopK(t *testing.T) {
	retriever := &mockRetriever{}
	service := NewAskService(retriever, &mockComposer{}, 0)

	_, err := service.Ask(context.Background(), "what is quarry?")

	require.NoError(t, err)
	assert.Equal(t, DefaultTopK, retriever.lastTopK)
}
