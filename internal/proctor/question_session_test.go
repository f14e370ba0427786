package proctor

import (
	"testing"

	"github.com/interview-master/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeQuestions() []model.Question {
	return []model.Question{
		mcqQuestion("Q1", "B", "A", "B", "C"),
		mcqQuestion("Q2", "A", "A", "B"),
		textQuestion("Q3", "recursion", "stack"),
	}
}

func TestQuestionSession_NextWalksToEndThenSignalsFinalize(t *testing.T) {
	s := newQuestionSession(threeQuestions())

	require.Equal(t, 0, s.Index())
	assert.False(t, s.Next("B"))
	assert.Equal(t, 1, s.Index())
	assert.False(t, s.Next("A"))
	assert.Equal(t, 2, s.Index())

	// Advancing past the final question is the submit signal.
	assert.True(t, s.Next("it uses a stack"))
	assert.Equal(t, 2, s.Index())

	got := s.snapshotAnswers()
	assert.Equal(t, map[int]string{0: "B", 1: "A", 2: "it uses a stack"}, got)
}

func TestQuestionSession_PreviousFloorsAtZero(t *testing.T) {
	s := newQuestionSession(threeQuestions())

	s.Previous("B")
	assert.Equal(t, 0, s.Index())

	s.Next("B")
	s.Previous("A")
	assert.Equal(t, 0, s.Index())

	// Both answers were captured on the way through.
	a0, _ := s.Answer(0)
	a1, _ := s.Answer(1)
	assert.Equal(t, "B", a0)
	assert.Equal(t, "A", a1)
}

func TestQuestionSession_RecordValidation(t *testing.T) {
	s := newQuestionSession(threeQuestions())

	assert.ErrorIs(t, s.Record(-1, "B"), ErrIndexOutOfRange)
	assert.ErrorIs(t, s.Record(3, "B"), ErrIndexOutOfRange)
	assert.ErrorIs(t, s.Record(0, "D"), ErrNotAnOption)

	require.NoError(t, s.Record(0, "  B  "))
	a, ok := s.Answer(0)
	require.True(t, ok)
	assert.Equal(t, "B", a)
}

func TestQuestionSession_BlankKeepsPriorAnswer(t *testing.T) {
	s := newQuestionSession(threeQuestions())

	require.NoError(t, s.Record(0, "B"))
	require.NoError(t, s.Record(0, "   "))

	a, ok := s.Answer(0)
	require.True(t, ok)
	assert.Equal(t, "B", a)

	// An index never answered stays unanswered after a blank record.
	require.NoError(t, s.Record(1, ""))
	_, ok = s.Answer(1)
	assert.False(t, ok)
}

func TestQuestionSession_OverwriteReplacesAnswer(t *testing.T) {
	s := newQuestionSession(threeQuestions())

	require.NoError(t, s.Record(0, "A"))
	require.NoError(t, s.Record(0, "C"))

	a, _ := s.Answer(0)
	assert.Equal(t, "C", a)
}

func TestQuestionSession_NextDropsInvalidMCQValue(t *testing.T) {
	s := newQuestionSession(threeQuestions())

	// Navigation always succeeds; an out-of-option value is discarded.
	assert.False(t, s.Next("not-an-option"))
	assert.Equal(t, 1, s.Index())
	_, ok := s.Answer(0)
	assert.False(t, ok)
}
