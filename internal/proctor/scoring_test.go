package proctor

import (
	"testing"
	"time"

	"github.com/interview-master/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_MCQExactMatchCaseSensitive(t *testing.T) {
	questions := []model.Question{
		mcqQuestion("Q1", "B", "A", "B", "C"),
		mcqQuestion("Q2", "B", "A", "B", "C"),
	}

	result := Score(questions, map[int]string{0: "B", 1: "b"}, time.Minute, model.ReasonSubmitted)
	assert.Equal(t, 1, result.CorrectCount)
}

func TestScore_TextKeywordMajority(t *testing.T) {
	questions := []model.Question{textQuestion("Q1", "recursion", "stack")}

	// One of two keywords present meets the 50% bar.
	result := Score(questions, map[int]string{0: "it uses a stack"}, time.Minute, model.ReasonSubmitted)
	assert.Equal(t, 1, result.CorrectCount)

	result = Score(questions, map[int]string{0: "an iterative approach"}, time.Minute, model.ReasonSubmitted)
	assert.Equal(t, 0, result.CorrectCount)
}

func TestScore_TextMatchingIsCaseInsensitive(t *testing.T) {
	questions := []model.Question{textQuestion("Q1", "Recursion")}

	result := Score(questions, map[int]string{0: "RECURSION terminates on a base case"}, time.Minute, model.ReasonSubmitted)
	assert.Equal(t, 1, result.CorrectCount)
}

func TestScore_TextWithoutKeywordsNeverCorrect(t *testing.T) {
	questions := []model.Question{textQuestion("Q1")}

	result := Score(questions, map[int]string{0: "anything"}, time.Minute, model.ReasonSubmitted)
	assert.Equal(t, 0, result.CorrectCount)
	assert.Equal(t, 0, result.AccuracyPercent)
}

func TestScore_AccuracyAndCreditsRounding(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		correct  int
		accuracy int
		credits  int
	}{
		{"one of three", 3, 1, 33, 67},
		{"two of three", 3, 2, 67, 133},
		{"one of two", 2, 1, 50, 100},
		{"all correct", 4, 4, 100, 200},
		{"none correct", 4, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions := make([]model.Question, tt.total)
			answers := make(map[int]string, tt.correct)
			for i := range questions {
				questions[i] = mcqQuestion("Q", "A", "A", "B")
				if i < tt.correct {
					answers[i] = "A"
				}
			}

			result := Score(questions, answers, time.Minute, model.ReasonSubmitted)
			assert.Equal(t, tt.accuracy, result.AccuracyPercent)
			assert.Equal(t, tt.credits, result.CreditsEarned)
		})
	}
}

func TestScore_UnansweredQuestionsCountAgainst(t *testing.T) {
	questions := []model.Question{
		mcqQuestion("Q1", "A", "A", "B"),
		mcqQuestion("Q2", "A", "A", "B"),
		mcqQuestion("Q3", "A", "A", "B"),
		mcqQuestion("Q4", "A", "A", "B"),
		mcqQuestion("Q5", "A", "A", "B"),
	}

	result := Score(questions, map[int]string{0: "A", 1: "A"}, 30*time.Minute, model.ReasonTimeExpired)
	require.Equal(t, 2, result.CorrectCount)
	assert.Equal(t, 5, result.TotalQuestions)
	assert.Equal(t, 40, result.AccuracyPercent)
	assert.Equal(t, 80, result.CreditsEarned)
	assert.Equal(t, model.ReasonTimeExpired, result.Reason)
	assert.Equal(t, 1800, result.ElapsedSeconds)
}

func TestScore_EmptyQuestionListYieldsZeroes(t *testing.T) {
	result := Score(nil, nil, 0, model.ReasonSubmitted)
	assert.Equal(t, 0, result.TotalQuestions)
	assert.Equal(t, 0, result.AccuracyPercent)
	assert.Equal(t, 0, result.CreditsEarned)
}
