package proctor

import (
	"math"
	"strings"
	"time"

	"github.com/interview-master/backend/internal/model"
)

// Score grades a finished session. Pure function of the question list,
// the answer map and the elapsed time.
//
// MCQ: correct iff the stored answer equals the correct answer exactly,
// case-sensitive, with no normalization.
//
// TEXT: correct iff at least half of the question's keywords occur as
// case-insensitive substrings of the stored answer. An unanswered
// question matches nothing. A TEXT question with no keywords scores
// incorrect (0/0 is treated as no match, never a division error).
//
// Accuracy and credits round half away from zero (math.Round).
func Score(
	questions []model.Question,
	answers map[int]string,
	elapsed time.Duration,
	reason model.TerminationReason,
) *model.SessionResult {
	total := len(questions)
	correct := 0

	for i, q := range questions {
		answer, ok := answers[i]
		if !ok {
			continue
		}

		switch q.Type {
		case model.QuestionTypeMCQ:
			if answer == q.CorrectAnswer {
				correct++
			}
		case model.QuestionTypeText:
			if keywordRatio(q.Keywords, answer) >= 0.5 {
				correct++
			}
		}
	}

	result := &model.SessionResult{
		CorrectCount:   correct,
		TotalQuestions: total,
		ElapsedSeconds: int(elapsed / time.Second),
		Answers:        answers,
		Reason:         reason,
	}
	if total > 0 {
		fraction := float64(correct) / float64(total)
		result.AccuracyPercent = int(math.Round(fraction * 100))
		result.CreditsEarned = int(math.Round(fraction * 200))
	}
	return result
}

// keywordRatio returns the fraction of keywords found in the answer.
// Empty keyword sets yield 0, not NaN.
func keywordRatio(keywords []string, answer string) float64 {
	if len(keywords) == 0 {
		return 0
	}

	lowered := strings.ToLower(answer)
	matched := 0
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(kw)) {
			matched++
		}
	}
	return float64(matched) / float64(len(keywords))
}
