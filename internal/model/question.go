package model

import "github.com/google/uuid"

// QuestionType distinguishes multiple-choice from free-text questions.
type QuestionType string

const (
	QuestionTypeMCQ  QuestionType = "MCQ"
	QuestionTypeText QuestionType = "TEXT"
)

// Question represents a single interview question. Once loaded into a
// session the record is never mutated.
type Question struct {
	ID         uuid.UUID    `json:"id"`
	Domain     string       `json:"domain"`
	Difficulty string       `json:"difficulty"`
	Text       string       `json:"text"`
	Type       QuestionType `json:"type"`
	// Options is populated for MCQ questions only.
	Options []string `json:"options,omitempty"`
	// CorrectAnswer (MCQ) and Keywords (TEXT) are grading material and
	// must never be serialized toward the candidate.
	CorrectAnswer string   `json:"-"`
	Keywords      []string `json:"-"`
}

// QuestionView is the candidate-facing projection of a Question.
type QuestionView struct {
	ID      uuid.UUID    `json:"id"`
	Text    string       `json:"text"`
	Type    QuestionType `json:"type"`
	Options []string     `json:"options,omitempty"`
}

// View strips grading material from a question.
func (q *Question) View() QuestionView {
	return QuestionView{
		ID:      q.ID,
		Text:    q.Text,
		Type:    q.Type,
		Options: q.Options,
	}
}
