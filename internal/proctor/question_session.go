package proctor

import (
	"errors"
	"strings"

	"github.com/interview-master/backend/internal/model"
)

var (
	// ErrIndexOutOfRange reports an answer index outside the question list.
	ErrIndexOutOfRange = errors.New("question index out of range")
	// ErrNotAnOption reports an MCQ answer that is not one of the
	// question's options. An MCQ without options is unanswerable.
	ErrNotAnOption = errors.New("answer is not one of the question's options")
)

// questionSession is the navigation and answer-capture state machine over
// a fixed, ordered question list. It is not safe for concurrent use; the
// controller serializes access.
type questionSession struct {
	questions []model.Question
	index     int
	answers   map[int]string
}

func newQuestionSession(questions []model.Question) *questionSession {
	return &questionSession{
		questions: questions,
		answers:   make(map[int]string),
	}
}

func (s *questionSession) Index() int { return s.index }

func (s *questionSession) Question(index int) (model.Question, bool) {
	if index < 0 || index >= len(s.questions) {
		return model.Question{}, false
	}
	return s.questions[index], true
}

// Answer returns the stored answer for an index, if any.
func (s *questionSession) Answer(index int) (string, bool) {
	v, ok := s.answers[index]
	return v, ok
}

// snapshotAnswers copies the answer map for scoring.
func (s *questionSession) snapshotAnswers() map[int]string {
	out := make(map[int]string, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// Record stores an answer for the given index, overwriting any prior
// value. Blank values are not stored: an index with no stored answer is
// "unanswered", which is distinct from an explicit empty submission.
func (s *questionSession) Record(index int, value string) error {
	if index < 0 || index >= len(s.questions) {
		return ErrIndexOutOfRange
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	q := s.questions[index]
	if q.Type == model.QuestionTypeMCQ {
		if !containsOption(q.Options, value) {
			return ErrNotAnOption
		}
	}

	s.answers[index] = value
	return nil
}

// Next persists the currently displayed answer and advances. Returns
// true when the caller should finalize: moving past the last question is
// equivalent to an explicit submit.
func (s *questionSession) Next(current string) bool {
	_ = s.Record(s.index, current) // invalid MCQ values are simply not stored

	if s.index < len(s.questions)-1 {
		s.index++
		return false
	}
	return true
}

// Previous persists the currently displayed answer and steps back,
// never below index zero.
func (s *questionSession) Previous(current string) {
	_ = s.Record(s.index, current)

	if s.index > 0 {
		s.index--
	}
}

func containsOption(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}
