package model

import (
	"time"

	"github.com/google/uuid"
)

// TerminationReason identifies why an interview session ended.
type TerminationReason string

const (
	ReasonSubmitted      TerminationReason = "SUBMITTED"
	ReasonTimeExpired    TerminationReason = "TIME_EXPIRED"
	ReasonNoFace         TerminationReason = "NO_FACE"
	ReasonMultipleFaces  TerminationReason = "MULTIPLE_FACES"
	ReasonFocusLost      TerminationReason = "FOCUS_LOST"
	ReasonFullscreenExit TerminationReason = "FULLSCREEN_EXIT"
)

// SessionResult is the immutable outcome of a finalized interview.
type SessionResult struct {
	CorrectCount    int               `json:"correct_count"`
	TotalQuestions  int               `json:"total_questions"`
	AccuracyPercent int               `json:"accuracy_percent"`
	ElapsedSeconds  int               `json:"elapsed_seconds"`
	CreditsEarned   int               `json:"credits_earned"`
	Answers         map[int]string    `json:"answers"`
	Reason          TerminationReason `json:"reason"`
}

// InterviewRecord is the persisted row for a finished interview.
type InterviewRecord struct {
	ID              uuid.UUID         `json:"id"`
	UserID          int               `json:"user_id"`
	Domain          string            `json:"domain"`
	Difficulty      string            `json:"difficulty"`
	CorrectCount    int               `json:"correct_count"`
	TotalQuestions  int               `json:"total_questions"`
	AccuracyPercent int               `json:"accuracy_percent"`
	CreditsEarned   int               `json:"credits_earned"`
	ElapsedSeconds  int               `json:"elapsed_seconds"`
	Reason          TerminationReason `json:"reason"`
	FinishedAt      time.Time         `json:"finished_at"`
}

// IntegrityEvent is the audit row for one integrity alert or escalation
// observed during a session.
type IntegrityEvent struct {
	SessionID  uuid.UUID `json:"session_id"`
	UserID     int       `json:"user_id"`
	Kind       string    `json:"kind"`
	Detail     string    `json:"detail"`
	RecordedAt time.Time `json:"recorded_at"`
}

// StartInterviewRequest is the payload for starting a session.
type StartInterviewRequest struct {
	Domain     string `json:"domain" binding:"required"`
	Difficulty string `json:"difficulty" binding:"required,oneof=easy medium hard"`
}

// NavigateRequest carries the currently displayed answer along with a
// navigation action, so the answer is persisted before the index moves.
type NavigateRequest struct {
	Answer string `json:"answer"`
}

// AnswerRequest records an answer for an explicit question index.
type AnswerRequest struct {
	Index  int    `json:"index" binding:"min=0"`
	Answer string `json:"answer"`
}
