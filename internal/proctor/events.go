package proctor

import (
	"time"

	"github.com/interview-master/backend/internal/model"
)

// AlertKind identifies a non-terminal integrity warning shown to the
// candidate while the grace window runs.
type AlertKind string

const (
	AlertFaceMissing   AlertKind = "FACE_MISSING"
	AlertMultipleFaces AlertKind = "MULTIPLE_FACES"
	AlertFocusLost     AlertKind = "FOCUS_LOST"
)

// EventSink receives lifecycle events from a session controller.
// Implementations must be safe for concurrent use: watcher callbacks run
// on independent timer goroutines.
type EventSink interface {
	SessionStarted(totalQuestions int, timeLimit time.Duration)
	QuestionChanged(index int)
	IntegrityAlert(kind AlertKind, detail string)
	IntegrityAlertCleared(kind AlertKind)
	SessionTerminated(reason model.TerminationReason)
	SessionFinalized(result *model.SessionResult)
}

// NopSink discards all events. Useful for tests and headless sessions.
type NopSink struct{}

func (NopSink) SessionStarted(int, time.Duration)        {}
func (NopSink) QuestionChanged(int)                       {}
func (NopSink) IntegrityAlert(AlertKind, string)          {}
func (NopSink) IntegrityAlertCleared(AlertKind)           {}
func (NopSink) SessionTerminated(model.TerminationReason) {}
func (NopSink) SessionFinalized(*model.SessionResult)     {}
