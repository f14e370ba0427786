package proctor

import (
	"testing"
	"time"

	"github.com/interview-master/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newControllerFixture(t *testing.T, questions []model.Question, limit time.Duration, frames FrameSource) (*Controller, *fakeScheduler, *recordingSink) {
	t.Helper()
	sched := newFakeScheduler()
	sink := &recordingSink{}
	c, err := NewController(Config{
		Questions: questions,
		TimeLimit: limit,
		Frames:    frames,
		Scheduler: sched,
		Sink:      sink,
	})
	require.NoError(t, err)
	return c, sched, sink
}

func attentiveFrames() FrameSource {
	return steadyFrames{frameWithSkinRatio(0.25)}
}

func TestNewController_Validation(t *testing.T) {
	questions := threeQuestions()

	_, err := NewController(Config{TimeLimit: time.Minute, Frames: attentiveFrames()})
	assert.ErrorIs(t, err, ErrNoQuestions)

	_, err = NewController(Config{Questions: questions, TimeLimit: time.Minute})
	assert.ErrorIs(t, err, ErrNoFrameSource)

	_, err = NewController(Config{Questions: questions, Frames: attentiveFrames()})
	assert.ErrorIs(t, err, ErrInvalidTimeLimit)
}

func TestController_Lifecycle(t *testing.T) {
	c, _, sink := newControllerFixture(t, threeQuestions(), time.Hour, attentiveFrames())

	assert.Equal(t, PhaseIdle, c.Phase())
	assert.ErrorIs(t, c.Next("B"), ErrSessionNotActive)
	assert.ErrorIs(t, c.RecordAnswer(0, "B"), ErrSessionNotActive)

	require.NoError(t, c.Start())
	assert.Equal(t, PhaseActive, c.Phase())
	assert.Equal(t, 1, sink.started)
	assert.Equal(t, []int{0}, sink.questions)

	assert.ErrorIs(t, c.Start(), ErrAlreadyStarted)
}

func TestController_SubmitScoresTwoQuestionSession(t *testing.T) {
	questions := []model.Question{
		mcqQuestion("Q1", "B", "A", "B", "C"),
		textQuestion("Q2", "recursion", "stack"),
	}
	c, sched, sink := newControllerFixture(t, questions, time.Hour, attentiveFrames())
	require.NoError(t, c.Start())

	require.NoError(t, c.Next("B"))
	assert.Equal(t, 1, c.Index())

	sched.Advance(90 * time.Second)
	require.NoError(t, c.Submit("an iterative loop"))

	assert.Equal(t, PhaseFinalized, c.Phase())
	result, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, 1, result.CorrectCount)
	assert.Equal(t, 2, result.TotalQuestions)
	assert.Equal(t, 50, result.AccuracyPercent)
	assert.Equal(t, 100, result.CreditsEarned)
	assert.Equal(t, 90, result.ElapsedSeconds)
	assert.Equal(t, model.ReasonSubmitted, result.Reason)

	require.Len(t, sink.terminated, 1)
	assert.Equal(t, model.ReasonSubmitted, sink.terminated[0])
	require.Len(t, sink.finalized, 1)
	assert.Same(t, result, sink.finalized[0])
}

func TestController_NextPastLastQuestionSubmits(t *testing.T) {
	c, _, sink := newControllerFixture(t, threeQuestions(), time.Hour, attentiveFrames())
	require.NoError(t, c.Start())

	require.NoError(t, c.Next("B"))
	require.NoError(t, c.Next("A"))
	require.NoError(t, c.Next("it pushes frames onto a stack"))

	assert.Equal(t, PhaseFinalized, c.Phase())
	result, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, model.ReasonSubmitted, result.Reason)
	assert.Equal(t, 3, result.CorrectCount)
	// The last navigation finalizes instead of emitting a question change.
	assert.Equal(t, []int{0, 1, 2}, sink.questions)
}

func TestController_PreviousRevisitsAndOverwrites(t *testing.T) {
	c, _, sink := newControllerFixture(t, threeQuestions(), time.Hour, attentiveFrames())
	require.NoError(t, c.Start())

	require.NoError(t, c.Next("A")) // wrong on purpose
	require.NoError(t, c.Previous(""))
	assert.Equal(t, 0, c.Index())

	require.NoError(t, c.RecordAnswer(0, "B"))
	a, ok := c.StoredAnswer(0)
	require.True(t, ok)
	assert.Equal(t, "B", a)
	assert.Equal(t, []int{0, 1, 0}, sink.questions)

	// Previous at index zero stays put and emits nothing.
	require.NoError(t, c.Previous(""))
	assert.Equal(t, []int{0, 1, 0}, sink.questions)
}

func TestController_TimeExpiryScoresPartialProgress(t *testing.T) {
	questions := []model.Question{
		mcqQuestion("Q1", "A", "A", "B"),
		mcqQuestion("Q2", "A", "A", "B"),
		mcqQuestion("Q3", "A", "A", "B"),
		mcqQuestion("Q4", "A", "A", "B"),
		mcqQuestion("Q5", "A", "A", "B"),
	}
	c, sched, sink := newControllerFixture(t, questions, 10*time.Second, attentiveFrames())
	require.NoError(t, c.Start())

	require.NoError(t, c.RecordAnswer(0, "A"))
	require.NoError(t, c.RecordAnswer(1, "A"))

	sched.Advance(10 * time.Second)

	assert.Equal(t, PhaseFinalized, c.Phase())
	assert.Equal(t, 0, c.Remaining())
	result, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, model.ReasonTimeExpired, result.Reason)
	assert.Equal(t, 2, result.CorrectCount)
	assert.Equal(t, 40, result.AccuracyPercent)
	assert.Equal(t, 80, result.CreditsEarned)

	// Answers are frozen after finalization.
	assert.ErrorIs(t, c.RecordAnswer(2, "A"), ErrSessionNotActive)
	assert.ErrorIs(t, c.Submit("A"), ErrSessionNotActive)
	require.Len(t, sink.terminated, 1)
}

func TestController_NoFaceTerminatesSession(t *testing.T) {
	c, sched, sink := newControllerFixture(t, threeQuestions(), time.Hour, emptyFrames{})
	require.NoError(t, c.Start())

	sched.Advance(8 * time.Second)
	assert.Equal(t, PhaseActive, c.Phase())
	assert.Equal(t, []AlertKind{AlertFaceMissing}, sink.alerts)

	sched.Advance(2 * time.Second)
	assert.Equal(t, PhaseFinalized, c.Phase())
	result, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, model.ReasonNoFace, result.Reason)
	assert.Equal(t, []model.TerminationReason{model.ReasonNoFace}, sink.terminated)
}

func TestController_FocusLossTerminatesAfterGrace(t *testing.T) {
	c, sched, sink := newControllerFixture(t, threeQuestions(), time.Hour, attentiveFrames())
	require.NoError(t, c.Start())

	c.Observe(true)
	assert.Equal(t, []AlertKind{AlertFocusLost}, sink.alerts)

	sched.Advance(2 * time.Second)
	c.Observe(false)
	assert.Equal(t, []AlertKind{AlertFocusLost}, sink.cleared)

	c.Observe(true)
	sched.Advance(3 * time.Second)
	assert.Equal(t, PhaseFinalized, c.Phase())
	result, _ := c.Result()
	assert.Equal(t, model.ReasonFocusLost, result.Reason)
}

func TestController_FullscreenExitTerminatesImmediately(t *testing.T) {
	c, _, sink := newControllerFixture(t, threeQuestions(), time.Hour, attentiveFrames())
	require.NoError(t, c.Start())

	c.ReportFullscreenExit()

	assert.Equal(t, PhaseFinalized, c.Phase())
	result, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, model.ReasonFullscreenExit, result.Reason)
	require.Len(t, sink.terminated, 1)
}

func TestController_ConcurrentTriggersFinalizeOnce(t *testing.T) {
	// Absent candidate and a 10-second limit: the fifth missed face
	// sample and the clock's final tick land on the same instant.
	c, sched, sink := newControllerFixture(t, threeQuestions(), 10*time.Second, emptyFrames{})
	require.NoError(t, c.Start())

	sched.Advance(10 * time.Second)

	assert.Equal(t, PhaseFinalized, c.Phase())
	require.Len(t, sink.terminated, 1)
	require.Len(t, sink.finalized, 1)

	// A late explicit submit is rejected, not double-finalized.
	assert.ErrorIs(t, c.Submit("A"), ErrSessionNotActive)
	assert.Len(t, sink.finalized, 1)
}

func TestController_ResultUnavailableWhileActive(t *testing.T) {
	c, _, _ := newControllerFixture(t, threeQuestions(), time.Hour, attentiveFrames())

	_, ok := c.Result()
	assert.False(t, ok)

	require.NoError(t, c.Start())
	_, ok = c.Result()
	assert.False(t, ok)
}
