package proctor

import (
	"testing"
	"time"

	"github.com/interview-master/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExamClock_CountsDownAndExpiresOnce(t *testing.T) {
	sched := newFakeScheduler()
	rec := &faceRecorder{}
	clock := newExamClock(sched, 5*time.Second, rec.terminal)
	clock.Start()

	assert.Equal(t, 5, clock.Remaining())

	sched.Advance(3 * time.Second)
	assert.Equal(t, 2, clock.Remaining())
	assert.Empty(t, rec.terminals)

	sched.Advance(2 * time.Second)
	require.Equal(t, []model.TerminationReason{model.ReasonTimeExpired}, rec.terminals)
	assert.Equal(t, 0, clock.Remaining())

	// The clock canceled itself at zero; no further ticks, no re-fire.
	sched.Advance(10 * time.Second)
	assert.Len(t, rec.terminals, 1)
	assert.Equal(t, 0, clock.Remaining())
}

func TestExamClock_StopFreezesRemaining(t *testing.T) {
	sched := newFakeScheduler()
	rec := &faceRecorder{}
	clock := newExamClock(sched, 10*time.Second, rec.terminal)
	clock.Start()

	sched.Advance(4 * time.Second)
	clock.Stop()
	clock.Stop()

	sched.Advance(30 * time.Second)
	assert.Equal(t, 6, clock.Remaining())
	assert.Empty(t, rec.terminals)
}
