package proctor

import (
	"sync"
	"testing"
	"time"

	"github.com/interview-master/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type faceRecorder struct {
	mu        sync.Mutex
	alerts    []AlertKind
	cleared   []AlertKind
	terminals []model.TerminationReason
}

func (r *faceRecorder) alert(kind AlertKind, _ string) {
	r.mu.Lock()
	r.alerts = append(r.alerts, kind)
	r.mu.Unlock()
}

func (r *faceRecorder) clear(kind AlertKind) {
	r.mu.Lock()
	r.cleared = append(r.cleared, kind)
	r.mu.Unlock()
}

func (r *faceRecorder) terminal(reason model.TerminationReason) {
	r.mu.Lock()
	r.terminals = append(r.terminals, reason)
	r.mu.Unlock()
}

func newFaceFixture(source FrameSource) (*fakeScheduler, *faceRecorder, *faceWatcher) {
	sched := newFakeScheduler()
	rec := &faceRecorder{}
	w := newFaceWatcher(sched, source, rec.alert, rec.clear, rec.terminal)
	return sched, rec, w
}

func TestFaceWatcher_NoFaceEscalatesOnce(t *testing.T) {
	sched, rec, w := newFaceFixture(steadyFrames{frameWithSkinRatio(0)})
	w.Start()

	// First miss lands at 2s and raises the alert.
	sched.Advance(2 * time.Second)
	require.Equal(t, []AlertKind{AlertFaceMissing}, rec.alerts)
	assert.Empty(t, rec.terminals)

	// Five consecutive misses (~10s of absence) escalate exactly once,
	// no matter how long the absence continues.
	sched.Advance(8 * time.Second)
	require.Equal(t, []model.TerminationReason{model.ReasonNoFace}, rec.terminals)

	sched.Advance(20 * time.Second)
	assert.Equal(t, []model.TerminationReason{model.ReasonNoFace}, rec.terminals)
	assert.Equal(t, []AlertKind{AlertFaceMissing}, rec.alerts)
}

func TestFaceWatcher_FaceReturnClearsAlertAndResets(t *testing.T) {
	source := &scriptedFrames{frames: []Frame{
		frameWithSkinRatio(0),    // miss
		frameWithSkinRatio(0),    // miss
		frameWithSkinRatio(0.25), // face back
		frameWithSkinRatio(0),
		frameWithSkinRatio(0),
		frameWithSkinRatio(0),
		frameWithSkinRatio(0),
		frameWithSkinRatio(0),
	}}
	sched, rec, w := newFaceFixture(source)
	w.Start()

	sched.Advance(6 * time.Second)
	assert.Equal(t, []AlertKind{AlertFaceMissing}, rec.alerts)
	assert.Equal(t, []AlertKind{AlertFaceMissing}, rec.cleared)
	assert.Empty(t, rec.terminals)

	// The counter restarted from zero: five more misses are needed.
	sched.Advance(8 * time.Second)
	assert.Empty(t, rec.terminals)
	sched.Advance(2 * time.Second)
	assert.Equal(t, []model.TerminationReason{model.ReasonNoFace}, rec.terminals)
	// A fresh absence run raises a fresh alert.
	assert.Equal(t, []AlertKind{AlertFaceMissing, AlertFaceMissing}, rec.alerts)
}

func TestFaceWatcher_MultipleFacesEscalates(t *testing.T) {
	sched, rec, w := newFaceFixture(steadyFrames{frameWithSkinRatio(0.9)})
	w.Start()

	// The first crowded sample warns the candidate before the run
	// escalates.
	sched.Advance(2 * time.Second)
	assert.Equal(t, []AlertKind{AlertMultipleFaces}, rec.alerts)
	assert.Empty(t, rec.terminals)

	sched.Advance(2 * time.Second)
	assert.Empty(t, rec.terminals)

	sched.Advance(2 * time.Second)
	require.Equal(t, []model.TerminationReason{model.ReasonMultipleFaces}, rec.terminals)

	sched.Advance(10 * time.Second)
	assert.Len(t, rec.terminals, 1)
	assert.Equal(t, []AlertKind{AlertMultipleFaces}, rec.alerts)
}

func TestFaceWatcher_MultipleFacesRecoveryClearsAlert(t *testing.T) {
	source := &scriptedFrames{frames: []Frame{
		frameWithSkinRatio(0.9),  // crowded → alert
		frameWithSkinRatio(0.25), // back to one face
	}}
	sched, rec, w := newFaceFixture(source)
	w.Start()

	sched.Advance(4 * time.Second)
	assert.Equal(t, []AlertKind{AlertMultipleFaces}, rec.alerts)
	assert.Equal(t, []AlertKind{AlertMultipleFaces}, rec.cleared)
	assert.Empty(t, rec.terminals)
}

func TestFaceWatcher_MultipleClearsPendingFaceAlert(t *testing.T) {
	source := &scriptedFrames{frames: []Frame{
		frameWithSkinRatio(0),   // miss → alert
		frameWithSkinRatio(0.9), // multiple supersedes the absence run
	}}
	sched, rec, w := newFaceFixture(source)
	w.Start()

	sched.Advance(4 * time.Second)
	assert.Equal(t, []AlertKind{AlertFaceMissing, AlertMultipleFaces}, rec.alerts)
	assert.Equal(t, []AlertKind{AlertFaceMissing}, rec.cleared)
	assert.Empty(t, rec.terminals)
}

func TestFaceWatcher_MissingFrameCountsAsAbsence(t *testing.T) {
	sched, rec, w := newFaceFixture(emptyFrames{})
	w.Start()

	sched.Advance(10 * time.Second)
	assert.Equal(t, []model.TerminationReason{model.ReasonNoFace}, rec.terminals)
}

func TestFaceWatcher_StopIsIdempotent(t *testing.T) {
	sched, rec, w := newFaceFixture(steadyFrames{frameWithSkinRatio(0)})
	w.Start()

	sched.Advance(2 * time.Second)
	w.Stop()
	w.Stop()

	sched.Advance(30 * time.Second)
	assert.Empty(t, rec.terminals)
}
