package proctor

import (
	"fmt"
	"sync"
	"time"

	"github.com/interview-master/backend/internal/model"
)

const (
	// faceSampleInterval is the cadence at which camera frames are
	// classified.
	faceSampleInterval = 2 * time.Second

	// noFaceLimit is the number of consecutive "no face" samples that
	// escalates to termination (~10s of continuous absence).
	noFaceLimit = 5

	// multiFaceLimit is the number of consecutive "multiple faces"
	// samples that escalates to termination (~6s).
	multiFaceLimit = 3

	// FaceGraceSeconds is the countdown shown to the candidate once the
	// first missed sample lands: the sample interval has already elapsed,
	// leaving 8 of the 10 seconds.
	FaceGraceSeconds = 8
)

// faceWatcher samples a frame source on a fixed cadence, classifies each
// sample and keeps run-length counters over the verdicts. At most one of
// the two counters is non-zero at any time.
type faceWatcher struct {
	sched  Scheduler
	source FrameSource

	mu        sync.Mutex
	cancel    CancelFunc
	noFace    int
	multiFace int
	// alert is the currently raised warning, empty when none. At most
	// one alert is active, matching the single non-zero counter.
	alert     AlertKind
	escalated bool

	onAlert    func(kind AlertKind, detail string)
	onClear    func(kind AlertKind)
	onTerminal func(reason model.TerminationReason)
}

func newFaceWatcher(
	sched Scheduler,
	source FrameSource,
	onAlert func(AlertKind, string),
	onClear func(AlertKind),
	onTerminal func(model.TerminationReason),
) *faceWatcher {
	return &faceWatcher{
		sched:      sched,
		source:     source,
		onAlert:    onAlert,
		onClear:    onClear,
		onTerminal: onTerminal,
	}
}

func (w *faceWatcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}
	w.cancel = w.sched.Every(faceSampleInterval, w.sample)
}

// Stop releases the periodic schedule. Idempotent.
func (w *faceWatcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// sample runs on every tick. Emissions are decided under the lock but
// invoked outside it, so a terminal escalation can stop the watcher
// without deadlocking on re-entry.
func (w *faceWatcher) sample() {
	frame, ok := w.source.LatestFrame()
	verdict := VerdictNone
	if ok {
		verdict = Classify(frame)
	}

	var emit func()

	w.mu.Lock()
	if w.cancel == nil || w.escalated {
		w.mu.Unlock()
		return
	}

	switch verdict {
	case VerdictNone:
		w.noFace++
		w.multiFace = 0
		prev := w.alert
		switch {
		case w.noFace == noFaceLimit:
			w.escalated = true
			w.alert = ""
			emit = func() { w.onTerminal(model.ReasonNoFace) }
		case w.noFace == 1:
			w.alert = AlertFaceMissing
			emit = func() {
				if prev == AlertMultipleFaces {
					w.onClear(prev)
				}
				w.onAlert(AlertFaceMissing, fmt.Sprintf(
					"No face detected. Position yourself in front of the camera within %d seconds.",
					FaceGraceSeconds))
			}
		}

	case VerdictMultiple:
		w.multiFace++
		w.noFace = 0
		prev := w.alert
		switch {
		case w.multiFace == multiFaceLimit:
			w.escalated = true
			w.alert = ""
			emit = func() {
				if prev == AlertFaceMissing {
					w.onClear(prev)
				}
				w.onTerminal(model.ReasonMultipleFaces)
			}
		case w.multiFace == 1:
			w.alert = AlertMultipleFaces
			emit = func() {
				if prev == AlertFaceMissing {
					w.onClear(prev)
				}
				w.onAlert(AlertMultipleFaces,
					"Multiple faces detected. Make sure you are the only person on camera.")
			}
		}

	case VerdictOne:
		w.noFace = 0
		w.multiFace = 0
		if prev := w.alert; prev != "" {
			w.alert = ""
			emit = func() { w.onClear(prev) }
		}
	}
	w.mu.Unlock()

	if emit != nil {
		emit()
	}
}
