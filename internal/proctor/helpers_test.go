package proctor

import (
	"sync"
	"time"

	"github.com/interview-master/backend/internal/model"
)

// fakeScheduler is a deterministic Scheduler driven by Advance. Timers
// fire in due-time order; ties fire in registration order, which mirrors
// the arbitrary-but-stable interleaving of independent real timers.
type fakeScheduler struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	seq       int
	when      time.Time
	interval  time.Duration // zero for single-shot
	fn        func()
	cancelled bool
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{now: time.Unix(1700000000, 0)}
}

func (s *fakeScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *fakeScheduler) Every(d time.Duration, fn func()) CancelFunc {
	return s.add(d, d, fn)
}

func (s *fakeScheduler) Once(d time.Duration, fn func()) CancelFunc {
	return s.add(d, 0, fn)
}

func (s *fakeScheduler) add(d, interval time.Duration, fn func()) CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &fakeTimer{seq: s.seq, when: s.now.Add(d), interval: interval, fn: fn}
	s.timers = append(s.timers, t)
	return func() {
		s.mu.Lock()
		t.cancelled = true
		s.mu.Unlock()
	}
}

// Advance moves the clock forward, firing due timers in order. Callbacks
// run outside the scheduler lock so they can schedule and cancel freely.
func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)

	for {
		var next *fakeTimer
		for _, t := range s.timers {
			if t.cancelled || t.when.After(target) {
				continue
			}
			if next == nil || t.when.Before(next.when) ||
				(t.when.Equal(next.when) && t.seq < next.seq) {
				next = t
			}
		}
		if next == nil {
			break
		}

		s.now = next.when
		if next.interval > 0 {
			next.when = next.when.Add(next.interval)
		} else {
			next.cancelled = true
		}

		fn := next.fn
		s.mu.Unlock()
		fn()
		s.mu.Lock()
	}

	s.now = target
	s.mu.Unlock()
}

// recordingSink captures every event a controller emits.
type recordingSink struct {
	mu         sync.Mutex
	started    int
	questions  []int
	alerts     []AlertKind
	cleared    []AlertKind
	terminated []model.TerminationReason
	finalized  []*model.SessionResult
}

func (r *recordingSink) SessionStarted(int, time.Duration) {
	r.mu.Lock()
	r.started++
	r.mu.Unlock()
}

func (r *recordingSink) QuestionChanged(index int) {
	r.mu.Lock()
	r.questions = append(r.questions, index)
	r.mu.Unlock()
}

func (r *recordingSink) IntegrityAlert(kind AlertKind, _ string) {
	r.mu.Lock()
	r.alerts = append(r.alerts, kind)
	r.mu.Unlock()
}

func (r *recordingSink) IntegrityAlertCleared(kind AlertKind) {
	r.mu.Lock()
	r.cleared = append(r.cleared, kind)
	r.mu.Unlock()
}

func (r *recordingSink) SessionTerminated(reason model.TerminationReason) {
	r.mu.Lock()
	r.terminated = append(r.terminated, reason)
	r.mu.Unlock()
}

func (r *recordingSink) SessionFinalized(result *model.SessionResult) {
	r.mu.Lock()
	r.finalized = append(r.finalized, result)
	r.mu.Unlock()
}

// frameWithSkinRatio builds a 10×10 frame whose skin-pixel count is
// exactly ratio×100.
func frameWithSkinRatio(ratio float64) Frame {
	const w, h = 10, 10
	skin := int(ratio * w * h)
	px := make([]byte, w*h*3)
	for i := 0; i < w*h; i++ {
		if i < skin {
			px[i*3], px[i*3+1], px[i*3+2] = 150, 80, 40
		}
	}
	return Frame{Width: w, Height: h, Pixels: px}
}

// scriptedFrames replays a fixed frame sequence, holding the last frame
// once exhausted.
type scriptedFrames struct {
	mu     sync.Mutex
	frames []Frame
	next   int
}

func (s *scriptedFrames) LatestFrame() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return Frame{}, false
	}
	f := s.frames[s.next]
	if s.next < len(s.frames)-1 {
		s.next++
	}
	return f, true
}

// steadyFrames always returns the same frame.
type steadyFrames struct{ frame Frame }

func (s steadyFrames) LatestFrame() (Frame, bool) { return s.frame, true }

// emptyFrames never has a frame.
type emptyFrames struct{}

func (emptyFrames) LatestFrame() (Frame, bool) { return Frame{}, false }

func mcqQuestion(text, correct string, options ...string) model.Question {
	return model.Question{
		Text:          text,
		Type:          model.QuestionTypeMCQ,
		Options:       options,
		CorrectAnswer: correct,
	}
}

func textQuestion(text string, keywords ...string) model.Question {
	return model.Question{
		Text:     text,
		Type:     model.QuestionTypeText,
		Keywords: keywords,
	}
}
