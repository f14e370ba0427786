package proctor

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/interview-master/backend/internal/model"
)

// Phase is the monotonic lifecycle of a session. Transitions only move
// forward: Idle → Active → Terminating → Finalized.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseActive
	PhaseTerminating
	PhaseFinalized
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "ACTIVE"
	case PhaseTerminating:
		return "TERMINATING"
	case PhaseFinalized:
		return "FINALIZED"
	default:
		return "IDLE"
	}
}

var (
	// ErrNoQuestions rejects starting a session with an empty list; the
	// scoring and finalize paths assume at least one question.
	ErrNoQuestions = errors.New("cannot start a session with no questions")
	// ErrNoFrameSource rejects starting a session without a camera feed.
	ErrNoFrameSource = errors.New("cannot start a session without a frame source")
	// ErrInvalidTimeLimit rejects a non-positive time limit.
	ErrInvalidTimeLimit = errors.New("time limit must be positive")
	// ErrAlreadyStarted reports a second Start call.
	ErrAlreadyStarted = errors.New("session already started")
	// ErrSessionNotActive rejects mutations outside the Active phase.
	ErrSessionNotActive = errors.New("session is not active")
)

// Config assembles a session controller.
type Config struct {
	Questions []model.Question
	TimeLimit time.Duration
	Frames    FrameSource
	// Scheduler defaults to the wall clock when nil.
	Scheduler Scheduler
	// Sink defaults to NopSink when nil.
	Sink EventSink
}

// Controller owns one interview session end to end: the question state
// machine, the integrity monitor and the finalize gate. All termination
// triggers (explicit submit, watcher escalations, time expiry) funnel
// into Finalize, which runs exactly once.
type Controller struct {
	sched Scheduler
	sink  EventSink

	phase atomic.Int32

	mu        sync.Mutex
	session   *questionSession
	startedAt time.Time
	result    *model.SessionResult

	monitor *Monitor
}

// NewController validates the inputs and assembles a controller in the
// Idle phase. It fails fast on inputs the session cannot run without.
func NewController(cfg Config) (*Controller, error) {
	if len(cfg.Questions) == 0 {
		return nil, ErrNoQuestions
	}
	if cfg.Frames == nil {
		return nil, ErrNoFrameSource
	}
	if cfg.TimeLimit <= 0 {
		return nil, ErrInvalidTimeLimit
	}

	sched := cfg.Scheduler
	if sched == nil {
		sched = NewScheduler()
	}
	sink := cfg.Sink
	if sink == nil {
		sink = NopSink{}
	}

	c := &Controller{
		sched:   sched,
		sink:    sink,
		session: newQuestionSession(cfg.Questions),
	}
	c.monitor = newMonitor(sched, cfg.Frames, cfg.TimeLimit, sink, c.terminate)
	return c, nil
}

// Start transitions Idle → Active and begins monitoring.
func (c *Controller) Start() error {
	if !c.phase.CompareAndSwap(int32(PhaseIdle), int32(PhaseActive)) {
		return ErrAlreadyStarted
	}

	c.mu.Lock()
	c.startedAt = c.sched.Now()
	total := len(c.session.questions)
	c.mu.Unlock()

	c.monitor.Start()
	c.sink.SessionStarted(total, time.Duration(c.monitor.Remaining())*time.Second)
	c.sink.QuestionChanged(0)
	return nil
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase {
	return Phase(c.phase.Load())
}

// Remaining returns the exam clock's remaining seconds.
func (c *Controller) Remaining() int {
	return c.monitor.Remaining()
}

// TotalQuestions returns the size of the fixed question list.
func (c *Controller) TotalQuestions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.session.questions)
}

// Index returns the index of the question currently displayed.
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Index()
}

// QuestionAt returns the question at an index.
func (c *Controller) QuestionAt(index int) (model.Question, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Question(index)
}

// StoredAnswer returns the recorded answer for an index, if any.
func (c *Controller) StoredAnswer(index int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Answer(index)
}

// RecordAnswer stores an answer while the session is active.
func (c *Controller) RecordAnswer(index int, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Phase() != PhaseActive {
		return ErrSessionNotActive
	}
	return c.session.Record(index, value)
}

// Next persists the displayed answer and advances. Advancing past the
// last question finalizes the session as a voluntary submit.
func (c *Controller) Next(current string) error {
	c.mu.Lock()
	if c.Phase() != PhaseActive {
		c.mu.Unlock()
		return ErrSessionNotActive
	}
	finished := c.session.Next(current)
	index := c.session.Index()
	c.mu.Unlock()

	if finished {
		c.Finalize(model.ReasonSubmitted)
		return nil
	}
	c.sink.QuestionChanged(index)
	return nil
}

// Previous persists the displayed answer and steps back.
func (c *Controller) Previous(current string) error {
	c.mu.Lock()
	if c.Phase() != PhaseActive {
		c.mu.Unlock()
		return ErrSessionNotActive
	}
	before := c.session.Index()
	c.session.Previous(current)
	index := c.session.Index()
	c.mu.Unlock()

	if index != before {
		c.sink.QuestionChanged(index)
	}
	return nil
}

// Observe forwards a page-visibility report to the focus watcher.
// Reports after termination are ignored by the watcher.
func (c *Controller) Observe(hidden bool) {
	if c.Phase() != PhaseActive {
		return
	}
	c.monitor.Observe(hidden)
}

// Submit persists the displayed answer and finalizes voluntarily.
func (c *Controller) Submit(current string) error {
	c.mu.Lock()
	if c.Phase() != PhaseActive {
		c.mu.Unlock()
		return ErrSessionNotActive
	}
	_ = c.session.Record(c.session.Index(), current)
	c.mu.Unlock()

	c.Finalize(model.ReasonSubmitted)
	return nil
}

// ReportFullscreenExit terminates the session immediately: leaving
// fullscreen has no grace window.
func (c *Controller) ReportFullscreenExit() {
	c.Finalize(model.ReasonFullscreenExit)
}

// Result returns the session result once finalized.
func (c *Controller) Result() (*model.SessionResult, bool) {
	if c.Phase() != PhaseFinalized {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result, true
}

// terminate is the monitor's escalation path.
func (c *Controller) terminate(reason model.TerminationReason) {
	c.Finalize(reason)
}

// Finalize freezes the session and computes the result. The Active →
// Terminating compare-and-set is the exactly-once gate: watchers run on
// independent schedules and two terminal escalations can land within the
// same tick, but only the first wins; the rest are no-ops. Double
// finalize is therefore never an error.
func (c *Controller) Finalize(reason model.TerminationReason) {
	if !c.phase.CompareAndSwap(int32(PhaseActive), int32(PhaseTerminating)) {
		return
	}

	// Cancel every outstanding timer before scoring; a callback already
	// in flight sees the Terminating phase and is swallowed.
	c.monitor.Stop()

	c.mu.Lock()
	elapsed := c.sched.Now().Sub(c.startedAt)
	answers := c.session.snapshotAnswers()
	result := Score(c.session.questions, answers, elapsed, reason)
	c.result = result
	c.mu.Unlock()

	c.phase.Store(int32(PhaseFinalized))

	c.sink.SessionTerminated(reason)
	c.sink.SessionFinalized(result)
}
