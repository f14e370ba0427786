package proctor

import (
	"sync"
	"time"

	"github.com/interview-master/backend/internal/model"
)

// examClock counts down the session's total allotted time on a repeating
// one-second tick. Reaching zero is a terminal escalation; the clock
// stops itself and the remaining time stays frozen at zero.
type examClock struct {
	sched Scheduler

	mu        sync.Mutex
	remaining int
	cancel    CancelFunc

	onTerminal func(reason model.TerminationReason)
}

func newExamClock(sched Scheduler, total time.Duration, onTerminal func(model.TerminationReason)) *examClock {
	return &examClock{
		sched:      sched,
		remaining:  int(total / time.Second),
		onTerminal: onTerminal,
	}
}

func (c *examClock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}
	c.cancel = c.sched.Every(time.Second, c.tick)
}

// Stop freezes the countdown. Idempotent.
func (c *examClock) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Remaining returns the frozen-or-live remaining seconds for display.
func (c *examClock) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *examClock) tick() {
	var expired bool

	c.mu.Lock()
	if c.cancel == nil {
		c.mu.Unlock()
		return
	}
	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		expired = true
	}
	cancel := c.cancel
	if expired {
		c.cancel = nil
	}
	c.mu.Unlock()

	if expired {
		cancel()
		c.onTerminal(model.ReasonTimeExpired)
	}
}
