package proctor

import (
	"sync"
	"time"
)

// CancelFunc stops a scheduled task. Safe to call more than once.
type CancelFunc func()

// Scheduler abstracts periodic and single-shot timer scheduling so the
// watchers can be driven by a fake clock in tests.
type Scheduler interface {
	Now() time.Time
	// Every invokes fn repeatedly at the given interval until cancelled.
	Every(d time.Duration, fn func()) CancelFunc
	// Once invokes fn a single time after the given delay unless cancelled.
	Once(d time.Duration, fn func()) CancelFunc
}

type realScheduler struct{}

// NewScheduler returns a Scheduler backed by the wall clock.
func NewScheduler() Scheduler { return realScheduler{} }

func (realScheduler) Now() time.Time { return time.Now() }

func (realScheduler) Every(d time.Duration, fn func()) CancelFunc {
	ticker := time.NewTicker(d)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

func (realScheduler) Once(d time.Duration, fn func()) CancelFunc {
	timer := time.AfterFunc(d, fn)
	var once sync.Once
	return func() {
		once.Do(func() { timer.Stop() })
	}
}
