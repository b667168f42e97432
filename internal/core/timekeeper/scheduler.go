package timekeeper

import (
	"sync"
	"time"
)

// CancelFunc stops a scheduled callback. Calling it more than once is safe.
type CancelFunc func()

// Scheduler runs engine callbacks on a cadence or after a delay.
type Scheduler interface {
	Every(interval time.Duration, fn func()) CancelFunc
	After(delay time.Duration, fn func()) CancelFunc
}

// NewScheduler returns a Scheduler backed by time.Ticker and time.AfterFunc.
func NewScheduler() Scheduler {
	return realScheduler{}
}

type realScheduler struct{}

func (realScheduler) Every(interval time.Duration, fn func()) CancelFunc {
	stopCh := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stopCh)
		})
	}
}

func (realScheduler) After(delay time.Duration, fn func()) CancelFunc {
	timer := time.AfterFunc(delay, fn)
	return func() {
		timer.Stop()
	}
}
