package wiggle

import (
	"sync"
	"time"
)

// Scheduler runs fn every interval until the returned cancel func is called.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
}

// TickerScheduler drives callbacks from a time.Ticker. Ticks are not run on the ticker
// goroutine; they are handed to Post, which is expected to queue fn for the render thread.
type TickerScheduler struct {
	Post func(fn func())
}

// Every starts a ticker goroutine. cancel is idempotent and stops the goroutine.
func (s TickerScheduler) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				s.Post(fn)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}
