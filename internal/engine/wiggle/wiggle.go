// Package wiggle alternates eye visibility on a fixed interval so stereo disparity
// can be seen without a stereo display.
package wiggle

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/stereoview/internal/logger"
)

// DefaultInterval is the time each eye stays visible while wiggling.
const DefaultInterval = 500 * time.Millisecond

// Target is the eye pair the oscillator drives.
type Target interface {
	Toggle()
	SetMono()
}

// Oscillator toggles a Target on a repeating timer. It holds at most one timer.
// Start, Stop and tick callbacks must all run on the same goroutine.
type Oscillator struct {
	scheduler Scheduler
	target    Target
	interval  time.Duration

	cancel  func()
	running bool
	gen     uint64
}

// New creates a stopped oscillator. A non-positive interval selects DefaultInterval.
func New(scheduler Scheduler, target Target, interval time.Duration) *Oscillator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Oscillator{
		scheduler: scheduler,
		target:    target,
		interval:  interval,
	}
}

// Start replaces any running timer with a new one. Calling it while running does not
// stack timers.
func (o *Oscillator) Start() {
	o.cancelTimer()
	o.running = true
	o.gen++
	gen := o.gen
	o.cancel = o.scheduler.Every(o.interval, func() {
		// A tick queued before a restart or stop belongs to a dead timer.
		if !o.running || gen != o.gen {
			return
		}
		o.target.Toggle()
	})
	logger.Named("wiggle").Debug("started", zap.Duration("interval", o.interval))
}

// Stop cancels the timer and restores the mono view (left visible, right hidden).
func (o *Oscillator) Stop() {
	wasRunning := o.running
	o.cancelTimer()
	o.running = false
	o.gen++
	o.target.SetMono()
	if wasRunning {
		logger.Named("wiggle").Debug("stopped")
	}
}

// SetEnabled starts or stops the oscillator.
func (o *Oscillator) SetEnabled(enabled bool) {
	if enabled {
		o.Start()
		return
	}
	o.Stop()
}

// Running reports whether a timer is active.
func (o *Oscillator) Running() bool {
	return o.running
}

// Interval returns the toggle interval.
func (o *Oscillator) Interval() time.Duration {
	return o.interval
}

func (o *Oscillator) cancelTimer() {
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}
