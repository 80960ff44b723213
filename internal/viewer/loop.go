package viewer

import "time"

// FrameFunc renders one frame. dt is the time since the previous frame.
type FrameFunc func(dt time.Duration)

// Loop holds the per-frame callback driven by the display refresh. Only the most
// recently started callback is installed, so starting twice never doubles the work
// done per frame.
type Loop struct {
	frame FrameFunc
}

// Start installs fn as the frame callback, replacing any previous one.
func (l *Loop) Start(fn FrameFunc) {
	l.frame = fn
}

// Stop clears the callback.
func (l *Loop) Stop() {
	l.frame = nil
}

// Running reports whether a callback is installed.
func (l *Loop) Running() bool {
	return l.frame != nil
}

// Frame runs the installed callback, if any.
func (l *Loop) Frame(dt time.Duration) {
	if l.frame != nil {
		l.frame(dt)
	}
}
