package viewer

import "sync"

// intentQueue carries work from decode goroutines and timers onto the render thread.
type intentQueue struct {
	mu      sync.Mutex
	pending []func()
}

// Post queues fn. Safe for concurrent use.
func (q *intentQueue) Post(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// Drain runs every queued intent in post order and returns how many ran. Intents posted
// while draining run on the next call.
func (q *intentQueue) Drain() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Len returns the number of queued intents.
func (q *intentQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
