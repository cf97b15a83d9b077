package core

import "sync"

const (
	defaultQueueCap     = 16
	compactMinCap       = 64 // Don't compact if capacity is less than this
	compactShrinkFactor = 4  // Trigger compaction when len < cap/4
)

// Callback is a queued completion thunk. It is enqueued at most once per
// task and executed at most once, on whichever goroutine drains the queue.
type Callback func()

// CallbackQueue is a thread-safe FIFO of completion thunks. Worker
// goroutines enqueue; the control loop drains. The lock is held only for
// the O(1) push/pop/size operations, never while a thunk executes.
type CallbackQueue struct {
	mu   sync.Mutex
	fifo []Callback
}

// NewCallbackQueue creates an empty queue.
func NewCallbackQueue() *CallbackQueue {
	return &CallbackQueue{
		fifo: make([]Callback, 0, defaultQueueCap),
	}
}

// Enqueue appends a thunk to the tail. Never blocks beyond the push itself.
func (q *CallbackQueue) Enqueue(cb Callback) {
	if cb == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.fifo = append(q.fifo, cb)
}

// Drain executes queued thunks in FIFO order on the calling goroutine and
// returns how many ran. The lock is acquired without blocking: if another
// drain holds it, Drain returns 0 immediately and nothing is lost, the
// queued work waits for a later drain. The lock is released around every
// thunk execution, so a thunk that enqueues new work cannot deadlock; work
// enqueued mid-drain is picked up by the same drain.
func (q *CallbackQueue) Drain() int {
	if !q.mu.TryLock() {
		return 0
	}

	executed := 0
	for len(q.fifo) > 0 {
		cb := q.fifo[0]
		// Zero out the element in the underlying array to prevent memory leak
		q.fifo[0] = nil
		q.fifo = q.fifo[1:]
		q.mu.Unlock()

		cb()
		executed++

		q.mu.Lock()
	}
	q.maybeCompactLocked()
	q.mu.Unlock()
	return executed
}

// Size returns a snapshot of the number of queued thunks.
func (q *CallbackQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.fifo)
}

func (q *CallbackQueue) maybeCompactLocked() {
	n := len(q.fifo)
	c := cap(q.fifo)

	if c < compactMinCap {
		return
	}
	if n == 0 {
		q.fifo = make([]Callback, 0, defaultQueueCap)
		return
	}
	if n*compactShrinkFactor >= c {
		return
	}

	newCap := max(max(c/2, defaultQueueCap), n)
	newSlice := make([]Callback, n, newCap)
	copy(newSlice, q.fifo)
	q.fifo = newSlice
}
