// Package async implements the editor's cooperative concurrency model
// (§5): a single-threaded main loop drives one Queue, and each
// long-running computation gets its own Evaluator — one background
// goroutine reading a task channel and posting results back onto the
// main Queue, never touching editor state directly. Value[T] is the
// one-shot future connecting the two sides.
//
// This is a deliberate step down from internal/event/dispatch's
// AsyncDispatcher, which runs a ten-goroutine worker pool sharing one
// task queue; that model fits a request/response event bus, but the
// spec calls for exactly one background worker per async computation
// with all state mutation staying on the main thread, so the pool is
// replaced by Evaluator's single goroutine and Value's produce/consume
// handoff.
package async

import "sync"

// Notification is a cooperative cancellation flag: Cancel is safe to
// call from any goroutine (including an Evaluator's worker), and
// OnCancel callbacks always run on whichever goroutine calls Cancel,
// so the caller decides whether to hop back onto the main Queue.
type Notification struct {
	mu        sync.Mutex
	cancelled bool
	onCancel  []func()
}

// NewNotification returns a live (not yet cancelled) Notification.
func NewNotification() *Notification { return &Notification{} }

// Cancel marks the notification cancelled and runs every registered
// callback exactly once. Calling Cancel again is a no-op.
func (n *Notification) Cancel() {
	n.mu.Lock()
	if n.cancelled {
		n.mu.Unlock()
		return
	}
	n.cancelled = true
	callbacks := n.onCancel
	n.onCancel = nil
	n.mu.Unlock()
	for _, cb := range callbacks {
		cb()
	}
}

// IsCancelled reports the current cancellation state.
func (n *Notification) IsCancelled() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cancelled
}

// OnCancel registers fn to run when Cancel is called. If the
// notification is already cancelled, fn runs immediately on the
// calling goroutine.
func (n *Notification) OnCancel(fn func()) {
	n.mu.Lock()
	if n.cancelled {
		n.mu.Unlock()
		fn()
		return
	}
	n.onCancel = append(n.onCancel, fn)
	n.mu.Unlock()
}

// Queue is a FIFO of pending callbacks belonging to one thread of
// control (the editor's main loop owns exactly one). Push is safe to
// call from any goroutine; Drain must only be called by the owner.
type Queue struct {
	mu    sync.Mutex
	items []func()
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue { return &Queue{} }

// Push appends fn to the queue.
func (q *Queue) Push(fn func()) {
	q.mu.Lock()
	q.items = append(q.items, fn)
	q.mu.Unlock()
}

// Len reports the number of pending callbacks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain runs and removes every callback queued at the time of the
// call. Callbacks pushed by a callback that Drain itself runs are
// picked up on the next Drain, not the current one, so one slow
// producer can't starve the caller inside a single Drain call.
func (q *Queue) Drain() {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	for _, fn := range items {
		fn()
	}
}
