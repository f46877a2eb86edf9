// ABOUTME: Unbounded FIFO of outbound ResourceProviderMessage values
// ABOUTME: Mutex-guarded slice plus a condition variable for the draining consumer

package provider

import "sync"

// OutboundQueue is the unbounded FIFO of ResourceProviderMessage values the
// actor produces and the rest of the agent drains. No library in the
// surrounding stack offers an unbounded MPSC queue primitive, so this is a
// small hand-rolled structure: a mutex-guarded slice plus a condition
// variable wakes a blocked consumer. Multiple producers (the Manager's
// handlers, on whichever goroutine serves the request; Push is safe for any
// caller) / single consumer (Pop, typically called from one draining
// goroutine).
type OutboundQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []*ResourceProviderMessage
	closed bool
}

// NewOutboundQueue returns an empty queue ready for use.
func NewOutboundQueue() *OutboundQueue {
	q := &OutboundQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends a message to the tail of the queue and wakes any blocked
// consumer. No-op once Close has been called.
func (q *OutboundQueue) Push(msg *ResourceProviderMessage) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.items = append(q.items, msg)
	q.cond.Signal()
}

// Pop blocks until a message is available or the queue is closed, returning
// (nil, false) in the latter case once drained.
func (q *OutboundQueue) Pop() (*ResourceProviderMessage, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}

	msg := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return msg, true
}

// TryPop returns the head message without blocking; ok is false if the
// queue is currently empty.
func (q *OutboundQueue) TryPop() (msg *ResourceProviderMessage, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	msg = q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return msg, true
}

// Len reports the number of messages currently queued.
func (q *OutboundQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close marks the queue closed, waking any blocked Pop so it can return.
// Items already queued remain poppable until drained; Push after Close is
// silently dropped.
func (q *OutboundQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}
