package engine

import (
	"sync"

	"github.com/roach88/sbstats/internal/display"
)

// EventKind distinguishes board operations.
type EventKind int

const (
	EventCreate EventKind = iota + 1
	EventOverlay
	EventSendUpdate
	EventRefresh
	EventUpdate
	EventUnregister
	EventForget
)

func (k EventKind) String() string {
	switch k {
	case EventCreate:
		return "create"
	case EventOverlay:
		return "overlay"
	case EventSendUpdate:
		return "send_update"
	case EventRefresh:
		return "refresh"
	case EventUpdate:
		return "update"
	case EventUnregister:
		return "unregister"
	case EventForget:
		return "forget"
	default:
		return "unknown"
	}
}

// Event is one board operation for one viewer.
type Event struct {
	// ID and Seq are stamped by the Dispatcher on enqueue.
	ID  string
	Seq int64

	Kind   EventKind
	Viewer display.Viewer

	// Complete applies to EventRefresh.
	Complete bool
	// Title and Value apply to EventUpdate.
	Title string
	Value int
}

// eventQueue is a thread-safe unbounded FIFO queue for events.
//
// The signal channel (buffered, size 1) lets Run wait on the queue and the
// context at once. Closing the queue closes the channel, waking the waiter.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.events = append(q.events, e)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front event without blocking.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}
	e := q.events[0]
	// drop the viewer reference so the backing array does not retain it
	q.events[0] = Event{}
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return e, true
}

// Wait returns a channel that signals when events may be available.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Drained reports whether the queue is closed and empty.
func (q *eventQueue) Drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.events) == 0
}

// Close rejects further events and wakes the waiter. Idempotent.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
