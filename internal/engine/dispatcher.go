package engine

import (
	"context"
	"errors"
	"log/slog"
)

// Dispatcher is the single-writer event loop in front of a Manager.
//
// Tickers, HTTP handlers and deferred transitions call Enqueue from any
// goroutine; Run applies events one at a time in FIFO order, so operations
// for one viewer never interleave.
//
// Thread-safety model:
//   - Enqueue(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
type Dispatcher struct {
	manager *Manager
	queue   *eventQueue
	ids     IDGenerator
	clock   seqClock
	logger  *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithIDGenerator sets the event id source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) DispatcherOption {
	return func(d *Dispatcher) {
		d.ids = g
	}
}

// WithDispatchLogger sets the loop's logger. Default: the manager's logger.
func WithDispatchLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// NewDispatcher attaches a dispatcher to m. From here on, m's deferred
// transitions are enqueued instead of applied on the timer goroutine.
func NewDispatcher(m *Manager, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		manager: m,
		queue:   newEventQueue(),
		ids:     UUIDv7Generator{},
		logger:  m.logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	m.setDeferred(func(ev Event) {
		if !d.Enqueue(ev) {
			d.logger.Debug("deferred transition dropped: dispatcher stopped",
				"event", ev.Kind,
				"viewer", ev.Viewer.Name(),
			)
		}
	})
	return d
}

// Enqueue stamps ev with an id and sequence number and queues it.
// Returns false if the dispatcher has stopped.
func (d *Dispatcher) Enqueue(ev Event) bool {
	if ev.ID == "" {
		ev.ID = d.ids.Generate()
	}
	ev.Seq = d.clock.Next()
	return d.queue.Enqueue(ev)
}

// QueueLen returns the number of events waiting.
func (d *Dispatcher) QueueLen() int {
	return d.queue.Len()
}

// Run applies events until ctx is cancelled or Stop is called and the
// queue has drained. Failed events are logged and the loop continues.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("dispatcher starting")

	for {
		if ev, ok := d.queue.TryDequeue(); ok {
			d.process(ev)
			continue
		}

		select {
		case <-ctx.Done():
			d.logger.Info("dispatcher stopping: context cancelled")
			d.queue.Close()
			return ctx.Err()

		case <-d.queue.Wait():
			if d.queue.Drained() {
				d.logger.Info("dispatcher stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue. Run returns once pending events are applied.
func (d *Dispatcher) Stop() {
	d.queue.Close()
}

func (d *Dispatcher) process(ev Event) {
	err := d.manager.Apply(ev)
	if err == nil {
		d.logger.Debug("event applied",
			"id", ev.ID,
			"seq", ev.Seq,
			"event", ev.Kind,
			"viewer", ev.Viewer.Name(),
		)
		return
	}

	var re *ReconcileError
	if errors.As(err, &re) {
		d.logger.Debug("event skipped",
			"id", ev.ID,
			"seq", ev.Seq,
			"event", ev.Kind,
			"code", re.Code,
			"reason", re.Message,
		)
		return
	}
	d.logger.Error("event failed",
		"id", ev.ID,
		"seq", ev.Seq,
		"event", ev.Kind,
		"error", err,
	)
}
