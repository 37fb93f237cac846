package events

import (
	"go.uber.org/zap"

	"github.com/avremote/avremote/internal/logging"
	"github.com/avremote/avremote/internal/monitoring"
)

// Queue is the single serialized event queue of a profile scope. Posting is
// safe from any goroutine and never blocks the caller; when the queue is
// full the event is dropped and counted. Items are delivered to the one
// consumer in FIFO arrival order.
type Queue struct {
	ch      chan Event
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// NewQueue creates a queue with the given capacity.
func NewQueue(capacity int, log *logging.Logger) *Queue {
	if capacity <= 0 {
		capacity = 128
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Queue{
		ch:  make(chan Event, capacity),
		log: log,
	}
}

// WithMetrics attaches a metrics collector for drop accounting.
func (q *Queue) WithMetrics(m *monitoring.Metrics) *Queue {
	q.metrics = m
	return q
}

// Post enqueues an event without blocking. It returns false when the queue
// is full and the event was dropped.
func (q *Queue) Post(ev Event) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		q.log.Warn("event queue full, dropping event",
			zap.String("kind", ev.Kind().String()),
		)
		if q.metrics != nil {
			q.metrics.RecordDrop()
		}
		return false
	}
}

// Events returns the consumer side of the queue.
func (q *Queue) Events() <-chan Event {
	return q.ch
}

// Len reports the number of queued items.
func (q *Queue) Len() int {
	return len(q.ch)
}
