// services/event_recorder.go
package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/wfunc/gridarena/logger"
	"github.com/wfunc/gridarena/models"
	"github.com/wfunc/gridarena/persistence"
)

// DefaultBuffer is the recorder queue length.
const DefaultBuffer = 256

// EventRecorder writes match events to a database from one worker goroutine.
// Record never blocks, so it is safe to call while holding the room lock.
type EventRecorder struct {
	db      persistence.Database
	events  chan models.MatchEvent
	done    chan struct{}
	closed  bool
	dropped int64
	mutex   sync.Mutex
}

func NewEventRecorder(db persistence.Database, buffer int) *EventRecorder {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	r := &EventRecorder{
		db:     db,
		events: make(chan models.MatchEvent, buffer),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

// Record queues an event, filling in its ID and timestamp. Events are dropped
// when the queue is full or the recorder is closed.
func (r *EventRecorder) Record(event models.MatchEvent) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.closed {
		atomic.AddInt64(&r.dropped, 1)
		return
	}
	select {
	case r.events <- event:
	default:
		atomic.AddInt64(&r.dropped, 1)
		logger.Log.Warnf("match event dropped: kind=%s slot=%d", event.Kind, event.Slot)
	}
}

// Dropped 返回被丢弃的事件数
func (r *EventRecorder) Dropped() int64 {
	return atomic.LoadInt64(&r.dropped)
}

// Close flushes queued events and stops the worker. It does not close the
// database.
func (r *EventRecorder) Close() {
	r.mutex.Lock()
	if r.closed {
		r.mutex.Unlock()
		<-r.done
		return
	}
	r.closed = true
	close(r.events)
	r.mutex.Unlock()
	<-r.done
}

func (r *EventRecorder) run() {
	defer close(r.done)
	for event := range r.events {
		ctx, cancel := context.WithTimeout(context.Background(), persistence.QueryTimeout)
		if err := r.db.SaveEvent(ctx, event); err != nil {
			logger.Log.Errorf("saving match event %s: %v", event.ID, err)
		}
		cancel()
	}
}
