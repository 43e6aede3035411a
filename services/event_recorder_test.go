package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/wfunc/gridarena/models"
	"github.com/wfunc/gridarena/persistence"
)

func TestEventRecorder_FlushOnClose(t *testing.T) {
	store := persistence.NewMemoryStore()
	r := NewEventRecorder(store, 8)

	r.Record(models.MatchEvent{Kind: models.EventJoin, Slot: 0})
	r.Record(models.MatchEvent{Kind: models.EventElimination, Slot: 1, Actor: 0})
	r.Close()

	events, _ := store.RecentEvents(context.Background(), 0)
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Kind != models.EventElimination || events[1].Kind != models.EventJoin {
		t.Errorf("Unexpected order %+v", events)
	}
	for _, e := range events {
		if e.ID == "" || e.CreatedAt.IsZero() {
			t.Errorf("Event missing id or timestamp: %+v", e)
		}
	}
}

func TestEventRecorder_RecordAfterClose(t *testing.T) {
	r := NewEventRecorder(persistence.NewMemoryStore(), 1)
	r.Close()
	r.Close()

	r.Record(models.MatchEvent{Kind: models.EventQuit})
	if r.Dropped() != 1 {
		t.Errorf("Expected 1 dropped event, got %d", r.Dropped())
	}
}

// blockingStore holds the worker inside SaveEvent until released.
type blockingStore struct {
	persistence.MemoryStore
	release chan struct{}
	once    sync.Once
	entered chan struct{}
}

func (b *blockingStore) SaveEvent(ctx context.Context, e models.MatchEvent) error {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return errors.New("unavailable")
}

func TestEventRecorder_DropsWhenFull(t *testing.T) {
	store := &blockingStore{release: make(chan struct{}), entered: make(chan struct{})}
	r := NewEventRecorder(store, 1)

	r.Record(models.MatchEvent{Slot: 0})
	<-store.entered
	r.Record(models.MatchEvent{Slot: 1}) // fills the queue
	r.Record(models.MatchEvent{Slot: 2}) // dropped

	if r.Dropped() != 1 {
		t.Errorf("Expected 1 dropped event, got %d", r.Dropped())
	}
	close(store.release)
	r.Close()
}
