package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/wfunc/gridarena/models"
)

func TestMemoryStore_RecentEventsNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.SaveEvent(ctx, models.MatchEvent{Slot: i, Kind: models.EventJoin}); err != nil {
			t.Fatalf("SaveEvent failed: %v", err)
		}
	}

	events, err := store.RecentEvents(ctx, 2)
	if err != nil {
		t.Fatalf("RecentEvents failed: %v", err)
	}
	if len(events) != 2 || events[0].Slot != 2 || events[1].Slot != 1 {
		t.Errorf("Unexpected events %+v", events)
	}

	all, _ := store.RecentEvents(ctx, 0)
	if len(all) != 3 {
		t.Errorf("Expected all 3 events, got %d", len(all))
	}
}

func TestMemoryStore_Limit(t *testing.T) {
	store := &MemoryStore{limit: 2}
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		store.SaveEvent(ctx, models.MatchEvent{Slot: i})
	}

	events, _ := store.RecentEvents(ctx, 10)
	if len(events) != 2 || events[0].Slot != 4 || events[1].Slot != 3 {
		t.Errorf("Expected only the two newest events, got %+v", events)
	}
}

func TestOpen_Drivers(t *testing.T) {
	for _, driver := range []string{"", "none", "memory"} {
		db, err := Open(Options{Driver: driver})
		if err != nil {
			t.Fatalf("Open(%q) failed: %v", driver, err)
		}
		if _, ok := db.(*MemoryStore); !ok {
			t.Errorf("Open(%q) should return a memory store, got %T", driver, db)
		}
		db.Close()
	}

	if _, err := Open(Options{Driver: "mongo"}); !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("Expected ErrUnknownDriver, got %v", err)
	}
}
