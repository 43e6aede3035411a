package persistence

import (
	"context"
	"sync"

	"github.com/wfunc/gridarena/models"
)

// DefaultMemoryLimit caps how many events the memory store keeps.
const DefaultMemoryLimit = 1024

// MemoryStore keeps the most recent events in a ring.
type MemoryStore struct {
	mutex  sync.RWMutex
	events []models.MatchEvent
	limit  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{limit: DefaultMemoryLimit}
}

func (m *MemoryStore) SaveEvent(ctx context.Context, event models.MatchEvent) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.events = append(m.events, event)
	if len(m.events) > m.limit {
		m.events = m.events[len(m.events)-m.limit:]
	}
	return nil
}

// RecentEvents returns up to limit events, newest first.
func (m *MemoryStore) RecentEvents(ctx context.Context, limit int) ([]models.MatchEvent, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if limit <= 0 || limit > len(m.events) {
		limit = len(m.events)
	}
	out := make([]models.MatchEvent, 0, limit)
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.events[i])
	}
	return out, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
