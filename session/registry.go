// session/registry.go
package session

import "errors"

// ErrCapacityExceeded is returned by Reserve when every slot is taken.
var ErrCapacityExceeded = errors.New("capacity exceeded")

var ErrSlotNotPending = errors.New("slot is not pending")

// SlotStatus 槽位的三态
type SlotStatus int

const (
	SlotEmpty SlotStatus = iota
	SlotPending
	SlotActive
)

type slotEntry struct {
	status  SlotStatus
	session *Session
}

// Registry maps slot indexes to sessions. It is not safe for concurrent use
// on its own; the room lock guards it together with the game state.
type Registry struct {
	slots []slotEntry
	count int
}

func NewRegistry(capacity int) *Registry {
	return &Registry{slots: make([]slotEntry, capacity)}
}

// Capacity 返回槽位总数
func (r *Registry) Capacity() int {
	return len(r.slots)
}

// Count returns the number of pending and active slots.
func (r *Registry) Count() int {
	return r.count
}

// Reserve marks the lowest empty slot pending.
func (r *Registry) Reserve() (int, error) {
	if r.count >= len(r.slots) {
		return -1, ErrCapacityExceeded
	}
	for i := range r.slots {
		if r.slots[i].status == SlotEmpty {
			r.slots[i].status = SlotPending
			r.count++
			return i, nil
		}
	}
	return -1, ErrCapacityExceeded
}

// Activate binds a session to a pending slot.
func (r *Registry) Activate(slot int, s *Session) error {
	if slot < 0 || slot >= len(r.slots) || r.slots[slot].status != SlotPending {
		return ErrSlotNotPending
	}
	s.Slot = slot
	r.slots[slot] = slotEntry{status: SlotActive, session: s}
	return nil
}

// Release frees a slot. It returns the session that held it, or nil if the
// slot was already empty or only pending.
func (r *Registry) Release(slot int) *Session {
	if slot < 0 || slot >= len(r.slots) || r.slots[slot].status == SlotEmpty {
		return nil
	}
	s := r.slots[slot].session
	r.slots[slot] = slotEntry{}
	r.count--
	return s
}

// Get returns the active session on slot.
func (r *Registry) Get(slot int) (*Session, bool) {
	if slot < 0 || slot >= len(r.slots) || r.slots[slot].status != SlotActive {
		return nil, false
	}
	return r.slots[slot].session, true
}

// Status 返回槽位状态
func (r *Registry) Status(slot int) SlotStatus {
	if slot < 0 || slot >= len(r.slots) {
		return SlotEmpty
	}
	return r.slots[slot].status
}

// Owns reports whether s is the active session on its slot.
func (r *Registry) Owns(s *Session) bool {
	cur, ok := r.Get(s.Slot)
	return ok && cur == s
}

// ForEachActive calls fn for every active slot in ascending order.
func (r *Registry) ForEachActive(fn func(slot int, s *Session)) {
	for i, e := range r.slots {
		if e.status == SlotActive {
			fn(i, e.session)
		}
	}
}
