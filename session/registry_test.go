package session

import (
	"errors"
	"testing"
)

func TestRegistry_ReserveLowestSlot(t *testing.T) {
	r := NewRegistry(3)

	for want := 0; want < 3; want++ {
		slot, err := r.Reserve()
		if err != nil {
			t.Fatalf("Reserve failed: %v", err)
		}
		if slot != want {
			t.Errorf("Expected slot %d, got %d", want, slot)
		}
		if r.Status(slot) != SlotPending {
			t.Errorf("Expected slot %d pending", slot)
		}
	}

	if _, err := r.Reserve(); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("Expected ErrCapacityExceeded, got %v", err)
	}
	if r.Count() != 3 {
		t.Errorf("Expected count 3, got %d", r.Count())
	}
}

func TestRegistry_ActivateGetRelease(t *testing.T) {
	r := NewRegistry(2)
	sess := NewSession("a", &MockConnection{})

	slot, _ := r.Reserve()
	if _, ok := r.Get(slot); ok {
		t.Fatal("Pending slot should not be returned by Get")
	}
	if err := r.Activate(slot, sess); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if sess.Slot != slot {
		t.Errorf("Session slot not set: %d", sess.Slot)
	}

	got, ok := r.Get(slot)
	if !ok || got != sess {
		t.Fatal("Get should return the activated session")
	}
	if !r.Owns(sess) {
		t.Error("Owns should be true for the active session")
	}

	if released := r.Release(slot); released != sess {
		t.Fatal("Release should return the session")
	}
	if released := r.Release(slot); released != nil {
		t.Error("Second release should return nil")
	}
	if r.Count() != 0 {
		t.Errorf("Expected count 0, got %d", r.Count())
	}
	if r.Owns(sess) {
		t.Error("Released session should not own the slot")
	}
}

func TestRegistry_ActivateRequiresPending(t *testing.T) {
	r := NewRegistry(2)
	sess := NewSession("a", &MockConnection{})

	if err := r.Activate(0, sess); !errors.Is(err, ErrSlotNotPending) {
		t.Errorf("Expected ErrSlotNotPending, got %v", err)
	}
	if err := r.Activate(5, sess); !errors.Is(err, ErrSlotNotPending) {
		t.Errorf("Expected ErrSlotNotPending for out of range slot, got %v", err)
	}
}

func TestRegistry_SlotReuseAfterRelease(t *testing.T) {
	r := NewRegistry(2)
	old := NewSession("old", &MockConnection{})
	other := NewSession("other", &MockConnection{})

	r.Reserve()
	r.Activate(0, old)
	r.Reserve()
	r.Activate(1, other)

	r.Release(0)
	slot, err := r.Reserve()
	if err != nil || slot != 0 {
		t.Fatalf("Expected freed slot 0 to be reused, got %d (%v)", slot, err)
	}

	fresh := NewSession("fresh", &MockConnection{})
	r.Activate(slot, fresh)
	if r.Owns(old) {
		t.Error("Old session must not own a reused slot")
	}
	if !r.Owns(fresh) {
		t.Error("New session should own the reused slot")
	}
}

func TestRegistry_ForEachActiveOrder(t *testing.T) {
	r := NewRegistry(4)
	for i := 0; i < 4; i++ {
		slot, _ := r.Reserve()
		if i != 2 {
			r.Activate(slot, NewSession("s", &MockConnection{}))
		}
	}

	var seen []int
	r.ForEachActive(func(slot int, s *Session) {
		seen = append(seen, slot)
	})
	if len(seen) != 3 || seen[0] != 0 || seen[1] != 1 || seen[2] != 3 {
		t.Errorf("Unexpected active slots %v", seen)
	}
}
