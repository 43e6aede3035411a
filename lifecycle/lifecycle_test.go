package lifecycle

import (
	"errors"
	"testing"
)

func TestConnectionMachine_HappyPath(t *testing.T) {
	m := NewConnectionMachine()
	if m.Current() != Accepted {
		t.Fatalf("Expected initial phase accepted, got %s", m.Current())
	}

	for _, to := range []Phase{Reserved, Active, Draining, Closed} {
		if err := m.Transition(to); err != nil {
			t.Fatalf("Transition to %s failed: %v", to, err)
		}
		if m.Current() != to {
			t.Fatalf("Expected phase %s, got %s", to, m.Current())
		}
	}
}

func TestConnectionMachine_Rejection(t *testing.T) {
	m := NewConnectionMachine()
	if err := m.Transition(Closed); err != nil {
		t.Fatalf("Accepted -> Closed should be allowed: %v", err)
	}
}

func TestConnectionMachine_IllegalTransitions(t *testing.T) {
	m := NewConnectionMachine()

	if err := m.Transition(Active); !errors.Is(err, ErrTransitionNotAllowed) {
		t.Errorf("Accepted -> Active should fail, got %v", err)
	}
	if m.Current() != Accepted {
		t.Errorf("Phase should stay accepted after a rejected transition, got %s", m.Current())
	}

	m.Transition(Closed)
	if err := m.Transition(Reserved); !errors.Is(err, ErrTransitionNotAllowed) {
		t.Errorf("Closed is terminal, got %v", err)
	}
}

func TestMachine_ConditionBlocksTransition(t *testing.T) {
	m := NewMachine(Accepted)
	allow := false
	m.AddTransition(Accepted, Reserved, func() bool { return allow })

	if err := m.Transition(Reserved); !errors.Is(err, ErrTransitionNotAllowed) {
		t.Fatalf("Expected blocked transition, got %v", err)
	}

	allow = true
	if err := m.Transition(Reserved); err != nil {
		t.Fatalf("Expected transition to pass once the condition holds: %v", err)
	}
}

func TestMachine_OnChange(t *testing.T) {
	m := NewConnectionMachine()
	var seen [][2]Phase
	m.OnChange(func(from, to Phase) {
		seen = append(seen, [2]Phase{from, to})
	})

	m.Transition(Reserved)
	m.Transition(Active)
	m.Transition(Reserved) // illegal, must not be reported

	if len(seen) != 2 {
		t.Fatalf("Expected 2 hook calls, got %d", len(seen))
	}
	if seen[1] != [2]Phase{Reserved, Active} {
		t.Errorf("Unexpected second transition %v", seen[1])
	}
}
