// lifecycle/lifecycle.go
package lifecycle

import (
	"errors"
	"fmt"
	"sync"
)

// Phase 是连接生命周期中的阶段
type Phase string

const (
	Accepted Phase = "accepted"
	Reserved Phase = "reserved"
	Active   Phase = "active"
	Draining Phase = "draining"
	Closed   Phase = "closed"
)

// ErrTransitionNotAllowed is returned when a phase change is not in the table.
var ErrTransitionNotAllowed = errors.New("phase transition not allowed")

// Machine tracks one connection's phase. Only transitions registered with
// AddTransition are accepted.
type Machine struct {
	current     Phase
	transitions map[Phase]map[Phase]func() bool // from -> to -> condition
	onChange    func(from, to Phase)
	mutex       sync.RWMutex
}

// NewMachine creates a machine in the given phase with no transitions.
func NewMachine(initial Phase) *Machine {
	return &Machine{
		current:     initial,
		transitions: make(map[Phase]map[Phase]func() bool),
	}
}

// NewConnectionMachine returns a machine in Accepted with the connection
// lifecycle edges registered:
//
//	Accepted -> Reserved -> Active -> Draining -> Closed
//	Accepted -> Closed   (capacity rejection)
//	Reserved -> Closed   (no spawn cell)
//	Active   -> Closed   (abrupt teardown)
//
// QUIT, elimination and disconnect all pass through Draining.
func NewConnectionMachine() *Machine {
	m := NewMachine(Accepted)
	m.AddTransition(Accepted, Reserved, nil)
	m.AddTransition(Accepted, Closed, nil)
	m.AddTransition(Reserved, Active, nil)
	m.AddTransition(Reserved, Closed, nil)
	m.AddTransition(Active, Draining, nil)
	m.AddTransition(Active, Closed, nil)
	m.AddTransition(Draining, Closed, nil)
	return m
}

// OnChange registers a hook called after every successful transition.
func (m *Machine) OnChange(fn func(from, to Phase)) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.onChange = fn
}

// AddTransition allows from -> to. A nil condition always passes.
func (m *Machine) AddTransition(from, to Phase, condition func() bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.transitions[from]; !exists {
		m.transitions[from] = make(map[Phase]func() bool)
	}
	m.transitions[from][to] = condition
}

// Transition moves the machine to phase to.
func (m *Machine) Transition(to Phase) error {
	m.mutex.Lock()
	from := m.current
	targets, ok := m.transitions[from]
	if !ok {
		m.mutex.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, from, to)
	}
	condition, ok := targets[to]
	if !ok || (condition != nil && !condition()) {
		m.mutex.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, from, to)
	}
	m.current = to
	hook := m.onChange
	m.mutex.Unlock()

	if hook != nil {
		hook(from, to)
	}
	return nil
}

// Current 返回当前阶段
func (m *Machine) Current() Phase {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.current
}
