package session

import (
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct {
	mu      sync.Mutex
	sent    []string
	closed  bool
	sendErr error
}

func (m *MockConnection) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, string(data))
	return nil
}

func (m *MockConnection) ReadCommand() (string, error) { return "", io.EOF }

func (m *MockConnection) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockConnection) RemoteAddr() net.Addr { return &net.TCPAddr{} }

func (m *MockConnection) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

func (m *MockConnection) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func waitDone(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("write pump did not exit")
	}
}

func TestSession_SendThenCloseDrains(t *testing.T) {
	conn := &MockConnection{}
	s := NewSession("s1", conn)
	s.Start()

	s.SendLine("READY")
	s.SendLine("You were killed by Player 1")
	s.Close()
	waitDone(t, s)

	sent := conn.Sent()
	if len(sent) != 2 || sent[0] != "READY\n" || sent[1] != "You were killed by Player 1\n" {
		t.Errorf("Unexpected delivery order: %q", sent)
	}
	if !conn.IsClosed() {
		t.Error("Connection should be closed after the pump drains")
	}
}

func TestSession_SendAfterClose(t *testing.T) {
	s := NewSession("s1", &MockConnection{})
	s.Close()
	s.Close()

	if err := s.SendLine("late"); !errors.Is(err, ErrDeliveryFailed) {
		t.Errorf("Expected ErrDeliveryFailed, got %v", err)
	}
	if !s.Closed() {
		t.Error("Closed should report true")
	}
}

func TestSession_FullOutbox(t *testing.T) {
	s := NewSession("s1", &MockConnection{})

	for i := 0; i < OutboxSize; i++ {
		if err := s.SendLine("x"); err != nil {
			t.Fatalf("send %d failed: %v", i, err)
		}
	}
	if err := s.SendLine("overflow"); !errors.Is(err, ErrDeliveryFailed) {
		t.Errorf("Expected ErrDeliveryFailed on full outbox, got %v", err)
	}
}

func TestSession_BrokenTransport(t *testing.T) {
	conn := &MockConnection{sendErr: errors.New("broken pipe")}
	s := NewSession("s1", conn)
	s.Start()

	s.SendLine("STATE")

	deadline := time.Now().Add(2 * time.Second)
	for !conn.IsClosed() {
		if time.Now().After(deadline) {
			t.Fatal("connection was not closed after a write error")
		}
		time.Sleep(5 * time.Millisecond)
	}
	waitDone(t, s)

	if err := s.SendLine("again"); !errors.Is(err, ErrDeliveryFailed) {
		t.Errorf("Expected ErrDeliveryFailed after transport failure, got %v", err)
	}
	s.Close()
}
