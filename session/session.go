// session/session.go
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/wfunc/gridarena/network"
)

// OutboxSize 每个会话的发送队列容量
const OutboxSize = 64

// ErrDeliveryFailed is returned when a message cannot be queued: the session
// is closed, its queue is full, or its transport already failed.
var ErrDeliveryFailed = errors.New("delivery failed")

// Session is one connected player. Messages are queued and written by a
// dedicated pump goroutine so senders never block on the network.
type Session struct {
	ID         string
	Slot       int
	Conn       network.Connection
	CreatedAt  time.Time
	LastActive time.Time

	outbox chan []byte
	done   chan struct{}
	closed bool
	broken bool
	mutex  sync.Mutex
}

// NewSession wraps a connection. Start must be called to begin writing.
func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Slot:       -1,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
		outbox:     make(chan []byte, OutboxSize),
		done:       make(chan struct{}),
	}
}

// Start launches the write pump.
func (s *Session) Start() {
	go s.writePump()
}

func (s *Session) GetID() string {
	return s.ID
}

// Send queues one protocol message without blocking.
func (s *Session) Send(msg []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed || s.broken {
		return ErrDeliveryFailed
	}
	select {
	case s.outbox <- msg:
		return nil
	default:
		return ErrDeliveryFailed
	}
}

// SendLine queues a newline-terminated text message.
func (s *Session) SendLine(msg string) error {
	return s.Send(network.Line(msg))
}

// Touch records inbound activity.
func (s *Session) Touch() {
	s.mutex.Lock()
	s.LastActive = time.Now()
	s.mutex.Unlock()
}

// Close stops accepting messages. Already queued messages are still written
// before the connection is closed. Close is idempotent.
func (s *Session) Close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.outbox)
}

// Done is closed once the pump has exited and the connection is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.closed
}

func (s *Session) writePump() {
	defer close(s.done)
	defer s.Conn.Close()

	for msg := range s.outbox {
		if err := s.Conn.Send(msg); err != nil {
			s.mutex.Lock()
			s.broken = true
			s.mutex.Unlock()
			// The deferred close unblocks the reader, which releases the
			// session through the normal disconnect path.
			return
		}
	}
}
