package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wfunc/gridarena/lifecycle"
	"github.com/wfunc/gridarena/logger"
	"github.com/wfunc/gridarena/network"
	"github.com/wfunc/gridarena/room"
)

// acceptBackoff 接受连接失败后的等待时间
const acceptBackoff = 50 * time.Millisecond

// GameServer accepts connections and runs one reader per client. All game
// decisions are left to the room.
type GameServer struct {
	room     *room.Room
	upgrader websocket.Upgrader
	wg       sync.WaitGroup
}

func NewGameServer(r *room.Room) *GameServer {
	return &GameServer{
		room: r,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  network.ReadBufferSize,
			WriteBufferSize: network.ReadBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}
}

// Serve accepts TCP clients on ln until ctx is cancelled or ln is closed.
// Accept errors on a live listener are logged and the loop continues.
func (s *GameServer) Serve(ctx context.Context, ln net.Listener) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-stop:
		}
	}()

	logger.Log.Infof("Game server listening on %s", ln.Addr())
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			logger.Log.Errorf("Accept error: %v", err)
			time.Sleep(acceptBackoff)
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(network.NewTCPConnection(conn))
		}()
	}
}

// HandleWebSocket upgrades the request and runs the client on this goroutine.
func (s *GameServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.wg.Add(1)
	defer s.wg.Done()
	s.handleConnection(network.NewWSConnection(conn))
}

// Wait blocks until every connection handler has returned.
func (s *GameServer) Wait() {
	s.wg.Wait()
}

func (s *GameServer) handleConnection(conn network.Connection) {
	addr := conn.RemoteAddr()
	m := lifecycle.NewConnectionMachine()
	m.OnChange(func(from, to lifecycle.Phase) {
		logger.Log.Debugf("Connection %v: %s -> %s", addr, from, to)
	})
	s.run(conn, m)
}

// run drives one connection through its lifecycle until it is closed.
func (s *GameServer) run(conn network.Connection, m *lifecycle.Machine) {
	addr := conn.RemoteAddr()
	sess, err := s.room.Join(conn, m)
	if err != nil {
		logger.Log.Infof("Rejected connection from %v: %v", addr, err)
		_ = conn.Send(network.Line(network.MsgServerFull))
		conn.Close()
		transition(m, lifecycle.Closed)
		return
	}
	logger.Log.Infof("New connection from %v, session ID: %s", addr, sess.GetID())

	for {
		line, err := conn.ReadCommand()
		if err != nil {
			transition(m, lifecycle.Draining)
			s.room.Leave(sess)
			transition(m, lifecycle.Closed)
			return
		}
		if gone := s.room.Handle(sess, line); gone {
			// QUIT or elimination: the room already released the slot and
			// the write pump closes the transport after the last notice.
			transition(m, lifecycle.Draining)
			transition(m, lifecycle.Closed)
			return
		}
	}
}

func transition(m *lifecycle.Machine, to lifecycle.Phase) {
	if err := m.Transition(to); err != nil {
		logger.Log.Warnf("Connection lifecycle: %v", err)
	}
}
