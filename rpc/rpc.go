package rpc

import (
	"context"
	"errors"
	"net"
	"net/rpc"

	"github.com/wfunc/gridarena/logger"
	"github.com/wfunc/gridarena/models"
	"github.com/wfunc/gridarena/persistence"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	rpc      *rpc.Server
}

// NewServer listens on addr and registers svc under the name "ArenaService".
func NewServer(addr string, svc *ArenaService) (*Server, error) {
	rs := rpc.NewServer()
	if err := rs.RegisterName("ArenaService", svc); err != nil {
		return nil, err
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{listener: listener, rpc: rs}, nil
}

// Addr 返回实际监听地址
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Start begins listening for RPC requests. It returns once the listener is
// closed.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.listener.Addr())
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go s.rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// Arena is what the admin service reads from the running room.
type Arena interface {
	Snapshot() string
	Occupants() int
	Capacity() int
}

// ArenaService exposes read-only arena state over net/rpc.
type ArenaService struct {
	arena  Arena
	events persistence.Database
}

// NewArenaService creates a new ArenaService. events may be nil.
func NewArenaService(arena Arena, events persistence.Database) *ArenaService {
	return &ArenaService{arena: arena, events: events}
}

type SnapshotArgs struct{}

type SnapshotReply struct {
	State     string
	Occupants int
	Capacity  int
}

// Snapshot returns the rendered state, as players would receive it.
func (as *ArenaService) Snapshot(args *SnapshotArgs, reply *SnapshotReply) error {
	reply.State = as.arena.Snapshot()
	reply.Occupants = as.arena.Occupants()
	reply.Capacity = as.arena.Capacity()
	return nil
}

type RecentEventsArgs struct {
	Limit int
}

type RecentEventsReply struct {
	Events []models.MatchEvent
}

var ErrNoEventStore = errors.New("no event store configured")

// RecentEvents returns the newest match events first.
func (as *ArenaService) RecentEvents(args *RecentEventsArgs, reply *RecentEventsReply) error {
	if as.events == nil {
		return ErrNoEventStore
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistence.QueryTimeout)
	defer cancel()

	events, err := as.events.RecentEvents(ctx, args.Limit)
	if err != nil {
		return err
	}
	reply.Events = events
	return nil
}
