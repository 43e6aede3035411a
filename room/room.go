// room/room.go
package room

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wfunc/gridarena/broadcast"
	"github.com/wfunc/gridarena/game"
	"github.com/wfunc/gridarena/lifecycle"
	"github.com/wfunc/gridarena/logger"
	"github.com/wfunc/gridarena/models"
	"github.com/wfunc/gridarena/network"
	"github.com/wfunc/gridarena/session"
)

// ErrRoomClosed is returned by Join after Shutdown.
var ErrRoomClosed = errors.New("room closed")

// Room 是竞技场的核心结构，唯一的互斥锁同时保护游戏状态和槽位表。
// Every mutation and the broadcast that follows it happen in one lock hold,
// so all sessions observe snapshots in the same order.
type Room struct {
	state     *game.State
	registry  *session.Registry
	publisher *broadcast.Publisher
	metrics   Metrics
	recorder  Recorder
	closed    bool
	mutex     sync.Mutex
}

// Option configures a Room.
type Option func(*Room)

func WithMetrics(m Metrics) Option {
	return func(r *Room) {
		if m != nil {
			r.metrics = m
		}
	}
}

func WithRecorder(rec Recorder) Option {
	return func(r *Room) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// New 创建一个新房间
func New(layout game.Layout, capacity int, opts ...Option) (*Room, error) {
	if err := layout.Validate(capacity); err != nil {
		return nil, err
	}
	registry := session.NewRegistry(capacity)
	r := &Room{
		state:     game.NewState(layout, capacity),
		registry:  registry,
		publisher: broadcast.NewPublisher(registry),
		metrics:   nopMetrics{},
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Join admits a connection: it reserves the lowest free slot, spawns the
// player, sends READY and publishes the new state. m, if not nil, is moved
// through Reserved and Active. The returned error wraps
// session.ErrCapacityExceeded when the arena is full, or is ErrRoomClosed
// after Shutdown.
func (r *Room) Join(conn network.Connection, m *lifecycle.Machine) (*session.Session, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		r.metrics.ConnectionRejected()
		return nil, ErrRoomClosed
	}
	slot, err := r.registry.Reserve()
	if err != nil {
		r.metrics.ConnectionRejected()
		return nil, err
	}
	advance(m, lifecycle.Reserved)

	if err := r.state.Spawn(slot); err != nil {
		r.registry.Release(slot)
		r.metrics.ConnectionRejected()
		return nil, fmt.Errorf("spawning player %d: %w", slot, err)
	}
	sess := session.NewSession(uuid.New().String(), conn)
	if err := r.registry.Activate(slot, sess); err != nil {
		r.state.Remove(slot)
		r.registry.Release(slot)
		return nil, fmt.Errorf("activating slot %d: %w", slot, err)
	}
	sess.Start()
	advance(m, lifecycle.Active)

	p := r.state.Players[slot]
	logger.Log.Infof("Player %d joined from %v at (%d,%d)", slot, conn.RemoteAddr(), p.X, p.Y)
	r.metrics.PlayerJoined()
	r.record(models.EventJoin, slot, -1, sess, p)

	if err := sess.SendLine(network.MsgReady); err != nil {
		r.dropLocked([]int{slot})
	}
	r.publishLocked()
	return sess, nil
}

// Handle applies one inbound line from sess. It reports gone when the
// session no longer owns a slot, either because it quit, was eliminated or
// was dropped, and the caller should stop reading.
func (r *Room) Handle(sess *session.Session, line string) (gone bool) {
	start := time.Now()
	r.mutex.Lock()
	defer r.mutex.Unlock()
	defer func() {
		r.metrics.ObserveCommandLatency(time.Since(start))
	}()

	if !r.registry.Owns(sess) {
		return true
	}
	sess.Touch()
	slot := sess.Slot

	cmd, err := game.ParseCommand(line)
	if err != nil {
		r.metrics.InvalidCommand()
		if sess.SendLine(network.MsgInvalidCommand) != nil {
			r.dropLocked([]int{slot})
			r.publishLocked()
			return true
		}
		return false
	}
	r.metrics.CommandReceived(cmd.Kind.String())

	before := make([]game.Player, len(r.state.Players))
	copy(before, r.state.Players)
	eff := game.Apply(r.state, slot, cmd)

	for _, e := range eff.Eliminated {
		logger.Log.Infof("Player %d killed Player %d", e.Attacker, e.Victim)
		r.metrics.PlayerEliminated()
		last := before[e.Victim]
		last.HP = r.state.Players[e.Victim].HP
		r.releaseLocked(e.Victim, models.EventElimination, e.Attacker, last, network.KilledBy(e.Attacker))
	}

	if eff.Chat != "" {
		r.dropLocked(r.publisher.ToOthers(slot, eff.Chat))
	}

	if eff.Departed {
		logger.Log.Infof("Player %d quit", slot)
		r.releaseLocked(slot, models.EventQuit, -1, before[slot], "")
		r.dropLocked(r.publisher.ToOthers(slot, eff.Notice))
	}

	if eff.Broadcast {
		r.publishLocked()
	}
	return !r.registry.Owns(sess)
}

// Leave releases sess after its transport failed. A session that no longer
// owns its slot is only closed; the slot may already belong to someone else.
func (r *Room) Leave(sess *session.Session) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.registry.Owns(sess) {
		sess.Close()
		return
	}
	slot := sess.Slot
	logger.Log.Infof("Player %d disconnected", slot)
	r.releaseLocked(slot, models.EventDisconnect, -1, r.state.Players[slot], "")
	r.publishLocked()
}

// Refresh publishes the current state when anyone is connected.
func (r *Room) Refresh() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.state.Occupants > 0 {
		r.publishLocked()
	}
}

// Snapshot 返回当前状态的文本表示
func (r *Room) Snapshot() string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return broadcast.Render(r.state)
}

// Occupants returns the number of active players.
func (r *Room) Occupants() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.state.Occupants
}

// Capacity 返回最大玩家数
func (r *Room) Capacity() int {
	return r.registry.Capacity()
}

// Shutdown releases every session and refuses later joins. Queued messages
// are still flushed before each connection closes.
func (r *Room) Shutdown() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.closed = true

	var slots []int
	r.registry.ForEachActive(func(slot int, _ *session.Session) {
		slots = append(slots, slot)
	})
	for _, slot := range slots {
		r.releaseLocked(slot, models.EventDisconnect, -1, r.state.Players[slot], "")
	}
}

// publishLocked repeats until a round completes without failures, so the
// last snapshot everyone receives already excludes dropped sessions.
func (r *Room) publishLocked() {
	for {
		failed := r.publisher.Publish(r.state)
		r.metrics.BroadcastSent()
		if len(failed) == 0 {
			return
		}
		r.dropLocked(failed)
	}
}

func (r *Room) dropLocked(slots []int) {
	for _, slot := range slots {
		if _, ok := r.registry.Get(slot); !ok {
			continue
		}
		logger.Log.Warnf("Player %d dropped: %v", slot, session.ErrDeliveryFailed)
		r.metrics.DeliveryFailed()
		r.releaseLocked(slot, models.EventDisconnect, -1, r.state.Players[slot], "")
	}
}

// releaseLocked frees slot in both the state and the registry, queues an
// optional farewell and closes the session.
func (r *Room) releaseLocked(slot int, kind models.EventKind, actor int, last game.Player, farewell string) {
	r.state.Remove(slot)
	sess := r.registry.Release(slot)
	if sess == nil {
		return
	}
	if farewell != "" {
		_ = sess.SendLine(farewell)
	}
	sess.Close()
	r.metrics.PlayerLeft()
	r.record(kind, slot, actor, sess, last)
}

func (r *Room) record(kind models.EventKind, slot, actor int, sess *session.Session, p game.Player) {
	r.recorder.Record(models.MatchEvent{
		Kind:      kind,
		Slot:      slot,
		Actor:     actor,
		SessionID: sess.ID,
		HP:        p.HP,
		X:         p.X,
		Y:         p.Y,
	})
}

func advance(m *lifecycle.Machine, to lifecycle.Phase) {
	if m == nil {
		return
	}
	if err := m.Transition(to); err != nil {
		logger.Log.Warnf("connection lifecycle: %v", err)
	}
}
