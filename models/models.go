// models/models.go
package models

import (
	"time"
)

// EventKind 比赛事件类型
type EventKind string

const (
	EventJoin        EventKind = "join"
	EventQuit        EventKind = "quit"
	EventDisconnect  EventKind = "disconnect"
	EventElimination EventKind = "elimination"
)

// MatchEvent is one entry of the append-only match log. It records what
// happened in the arena; it is never read back into game state.
type MatchEvent struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	Slot      int       `json:"slot"`
	Actor     int       `json:"actor"` // attacker slot for eliminations, -1 otherwise
	SessionID string    `json:"session_id"`
	HP        int       `json:"hp"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	CreatedAt time.Time `json:"created_at"`
}
