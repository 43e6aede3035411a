// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormMatchEvent 比赛事件的 GORM 模型
type GormMatchEvent struct {
	gorm.Model
	EventID   string `gorm:"uniqueIndex;not null"`
	Kind      string `gorm:"index;not null"`
	Slot      int    `gorm:"not null"`
	Actor     int    `gorm:"default:-1"`
	SessionID string `gorm:"index"`
	HP        int
	X         int
	Y         int
}

func (GormMatchEvent) TableName() string {
	return "match_events"
}

// NewGormMatchEvent converts a match event into its table row.
func NewGormMatchEvent(e MatchEvent) GormMatchEvent {
	row := GormMatchEvent{
		EventID:   e.ID,
		Kind:      string(e.Kind),
		Slot:      e.Slot,
		Actor:     e.Actor,
		SessionID: e.SessionID,
		HP:        e.HP,
		X:         e.X,
		Y:         e.Y,
	}
	row.CreatedAt = e.CreatedAt
	return row
}

// Event converts a row back into a match event.
func (g GormMatchEvent) Event() MatchEvent {
	return MatchEvent{
		ID:        g.EventID,
		Kind:      EventKind(g.Kind),
		Slot:      g.Slot,
		Actor:     g.Actor,
		SessionID: g.SessionID,
		HP:        g.HP,
		X:         g.X,
		Y:         g.Y,
		CreatedAt: g.CreatedAt,
	}
}
