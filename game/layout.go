// game/layout.go
package game

import (
	"errors"
	"fmt"
)

// MaxCapacity is bounded by the marker alphabet A..Z.
const MaxCapacity = 26

var ErrInvalidLayout = errors.New("invalid layout")

// Pos 是网格上的一个格子，X 为行，Y 为列
type Pos struct {
	X int `mapstructure:"x"`
	Y int `mapstructure:"y"`
}

// Layout 描述竞技场的地形
type Layout struct {
	Rows      int
	Cols      int
	Obstacles []Pos
	Pickups   []Pos
}

// DefaultLayout returns the classic 5x5 arena.
func DefaultLayout() Layout {
	return Layout{
		Rows:      5,
		Cols:      5,
		Obstacles: []Pos{{X: 2, Y: 2}},
		Pickups:   []Pos{{X: 3, Y: 1}, {X: 0, Y: 4}, {X: 1, Y: 3}, {X: 2, Y: 3}},
	}
}

// Validate checks the layout against a player capacity.
func (l Layout) Validate(capacity int) error {
	if l.Rows <= 0 || l.Cols <= 0 {
		return fmt.Errorf("%w: grid %dx%d", ErrInvalidLayout, l.Rows, l.Cols)
	}
	if capacity <= 0 || capacity > MaxCapacity {
		return fmt.Errorf("%w: capacity %d out of range 1..%d", ErrInvalidLayout, capacity, MaxCapacity)
	}
	obstacles := make(map[Pos]bool, len(l.Obstacles))
	for _, p := range l.Obstacles {
		if !l.inBounds(p) {
			return fmt.Errorf("%w: obstacle %v outside grid", ErrInvalidLayout, p)
		}
		obstacles[p] = true
	}
	for _, p := range l.Pickups {
		if !l.inBounds(p) {
			return fmt.Errorf("%w: pickup %v outside grid", ErrInvalidLayout, p)
		}
		if obstacles[p] {
			return fmt.Errorf("%w: cell %v is both obstacle and pickup", ErrInvalidLayout, p)
		}
	}
	return nil
}

func (l Layout) inBounds(p Pos) bool {
	return p.X >= 0 && p.X < l.Rows && p.Y >= 0 && p.Y < l.Cols
}
