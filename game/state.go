// game/state.go
package game

import "errors"

// FullHP 新玩家的初始生命值
const FullHP = 100

var ErrNoSpawnCell = errors.New("no free spawn cell")

// Cell 是地形格子的符号
type Cell byte

const (
	CellEmpty    Cell = '.'
	CellObstacle Cell = '#'
	CellPickup   Cell = '+'
)

// Player 是一个槽位上的玩家状态
type Player struct {
	X      int
	Y      int
	HP     int
	Active bool
}

// State 是竞技场的权威状态。
// Player markers are never written into the terrain; they are overlaid when
// the grid is read, so an active player always shows exactly one marker.
// State is not safe for concurrent use; the room serializes access.
type State struct {
	Rows      int
	Cols      int
	Players   []Player
	Occupants int
	terrain   [][]Cell
}

// NewState builds an empty arena for the given layout. The layout must
// already be validated.
func NewState(layout Layout, capacity int) *State {
	terrain := make([][]Cell, layout.Rows)
	for r := range terrain {
		terrain[r] = make([]Cell, layout.Cols)
		for c := range terrain[r] {
			terrain[r][c] = CellEmpty
		}
	}
	for _, p := range layout.Obstacles {
		terrain[p.X][p.Y] = CellObstacle
	}
	for _, p := range layout.Pickups {
		terrain[p.X][p.Y] = CellPickup
	}

	players := make([]Player, capacity)
	for i := range players {
		players[i] = Player{X: -1, Y: -1, HP: FullHP}
	}

	return &State{
		Rows:    layout.Rows,
		Cols:    layout.Cols,
		Players: players,
		terrain: terrain,
	}
}

// Marker returns the grid letter for a slot.
func Marker(slot int) byte {
	return byte('A' + slot)
}

// Capacity 返回槽位数量
func (s *State) Capacity() int {
	return len(s.Players)
}

// InBounds reports whether (x,y) lies on the grid.
func (s *State) InBounds(x, y int) bool {
	return x >= 0 && x < s.Rows && y >= 0 && y < s.Cols
}

// Terrain returns the terrain under (x,y), ignoring players.
func (s *State) Terrain(x, y int) Cell {
	return s.terrain[x][y]
}

// OccupantAt returns the slot of the active player standing on (x,y).
func (s *State) OccupantAt(x, y int) (int, bool) {
	for i, p := range s.Players {
		if p.Active && p.X == x && p.Y == y {
			return i, true
		}
	}
	return -1, false
}

// Symbol returns what the grid shows at (x,y): a player marker if an active
// player stands there, otherwise the terrain.
func (s *State) Symbol(x, y int) byte {
	if slot, ok := s.OccupantAt(x, y); ok {
		return Marker(slot)
	}
	return byte(s.terrain[x][y])
}

// Spawn activates a slot with full health on its start cell.
func (s *State) Spawn(slot int) error {
	pos, ok := s.spawnCell(slot)
	if !ok {
		return ErrNoSpawnCell
	}
	p := &s.Players[slot]
	if !p.Active {
		s.Occupants++
	}
	*p = Player{X: pos.X, Y: pos.Y, HP: FullHP, Active: true}
	return nil
}

// spawnCell prefers (slot mod rows, 0) and falls back to the first free
// empty cell in row-major order.
func (s *State) spawnCell(slot int) (Pos, bool) {
	preferred := Pos{X: slot % s.Rows, Y: 0}
	if s.free(preferred.X, preferred.Y) {
		return preferred, true
	}
	for x := 0; x < s.Rows; x++ {
		for y := 0; y < s.Cols; y++ {
			if s.free(x, y) {
				return Pos{X: x, Y: y}, true
			}
		}
	}
	return Pos{}, false
}

func (s *State) free(x, y int) bool {
	if s.terrain[x][y] != CellEmpty {
		return false
	}
	_, taken := s.OccupantAt(x, y)
	return !taken
}

// Remove deactivates a slot. It reports false if the slot was not active.
func (s *State) Remove(slot int) bool {
	if slot < 0 || slot >= len(s.Players) || !s.Players[slot].Active {
		return false
	}
	s.Players[slot].Active = false
	s.Players[slot].X = -1
	s.Players[slot].Y = -1
	s.Occupants--
	return true
}
