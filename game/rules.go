// game/rules.go
package game

import "fmt"

const (
	// AttackDamage is taken by every adjacent opponent per ATTACK.
	AttackDamage = 10
	// PickupHeal is granted when a player steps on a pickup.
	PickupHeal = 5
)

// Elimination 记录一次击杀
type Elimination struct {
	Victim   int
	Attacker int
}

// Effect 描述命令在状态之外需要完成的投递动作
type Effect struct {
	// Broadcast is false only for commands that must not trigger a state push.
	Broadcast bool
	// Chat goes to every other active session.
	Chat string
	// Eliminated lists victims already deactivated in the state, in slot order.
	Eliminated []Elimination
	// Departed means the issuing player left the arena.
	Departed bool
	// Notice goes to every remaining session after a departure.
	Notice string
	// Moved reports whether a MOVE or JUMP changed the player's cell.
	Moved bool
	// Healed reports a consumed pickup.
	Healed bool
}

// Apply runs one parsed command for slot against the state. The caller must
// hold exclusive access to s. Legality is decided before anything changes.
func Apply(s *State, slot int, cmd Command) Effect {
	if slot < 0 || slot >= len(s.Players) || !s.Players[slot].Active {
		return Effect{}
	}

	switch cmd.Kind {
	case KindMove:
		return move(s, slot, cmd.Dir, 1)
	case KindJump:
		return move(s, slot, cmd.Dir, 2)
	case KindAttack:
		return attack(s, slot)
	case KindQuit:
		s.Remove(slot)
		return Effect{
			Broadcast: true,
			Departed:  true,
			Notice:    fmt.Sprintf("Player %d has quit the game.", slot),
		}
	case KindSay:
		return Effect{
			Broadcast: true,
			Chat:      fmt.Sprintf("Player%d: %s", slot, cmd.Text),
		}
	}
	return Effect{}
}

func move(s *State, slot int, dir Direction, steps int) Effect {
	dx, dy := dir.Delta()
	p := &s.Players[slot]
	nx, ny := p.X+dx*steps, p.Y+dy*steps

	if !s.InBounds(nx, ny) || s.terrain[nx][ny] == CellObstacle {
		return Effect{Broadcast: true}
	}
	if _, taken := s.OccupantAt(nx, ny); taken {
		return Effect{Broadcast: true}
	}

	eff := Effect{Broadcast: true, Moved: true}
	if s.terrain[nx][ny] == CellPickup {
		p.HP += PickupHeal
		s.terrain[nx][ny] = CellEmpty
		eff.Healed = true
	}
	p.X, p.Y = nx, ny
	return eff
}

func attack(s *State, slot int) Effect {
	eff := Effect{Broadcast: true}
	attacker := s.Players[slot]
	for i := range s.Players {
		victim := &s.Players[i]
		if i == slot || !victim.Active || !adjacent(attacker, *victim) {
			continue
		}
		victim.HP -= AttackDamage
		if victim.HP <= 0 {
			eff.Eliminated = append(eff.Eliminated, Elimination{
				Victim:   i,
				Attacker: slot,
			})
			s.Remove(i)
		}
	}
	return eff
}

func adjacent(a, b Player) bool {
	dx, dy := a.X-b.X, a.Y-b.Y
	return (dx == 0 && (dy == 1 || dy == -1)) || (dy == 0 && (dx == 1 || dx == -1))
}
