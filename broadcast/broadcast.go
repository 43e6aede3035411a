// broadcast/broadcast.go
package broadcast

import (
	"fmt"
	"strings"

	"github.com/wfunc/gridarena/game"
	"github.com/wfunc/gridarena/network"
	"github.com/wfunc/gridarena/session"
)

// Render 将游戏状态序列化为协议文本
func Render(s *game.State) string {
	var b strings.Builder
	b.Grow((s.Cols+1)*s.Rows + 64*s.Capacity())

	b.WriteString(network.StateHeader)
	b.WriteByte('\n')
	for x := 0; x < s.Rows; x++ {
		for y := 0; y < s.Cols; y++ {
			b.WriteByte(s.Symbol(x, y))
		}
		b.WriteByte('\n')
	}

	b.WriteString(network.RosterHeader)
	b.WriteByte('\n')
	for i, p := range s.Players {
		if p.Active {
			fmt.Fprintf(&b, "  Player %d: HP=%d Pos = (%d,%d)\n", i, p.HP, p.X, p.Y)
		}
	}
	return b.String()
}

// Publisher delivers rendered snapshots to the active sessions of a registry.
type Publisher struct {
	registry *session.Registry
}

func NewPublisher(registry *session.Registry) *Publisher {
	return &Publisher{registry: registry}
}

// Publish renders once and queues the same bytes for every active session.
// Slots whose delivery failed are returned in ascending order; a failure
// never stops delivery to the others.
func (p *Publisher) Publish(s *game.State) (failed []int) {
	data := []byte(Render(s))
	p.registry.ForEachActive(func(slot int, sess *session.Session) {
		if err := sess.Send(data); err != nil {
			failed = append(failed, slot)
		}
	})
	return failed
}

// ToOthers queues msg for every active session except the one on skip.
func (p *Publisher) ToOthers(skip int, msg string) (failed []int) {
	data := network.Line(msg)
	p.registry.ForEachActive(func(slot int, sess *session.Session) {
		if slot == skip {
			return
		}
		if err := sess.Send(data); err != nil {
			failed = append(failed, slot)
		}
	})
	return failed
}
