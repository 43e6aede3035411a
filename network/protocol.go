package network

import "fmt"

// 服务端发往客户端的固定文本
const (
	MsgReady          = "READY"
	MsgInvalidCommand = "Invalid command"
	MsgServerFull     = "Server is full."
	StateHeader       = "STATE"
	RosterHeader      = "Players:"
)

// KilledBy is the notice delivered to an eliminated player.
func KilledBy(attacker int) string {
	return fmt.Sprintf("You were killed by Player %d", attacker)
}

// Line terminates a protocol message with a newline unless it has one.
func Line(msg string) []byte {
	if n := len(msg); n > 0 && msg[n-1] == '\n' {
		return []byte(msg)
	}
	return []byte(msg + "\n")
}
