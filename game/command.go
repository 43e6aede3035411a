// game/command.go
package game

import (
	"errors"
	"strings"
	"unicode"
)

var ErrInvalidCommand = errors.New("invalid command")

// Kind 是命令类型
type Kind int

const (
	KindMove Kind = iota + 1
	KindJump
	KindAttack
	KindQuit
	KindSay
)

func (k Kind) String() string {
	switch k {
	case KindMove:
		return "MOVE"
	case KindJump:
		return "JUMP"
	case KindAttack:
		return "ATTACK"
	case KindQuit:
		return "QUIT"
	case KindSay:
		return "SAY"
	default:
		return "UNKNOWN"
	}
}

// Direction 移动方向
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

// Delta returns the row and column step for one cell in this direction.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirUp:
		return -1, 0
	case DirDown:
		return 1, 0
	case DirLeft:
		return 0, -1
	case DirRight:
		return 0, 1
	}
	return 0, 0
}

var directions = map[string]Direction{
	"UP":    DirUp,
	"DOWN":  DirDown,
	"LEFT":  DirLeft,
	"RIGHT": DirRight,
}

// Command 是解析后的客户端命令
type Command struct {
	Kind Kind
	Dir  Direction
	Text string
}

// ParseCommand tokenizes one client line. Keywords are case-sensitive and
// only the first whitespace-delimited word selects the command.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	keyword, rest := line, ""
	if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
		keyword, rest = line[:i], strings.TrimSpace(line[i:])
	}

	switch keyword {
	case "MOVE", "JUMP":
		args := strings.Fields(rest)
		if len(args) != 1 {
			return Command{}, ErrInvalidCommand
		}
		dir, ok := directions[args[0]]
		if !ok {
			return Command{}, ErrInvalidCommand
		}
		kind := KindMove
		if keyword == "JUMP" {
			kind = KindJump
		}
		return Command{Kind: kind, Dir: dir}, nil
	case "ATTACK", "QUIT":
		if rest != "" {
			return Command{}, ErrInvalidCommand
		}
		if keyword == "ATTACK" {
			return Command{Kind: KindAttack}, nil
		}
		return Command{Kind: KindQuit}, nil
	case "SAY":
		if rest == "" {
			return Command{}, ErrInvalidCommand
		}
		return Command{Kind: KindSay, Text: rest}, nil
	}
	return Command{}, ErrInvalidCommand
}
