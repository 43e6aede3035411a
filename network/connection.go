// network/connection.go
package network

import (
	"bytes"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ReadBufferSize bounds a single command read.
const ReadBufferSize = 1024

// WriteTimeout bounds a single write to a client.
const WriteTimeout = 5 * time.Second

// Connection is the message-delivery abstraction the arena runs on: send
// bytes to a client, receive the next command from it.
type Connection interface {
	Send(data []byte) error
	// ReadCommand blocks until the next command arrives. Any error, io.EOF
	// included, means the client is gone.
	ReadCommand() (string, error)
	Close() error
	RemoteAddr() net.Addr
}

// TCPConnection 基于原始 TCP 套接字的连接
type TCPConnection struct {
	conn      net.Conn
	sendMutex sync.Mutex
	buf       []byte
	pending   []string
}

func NewTCPConnection(conn net.Conn) *TCPConnection {
	return &TCPConnection{
		conn: conn,
		buf:  make([]byte, ReadBufferSize),
	}
}

func (c *TCPConnection) Send(data []byte) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
	_, err := c.conn.Write(data)
	return err
}

// ReadCommand treats every read as one command. Writes coalesced into one
// read are split on newlines; blank reads are skipped.
func (c *TCPConnection) ReadCommand() (string, error) {
	for len(c.pending) == 0 {
		n, err := c.conn.Read(c.buf)
		if n > 0 {
			c.pending = splitCommands(c.buf[:n])
		}
		if len(c.pending) > 0 {
			break
		}
		if err != nil {
			return "", err
		}
	}
	cmd := c.pending[0]
	c.pending = c.pending[1:]
	return cmd, nil
}

func (c *TCPConnection) Close() error {
	return c.conn.Close()
}

func (c *TCPConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// WSConnection 基于 WebSocket 的连接，每一帧是一条命令
type WSConnection struct {
	conn      *websocket.Conn
	sendMutex sync.Mutex
	pending   []string
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	conn.SetReadLimit(ReadBufferSize)
	return &WSConnection{conn: conn}
}

func (c *WSConnection) Send(data []byte) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *WSConnection) ReadCommand() (string, error) {
	for len(c.pending) == 0 {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		c.pending = splitCommands(data)
	}
	cmd := c.pending[0]
	c.pending = c.pending[1:]
	return cmd, nil
}

func (c *WSConnection) Close() error {
	return c.conn.Close()
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func splitCommands(data []byte) []string {
	var cmds []string
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			cmds = append(cmds, string(line))
		}
	}
	return cmds
}
