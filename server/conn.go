// File: server/conn.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"github.com/eapache/queue"
)

// Role states what a registered descriptor currently is. A connection
// holds exactly one role at a time and dispatch switches on it, so the
// listener can never be read as a peer and an HTTP connection can never
// reach the frame decoder.
type Role uint8

const (
	// RoleListener is the accepting socket.
	RoleListener Role = iota
	// RolePendingHTTP is an accepted peer whose request head is still
	// being collected or validated.
	RolePendingHTTP
	// RoleWebSocket is a peer whose upgrade handshake has completed.
	RoleWebSocket
)

// Роли соединений в журнале.
func (r Role) String() string {
	switch r {
	case RoleListener:
		return "listener"
	case RolePendingHTTP:
		return "pending-http"
	case RoleWebSocket:
		return "websocket"
	default:
		return "unknown"
	}
}

// Conn is one registered descriptor and all of its buffered state. Only
// the reactor goroutine touches it.
type Conn struct {
	fd   int
	role Role
	peer string

	// in accumulates unconsumed inbound bytes: a partial request head
	// before the upgrade, a partial frame after it.
	in []byte

	// Outbound path: wr is the chunk currently being flushed, wq the
	// chunks queued behind it. Short writes shrink wr in place.
	wr []byte
	wq *queue.Queue

	wantWrite       bool // writable interest armed with the poller
	closeAfterFlush bool // close once the outbound queue drains
}

func newConn(fd int, role Role, peer string) *Conn {
	return &Conn{
		fd:   fd,
		role: role,
		peer: peer,
		wq:   queue.New(),
	}
}

// FD returns the underlying descriptor.
func (c *Conn) FD() int { return c.fd }

// Role returns the connection's current role.
func (c *Conn) Role() Role { return c.role }

// RemoteAddr returns the peer address captured at accept time.
func (c *Conn) RemoteAddr() string { return c.peer }

// enqueueWrite appends one outbound chunk. The current chunk slot is
// filled first so the common no-backlog case never touches the queue.
func (c *Conn) enqueueWrite(b []byte) {
	if len(b) == 0 {
		return
	}
	if len(c.wr) == 0 && c.wq.Length() == 0 {
		c.wr = b
		return
	}
	c.wq.Add(b)
}

// nextWrite rotates the queue head into the current chunk slot.
// Reports whether anything is left to flush.
func (c *Conn) nextWrite() bool {
	if len(c.wr) > 0 {
		return true
	}
	if c.wq.Length() == 0 {
		return false
	}
	c.wr = c.wq.Remove().([]byte)
	return true
}

// pendingWrites counts unflushed chunks.
func (c *Conn) pendingWrites() int {
	n := c.wq.Length()
	if len(c.wr) > 0 {
		n++
	}
	return n
}
