// File: server/registry.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"github.com/momentics/miniws/internal/sockfd"
	"github.com/momentics/miniws/reactor"
)

// Registry owns every registered connection, keyed by descriptor. It is
// the only component that closes sockets: Remove detaches the descriptor
// from the poller, closes it, and forgets the connection in one step, so
// a descriptor can never be half-released.
//
// The registry belongs to the reactor goroutine and is intentionally
// unsynchronized.
type Registry struct {
	poller reactor.Poller
	conns  map[int]*Conn
}

// NewRegistry builds an empty registry detaching through p.
func NewRegistry(p reactor.Poller) *Registry {
	return &Registry{
		poller: p,
		conns:  make(map[int]*Conn),
	}
}

// Add registers c. The descriptor must already be watched by the poller.
func (r *Registry) Add(c *Conn) {
	r.conns[c.fd] = c
}

// Get looks up a live connection. A miss means the descriptor was closed
// earlier, possibly within the current event batch.
func (r *Registry) Get(fd int) (*Conn, bool) {
	c, ok := r.conns[fd]
	return c, ok
}

// Remove detaches fd from the poller, closes the socket, and drops the
// connection. Unknown descriptors are ignored so Remove is safe to call
// twice for the same fd within one event batch.
func (r *Registry) Remove(fd int) {
	if _, ok := r.conns[fd]; !ok {
		return
	}
	// Detach before close; the poller drops closed descriptors on its
	// own, but the explicit order keeps the kernel state unambiguous.
	_ = r.poller.Remove(fd)
	_ = sockfd.Close(fd)
	delete(r.conns, fd)
}

// Len reports the number of live connections, the listener included.
func (r *Registry) Len() int {
	return len(r.conns)
}

// Each visits every live connection. fn must not add or remove
// connections; collect descriptors first and mutate afterwards.
func (r *Registry) Each(fn func(*Conn)) {
	for _, c := range r.conns {
		fn(c)
	}
}
