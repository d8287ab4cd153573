// File: server/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"sync"

	"github.com/momentics/miniws/internal/sockfd"
	"github.com/momentics/miniws/protocol"
	"github.com/momentics/miniws/reactor"
)

var (
	// ErrNotWebSocket reports a Send on a connection that has not
	// completed its upgrade.
	ErrNotWebSocket = errors.New("miniws: connection is not an established websocket")
	// ErrWriteBacklog reports that a peer stopped draining and its
	// outbound queue hit the configured limit. The connection is closed.
	ErrWriteBacklog = errors.New("miniws: write backlog limit exceeded")
)

// Handler consumes decoded data frames on the reactor thread.
//
// HandleFrame runs synchronously inside the event loop: it must not
// block, and it may call Send on the same or any other registered
// connection.
type Handler interface {
	HandleFrame(c *Conn, f *protocol.Frame)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(c *Conn, f *protocol.Frame)

// HandleFrame calls fn.
func (fn HandlerFunc) HandleFrame(c *Conn, f *protocol.Frame) { fn(c, f) }

var _ Handler = (HandlerFunc)(nil)

// Server is the reactor facade: listener, poller, and registry under a
// single event loop.
type Server struct {
	cfg      *Config
	log      *log.Logger
	poller   reactor.Poller
	registry *Registry
	listenFD int
	addr     string
	rbuf     []byte // shared read scratch, one loop thread means one buffer

	shutdownCh chan struct{}
	once       sync.Once
}

// New binds the listening socket and prepares the poller and registry.
// Bind or listen failure is fatal and returned to the caller; everything
// after New runs inside Serve and survives per-connection errors.
func New(cfg *Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	for _, o := range opts {
		o(cfg)
	}
	cfg.normalize()
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	host, portStr, err := net.SplitHostPort(cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("listen address %q: %w", cfg.ListenAddr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("listen address %q: %w", cfg.ListenAddr, err)
	}

	lfd, err := sockfd.Listen(host, port, cfg.Backlog)
	if err != nil {
		return nil, err
	}
	addr, err := sockfd.LocalAddr(lfd)
	if err != nil {
		sockfd.Close(lfd)
		return nil, err
	}

	poller, err := reactor.NewPoller()
	if err != nil {
		sockfd.Close(lfd)
		return nil, err
	}
	if err := poller.Add(lfd, reactor.Readable); err != nil {
		poller.Close()
		sockfd.Close(lfd)
		return nil, fmt.Errorf("watch listener: %w", err)
	}

	s := &Server{
		cfg:        cfg,
		log:        logger,
		poller:     poller,
		listenFD:   lfd,
		addr:       addr,
		rbuf:       make([]byte, cfg.ReadBufferSize),
		shutdownCh: make(chan struct{}),
	}
	s.registry = NewRegistry(poller)
	s.registry.Add(newConn(lfd, RoleListener, addr))
	return s, nil
}

// Addr reports the actual bound address, which differs from the
// configured one when the port was 0.
func (s *Server) Addr() string {
	return s.addr
}

// Shutdown asks the event loop to stop. It is idempotent and safe to
// call from any goroutine; the loop notices within one poll timeout and
// closes every connection on its own thread.
func (s *Server) Shutdown() {
	s.once.Do(func() { close(s.shutdownCh) })
}

// Send encodes payload as a single unmasked frame and queues it to c.
// It must be called on the reactor thread, which in practice means from
// inside a Handler. A peer whose queue is over the limit is dropped and
// ErrWriteBacklog returned.
func (s *Server) Send(c *Conn, opcode byte, payload []byte) error {
	if c.role != RoleWebSocket {
		return ErrNotWebSocket
	}
	if c.pendingWrites() >= s.cfg.MaxQueuedWrites {
		s.log.Printf("[server] fd=%d peer=%s: dropping slow consumer", c.fd, c.peer)
		s.registry.Remove(c.fd)
		return ErrWriteBacklog
	}
	raw, err := protocol.EncodeFrame(&protocol.Frame{Fin: true, Opcode: opcode, Payload: payload})
	if err != nil {
		return err
	}
	s.queueRaw(c, raw)
	return nil
}
