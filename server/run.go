// File: server/run.go
// Package server: the reactor loop. One goroutine waits for readiness,
// accepts, shepherds handshakes, decodes frames, and flushes replies.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"errors"
	"fmt"
	"io"

	"github.com/momentics/miniws/internal/httpwire"
	"github.com/momentics/miniws/internal/sockfd"
	"github.com/momentics/miniws/protocol"
	"github.com/momentics/miniws/reactor"
)

// Serve runs the event loop until Shutdown. h receives every decoded
// data frame; a nil h discards them. Per-connection failures are logged
// and close only the affected peer; Serve returns an error only when the
// poller itself fails.
func (s *Server) Serve(h Handler) error {
	defer s.teardown()
	s.log.Printf("[server] listening on %s, endpoint %s", s.addr, s.cfg.Endpoint)

	events := make([]reactor.Event, s.cfg.EventBatch)
	for {
		select {
		case <-s.shutdownCh:
			return nil
		default:
		}

		n, err := s.poller.Wait(events, s.cfg.PollTimeout)
		if err != nil {
			return fmt.Errorf("reactor wait: %w", err)
		}

		// Peer events first, accepts second: a descriptor closed in this
		// batch cannot be reused by an accept until every stale
		// notification for it has been skipped.
		for i := 0; i < n; i++ {
			if events[i].FD != s.listenFD {
				s.dispatch(events[i], h)
			}
		}
		for i := 0; i < n; i++ {
			if events[i].FD == s.listenFD {
				s.dispatch(events[i], h)
			}
		}
	}
}

// dispatch routes one notification by the connection's current role.
// A registry miss means the descriptor was closed earlier in this batch.
func (s *Server) dispatch(ev reactor.Event, h Handler) {
	c, ok := s.registry.Get(ev.FD)
	if !ok {
		return
	}

	if ev.Err {
		if c.role == RoleListener {
			s.log.Printf("[server] listener reported an error event")
			return
		}
		s.log.Printf("[server] fd=%d peer=%s: hangup", c.fd, c.peer)
		s.registry.Remove(c.fd)
		return
	}

	switch c.role {
	case RoleListener:
		if ev.Ready&reactor.Readable != 0 {
			s.acceptOne()
		}
	case RolePendingHTTP:
		if ev.Ready&reactor.Readable != 0 {
			s.readHTTP(c, h)
		}
		if ev.Ready&reactor.Writable != 0 && s.alive(ev.FD) {
			s.flushConn(c)
		}
	case RoleWebSocket:
		if ev.Ready&reactor.Readable != 0 {
			s.readFrames(c, h)
		}
		if ev.Ready&reactor.Writable != 0 && s.alive(ev.FD) {
			s.flushConn(c)
		}
	}
}

// acceptOne takes a single pending connection. The poller is
// level-triggered, so a deeper backlog is simply reported again.
func (s *Server) acceptOne() {
	fd, peer, err := sockfd.Accept(s.listenFD)
	if errors.Is(err, sockfd.ErrWouldBlock) {
		return
	}
	if err != nil {
		s.log.Printf("[server] accept: %v", err)
		return
	}
	if err := s.poller.Add(fd, reactor.Readable); err != nil {
		s.log.Printf("[server] watch fd=%d: %v", fd, err)
		sockfd.Close(fd)
		return
	}
	s.registry.Add(newConn(fd, RolePendingHTTP, peer))
	s.log.Printf("[server] fd=%d peer=%s: accepted", fd, peer)
}

// readOnce performs the single read this notification is entitled to and
// appends it to the connection's buffer. Returns false when the
// connection made no progress, including when it was closed.
func (s *Server) readOnce(c *Conn) bool {
	n, err := sockfd.Read(c.fd, s.rbuf)
	switch {
	case errors.Is(err, sockfd.ErrWouldBlock):
		return false
	case errors.Is(err, io.EOF):
		s.log.Printf("[server] fd=%d peer=%s: peer closed (%s)", c.fd, c.peer, c.role)
		s.registry.Remove(c.fd)
		return false
	case err != nil:
		s.log.Printf("[server] fd=%d peer=%s: read: %v", c.fd, c.peer, err)
		s.registry.Remove(c.fd)
		return false
	}
	c.in = append(c.in, s.rbuf[:n]...)
	return true
}

// readHTTP advances a pre-upgrade connection: accumulate the request
// head, then route it. Anything but a valid upgrade of the configured
// endpoint is answered and closed; a valid one switches the role and
// feeds bytes the client pipelined behind its handshake straight to the
// frame decoder.
func (s *Server) readHTTP(c *Conn, h Handler) {
	if !s.readOnce(c) {
		return
	}

	req, consumed, err := httpwire.ParseRequest(c.in)
	if err != nil {
		s.log.Printf("[server] fd=%d peer=%s: bad request head: %v", c.fd, c.peer, err)
		s.respondAndClose(c, httpwire.BadRequest())
		return
	}
	if req == nil {
		if len(c.in) >= s.cfg.ReadBufferSize {
			s.log.Printf("[server] fd=%d peer=%s: request head over %d bytes", c.fd, c.peer, s.cfg.ReadBufferSize)
			s.respondAndClose(c, httpwire.BadRequest())
		}
		return // head still incomplete, keep collecting
	}

	if req.Target != s.cfg.Endpoint {
		s.log.Printf("[server] fd=%d peer=%s: %s %s served default page", c.fd, c.peer, req.Method, req.Target)
		s.respondAndClose(c, httpwire.DefaultPage())
		return
	}
	if err := protocol.ValidateUpgrade(req.Method, req.Target, req.Version, req.Headers, s.cfg.Endpoint); err != nil {
		s.log.Printf("[server] fd=%d peer=%s: upgrade rejected: %v", c.fd, c.peer, err)
		s.respondAndClose(c, httpwire.BadRequest())
		return
	}

	accept := protocol.ComputeAcceptKey(req.Headers[protocol.HeaderSecWebSocketKey])
	c.role = RoleWebSocket
	c.in = c.in[consumed:]
	s.queueRaw(c, httpwire.SwitchingProtocols(accept))
	s.log.Printf("[server] fd=%d peer=%s: upgraded", c.fd, c.peer)

	if s.alive(c.fd) && len(c.in) > 0 {
		s.extractFrames(c, h)
	}
}

// readFrames advances an established connection by one read, then drains
// every complete frame out of the buffer.
func (s *Server) readFrames(c *Conn, h Handler) {
	if !s.readOnce(c) {
		return
	}
	s.extractFrames(c, h)
}

// extractFrames decodes complete frames off the front of the buffer,
// leaving a trailing partial frame for the next notification. Decode
// errors, unmasked client frames, and malformed control frames are
// protocol violations that terminate the connection.
func (s *Server) extractFrames(c *Conn, h Handler) {
	for {
		f, consumed, err := protocol.DecodeFrame(c.in)
		if err != nil {
			s.log.Printf("[server] fd=%d peer=%s: protocol violation: %v", c.fd, c.peer, err)
			s.registry.Remove(c.fd)
			return
		}
		if f == nil {
			return // tail is an incomplete frame, wait for more bytes
		}
		c.in = c.in[consumed:]
		if len(c.in) == 0 {
			c.in = nil
		}

		if !f.Masked {
			s.log.Printf("[server] fd=%d peer=%s: unmasked client frame", c.fd, c.peer)
			s.registry.Remove(c.fd)
			return
		}
		if f.IsControl() && (!f.Fin || f.PayloadLen > protocol.MaxControlPayloadLen) {
			s.log.Printf("[server] fd=%d peer=%s: malformed control frame", c.fd, c.peer)
			s.registry.Remove(c.fd)
			return
		}

		if s.handleControl(c, f) {
			if !s.alive(c.fd) || c.closeAfterFlush {
				return
			}
			continue
		}

		if h != nil {
			h.HandleFrame(c, f)
			if !s.alive(c.fd) {
				return
			}
		}
	}
}

// handleControl answers ping and close inline and swallows pong.
// Reports whether the frame was a control frame.
func (s *Server) handleControl(c *Conn, f *protocol.Frame) bool {
	switch f.Opcode {
	case protocol.OpcodePing:
		s.queueFrame(c, protocol.OpcodePong, f.Payload)
		return true
	case protocol.OpcodePong:
		return true
	case protocol.OpcodeClose:
		// Echo the close payload back, then drop the connection once
		// the reply has fully left the socket.
		c.closeAfterFlush = true
		s.queueFrame(c, protocol.OpcodeClose, f.Payload)
		s.log.Printf("[server] fd=%d peer=%s: close handshake", c.fd, c.peer)
		return true
	default:
		return false
	}
}

// queueFrame encodes one unmasked frame and queues it.
func (s *Server) queueFrame(c *Conn, opcode byte, payload []byte) {
	raw, err := protocol.EncodeFrame(&protocol.Frame{Fin: true, Opcode: opcode, Payload: payload})
	if err != nil {
		s.log.Printf("[server] fd=%d peer=%s: encode reply: %v", c.fd, c.peer, err)
		s.registry.Remove(c.fd)
		return
	}
	s.queueRaw(c, raw)
}

// queueRaw appends raw bytes to the outbound queue and flushes as much
// as the socket accepts right now.
func (s *Server) queueRaw(c *Conn, raw []byte) {
	c.enqueueWrite(raw)
	s.flushConn(c)
}

// respondAndClose queues a final payload and closes once it drains.
func (s *Server) respondAndClose(c *Conn, raw []byte) {
	c.closeAfterFlush = true
	s.queueRaw(c, raw)
}

// flushConn writes queued chunks until the socket pushes back, then
// keeps writable interest armed exactly while a backlog remains.
func (s *Server) flushConn(c *Conn) {
	for c.nextWrite() {
		n, err := sockfd.Write(c.fd, c.wr)
		if errors.Is(err, sockfd.ErrWouldBlock) {
			break
		}
		if err != nil {
			s.log.Printf("[server] fd=%d peer=%s: write: %v", c.fd, c.peer, err)
			s.registry.Remove(c.fd)
			return
		}
		c.wr = c.wr[n:]
	}

	if c.pendingWrites() > 0 {
		if !c.wantWrite {
			if err := s.poller.Modify(c.fd, reactor.Readable|reactor.Writable); err == nil {
				c.wantWrite = true
			}
		}
		return
	}
	if c.wantWrite {
		if err := s.poller.Modify(c.fd, reactor.Readable); err == nil {
			c.wantWrite = false
		}
	}
	if c.closeAfterFlush {
		s.log.Printf("[server] fd=%d peer=%s: closed after flush", c.fd, c.peer)
		s.registry.Remove(c.fd)
	}
}

// alive reports whether fd still maps to a registered connection.
func (s *Server) alive(fd int) bool {
	_, ok := s.registry.Get(fd)
	return ok
}

// teardown closes every connection, the listener included, then the
// poller. Runs on the loop thread as Serve returns.
func (s *Server) teardown() {
	var fds []int
	s.registry.Each(func(c *Conn) { fds = append(fds, c.fd) })
	for _, fd := range fds {
		s.registry.Remove(fd)
	}
	s.poller.Close()
	s.log.Printf("[server] shutdown complete")
}
