// File: server/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package server runs the single-threaded reactor that accepts TCP
// connections, performs the WebSocket upgrade handshake, and feeds decoded
// frames to an application handler.
//
// One goroutine owns everything: the listening socket, the poller, the
// connection registry, and every per-connection buffer. No locks guard
// connection state because no other goroutine ever touches it. Handlers
// run synchronously on the reactor thread and may call Send, which queues
// outbound bytes and relies on writable readiness to finish short writes.
//
// Shutdown may be called from any goroutine; the loop observes it within
// one poll timeout and tears everything down on its own thread.
package server
