// File: server/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"log"
	"time"
)

// Config holds all server-side configuration parameters.
type Config struct {
	ListenAddr      string        // TCP bind address, e.g. "127.0.0.1:5006"
	Endpoint        string        // request target that accepts WebSocket upgrades
	ReadBufferSize  int           // bytes drained per readiness notification
	Backlog         int           // listen(2) backlog depth
	PollTimeout     time.Duration // upper bound on one poller wait
	MaxQueuedWrites int           // queued outbound chunks before a peer is dropped
	EventBatch      int           // readiness events collected per loop iteration
	Logger          *log.Logger   // diagnostics sink; nil uses the stdlib default
}

// DefaultConfig returns the stock parameters: loopback port 5006, the
// /websocket endpoint, a 1 MiB read buffer, a single-slot backlog, and a
// five second poll bound.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:      "127.0.0.1:5006",
		Endpoint:        "/websocket",
		ReadBufferSize:  1 << 20,
		Backlog:         1,
		PollTimeout:     5 * time.Second,
		MaxQueuedWrites: 64,
		EventBatch:      128,
	}
}

// normalize backfills zero fields with defaults so a hand-built Config
// cannot produce a zero-length read buffer or an unbounded poll wait.
func (c *Config) normalize() {
	d := DefaultConfig()
	if c.ListenAddr == "" {
		c.ListenAddr = d.ListenAddr
	}
	if c.Endpoint == "" {
		c.Endpoint = d.Endpoint
	}
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = d.ReadBufferSize
	}
	if c.Backlog <= 0 {
		c.Backlog = d.Backlog
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = d.PollTimeout
	}
	if c.MaxQueuedWrites <= 0 {
		c.MaxQueuedWrites = d.MaxQueuedWrites
	}
	if c.EventBatch <= 0 {
		c.EventBatch = d.EventBatch
	}
}
