// File: server/options.go
// Package server defines functional options applied over DefaultConfig.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"log"
	"time"
)

// Option customizes server initialization.
type Option func(*Config)

// WithListenAddr overrides the TCP bind address. A ":0" port picks an
// ephemeral one; Addr reports the result.
func WithListenAddr(addr string) Option {
	return func(c *Config) {
		c.ListenAddr = addr
	}
}

// WithEndpoint overrides the request target that accepts upgrades.
func WithEndpoint(path string) Option {
	return func(c *Config) {
		c.Endpoint = path
	}
}

// WithReadBufferSize overrides the per-read drain size.
func WithReadBufferSize(n int) Option {
	return func(c *Config) {
		c.ReadBufferSize = n
	}
}

// WithBacklog overrides the listen(2) backlog depth.
func WithBacklog(n int) Option {
	return func(c *Config) {
		c.Backlog = n
	}
}

// WithPollTimeout bounds one poller wait. Shutdown latency is at most
// this long on an idle server.
func WithPollTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.PollTimeout = d
	}
}

// WithMaxQueuedWrites overrides the outbound backlog limit per peer.
func WithMaxQueuedWrites(n int) Option {
	return func(c *Config) {
		c.MaxQueuedWrites = n
	}
}

// WithLogger redirects diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}
