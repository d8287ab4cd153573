// File: reactor/reactor.go
// Package reactor provides readiness notification over raw file
// descriptors for a single-threaded event loop.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The poller is level-triggered: a descriptor that still has unread input
// (or writable space) when Wait returns is reported again on the next
// Wait. The loop may therefore service one read or write per notification
// and rely on the OS to re-report the remainder.

package reactor

import (
	"errors"
	"time"
)

// ErrUnsupported reports that no poller backend exists for this platform.
var ErrUnsupported = errors.New("reactor: this platform is not supported")

// Interest selects the readiness conditions a registration watches.
type Interest uint32

const (
	// Readable reports when a read would not block.
	Readable Interest = 1 << iota
	// Writable reports when a write would not block.
	Writable
)

// Event is one readiness notification delivered by Wait.
type Event struct {
	FD    int      // descriptor the notification is for
	Ready Interest // conditions that are now ready
	Err   bool     // error or hangup reported by the OS
}

// Poller multiplexes readiness across registered descriptors.
//
// Implementations are not safe for concurrent use. The owning loop is the
// only caller; all registration changes happen between Wait calls.
type Poller interface {
	// Add registers fd with the given interest set.
	Add(fd int, interest Interest) error
	// Modify replaces the interest set of an already registered fd.
	Modify(fd int, interest Interest) error
	// Remove deregisters fd. The caller remains responsible for closing it.
	Remove(fd int) error
	// Wait blocks until readiness is available or timeout elapses, filling
	// events from the front. A negative timeout blocks indefinitely.
	// Returns the number of events filled; zero means the timeout passed.
	Wait(events []Event, timeout time.Duration) (int, error)
	// Close releases the poller. Registered descriptors stay open.
	Close() error
}
