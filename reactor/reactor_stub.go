//go:build !linux
// +build !linux

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stub for platforms without a poller backend.

package reactor

// NewPoller returns ErrUnsupported.
func NewPoller() (Poller, error) {
	return nil, ErrUnsupported
}
