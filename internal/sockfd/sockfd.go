// File: internal/sockfd/sockfd.go
// Package sockfd wraps the raw nonblocking socket calls the event loop
// drives directly by file descriptor.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Every descriptor produced here is nonblocking. Callers pair these
// functions with a readiness poller instead of goroutine-per-connection
// blocking I/O.

package sockfd

import "errors"

// ErrWouldBlock reports that the operation would block: no pending
// connection to accept, no bytes to read, or no send buffer space.
// It is a routine outcome on nonblocking descriptors, not a failure.
var ErrWouldBlock = errors.New("operation would block")

// ErrUnsupported reports that raw socket I/O is not implemented for this
// platform.
var ErrUnsupported = errors.New("sockfd: this platform is not supported")
