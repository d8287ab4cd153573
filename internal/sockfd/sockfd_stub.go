//go:build !linux
// +build !linux

// File: internal/sockfd/sockfd_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package sockfd

// Listen is unavailable on this platform.
func Listen(host string, port, backlog int) (int, error) {
	return -1, ErrUnsupported
}

// Accept is unavailable on this platform.
func Accept(lfd int) (int, string, error) {
	return -1, "", ErrUnsupported
}

// Read is unavailable on this platform.
func Read(fd int, p []byte) (int, error) {
	return 0, ErrUnsupported
}

// Write is unavailable on this platform.
func Write(fd int, p []byte) (int, error) {
	return 0, ErrUnsupported
}

// Close is unavailable on this platform.
func Close(fd int) error {
	return ErrUnsupported
}

// LocalAddr is unavailable on this platform.
func LocalAddr(fd int) (string, error) {
	return "", ErrUnsupported
}
