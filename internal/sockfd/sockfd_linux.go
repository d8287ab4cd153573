//go:build linux
// +build linux

// File: internal/sockfd/sockfd_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package sockfd

import (
	"fmt"
	"io"
	"net"
	"strconv"

	"golang.org/x/sys/unix"
)

// Listen opens a nonblocking IPv4 listening socket bound to host:port.
// SO_REUSEADDR is set so quick restarts do not trip over TIME_WAIT.
// A port of 0 lets the kernel pick one; LocalAddr reports the result.
func Listen(host string, port, backlog int) (int, error) {
	addr4, err := ipv4Addr(host)
	if err != nil {
		return -1, err
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("socket create: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("set SO_REUSEADDR: %w", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: port, Addr: addr4}); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("bind %s:%d: %w", host, port, err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("listen on %s:%d: %w", host, port, err)
	}
	return fd, nil
}

// Accept takes one pending connection off the listening socket. The new
// descriptor is nonblocking from the start via accept4(2). Returns the
// descriptor and the peer address. ErrWouldBlock means the backlog was
// empty.
func Accept(lfd int) (int, string, error) {
	nfd, sa, err := unix.Accept4(lfd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return -1, "", ErrWouldBlock
		}
		return -1, "", fmt.Errorf("accept: %w", err)
	}
	_ = unix.SetsockoptInt(nfd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	return nfd, sockaddrString(sa), nil
}

// Read performs one read(2). Returns ErrWouldBlock when no bytes are
// buffered and io.EOF when the peer has closed its end.
func Read(fd int, p []byte) (int, error) {
	n, err := unix.Read(fd, p)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, ErrWouldBlock
		}
		return 0, fmt.Errorf("read fd %d: %w", fd, err)
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write performs one write(2). A short count without error means the
// send buffer filled mid-write; ErrWouldBlock means it was already full.
func Write(fd int, p []byte) (int, error) {
	n, err := unix.Write(fd, p)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, ErrWouldBlock
		}
		return 0, fmt.Errorf("write fd %d: %w", fd, err)
	}
	return n, nil
}

// Close releases the descriptor.
func Close(fd int) error {
	return unix.Close(fd)
}

// LocalAddr reports the bound address of fd as "ip:port".
func LocalAddr(fd int) (string, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return "", fmt.Errorf("getsockname fd %d: %w", fd, err)
	}
	return sockaddrString(sa), nil
}

// ipv4Addr resolves host to a 4-byte address. An empty host binds all
// interfaces.
func ipv4Addr(host string) ([4]byte, error) {
	var addr4 [4]byte
	if host == "" {
		return addr4, nil // INADDR_ANY
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return addr4, fmt.Errorf("parse listen host %q: invalid IP", host)
	}
	v4 := ip.To4()
	if v4 == nil {
		return addr4, fmt.Errorf("listen host %q is not an IPv4 address", host)
	}
	copy(addr4[:], v4)
	return addr4, nil
}

// sockaddrString renders a socket address for logs and Addr reporting.
func sockaddrString(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	case *unix.SockaddrInet6:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	default:
		return fmt.Sprintf("%v", sa)
	}
}
