//go:build linux
// +build linux

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux epoll(7) poller. Registrations are level-triggered (no EPOLLET),
// so partially serviced descriptors are re-reported on the next Wait.

package reactor

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// epollPoller is the Linux Poller backend.
type epollPoller struct {
	epfd int
	raw  []unix.EpollEvent // scratch for Wait, sized to the caller's slice
}

// NewPoller constructs the platform poller.
func NewPoller() (Poller, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	return &epollPoller{epfd: epfd}, nil
}

// epollMask converts an interest set to epoll event bits.
// EPOLLERR and EPOLLHUP are always delivered and need not be requested.
func epollMask(interest Interest) uint32 {
	var mask uint32
	if interest&Readable != 0 {
		mask |= unix.EPOLLIN
	}
	if interest&Writable != 0 {
		mask |= unix.EPOLLOUT
	}
	return mask
}

func (p *epollPoller) Add(fd int, interest Interest) error {
	ev := unix.EpollEvent{Events: epollMask(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl add fd %d: %w", fd, err)
	}
	return nil
}

func (p *epollPoller) Modify(fd int, interest Interest) error {
	ev := unix.EpollEvent{Events: epollMask(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl mod fd %d: %w", fd, err)
	}
	return nil
}

func (p *epollPoller) Remove(fd int) error {
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return fmt.Errorf("epoll ctl del fd %d: %w", fd, err)
	}
	return nil
}

// Wait fills events with ready descriptors. A signal interrupting the
// underlying epoll_wait counts as an empty wake-up, not an error.
func (p *epollPoller) Wait(events []Event, timeout time.Duration) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	if len(p.raw) < len(events) {
		p.raw = make([]unix.EpollEvent, len(events))
	}

	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}

	n, err := unix.EpollWait(p.epfd, p.raw[:len(events)], ms)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, fmt.Errorf("epoll wait: %w", err)
	}

	for i := 0; i < n; i++ {
		var ready Interest
		if p.raw[i].Events&unix.EPOLLIN != 0 {
			ready |= Readable
		}
		if p.raw[i].Events&unix.EPOLLOUT != 0 {
			ready |= Writable
		}
		events[i] = Event{
			FD:    int(p.raw[i].Fd),
			Ready: ready,
			Err:   p.raw[i].Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0,
		}
	}
	return n, nil
}

func (p *epollPoller) Close() error {
	return unix.Close(p.epfd)
}
