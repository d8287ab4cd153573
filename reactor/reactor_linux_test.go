//go:build linux
// +build linux

// File: reactor/reactor_linux_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

// newPair returns a connected socketpair and registers cleanup.
func newPair(t *testing.T) (int, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func newTestPoller(t *testing.T) Poller {
	t.Helper()
	p, err := NewPoller()
	if err != nil {
		t.Fatalf("NewPoller: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestWait_TimesOutWhenIdle(t *testing.T) {
	p := newTestPoller(t)
	events := make([]Event, 4)

	start := time.Now()
	n, err := p.Wait(events, 30*time.Millisecond)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if n != 0 {
		t.Errorf("n = %d, want 0", n)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout took %v", elapsed)
	}
}

func TestWait_ReportsReadable(t *testing.T) {
	p := newTestPoller(t)
	a, b := newPair(t)

	if err := p.Add(a, Readable); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Nothing pending yet.
	events := make([]Event, 4)
	n, err := p.Wait(events, 10*time.Millisecond)
	if err != nil || n != 0 {
		t.Fatalf("idle Wait = (%d, %v), want (0, nil)", n, err)
	}

	if _, err := unix.Write(b, []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}

	n, err = p.Wait(events, time.Second)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if n != 1 || events[0].FD != a || events[0].Ready&Readable == 0 {
		t.Fatalf("events = %+v (n=%d), want fd %d readable", events[:n], n, a)
	}
}

func TestWait_LevelTriggeredRereports(t *testing.T) {
	p := newTestPoller(t)
	a, b := newPair(t)

	if err := p.Add(a, Readable); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := unix.Write(b, []byte("xy")); err != nil {
		t.Fatalf("write: %v", err)
	}

	events := make([]Event, 4)
	// Consume only one byte after the first notification; the remaining
	// byte must be reported again on the following Wait.
	if n, err := p.Wait(events, time.Second); err != nil || n != 1 {
		t.Fatalf("first Wait = (%d, %v)", n, err)
	}
	one := make([]byte, 1)
	if _, err := unix.Read(a, one); err != nil {
		t.Fatalf("read: %v", err)
	}

	n, err := p.Wait(events, time.Second)
	if err != nil {
		t.Fatalf("second Wait: %v", err)
	}
	if n != 1 || events[0].FD != a || events[0].Ready&Readable == 0 {
		t.Fatalf("remainder not re-reported: events = %+v (n=%d)", events[:n], n)
	}

	// Drain fully; readiness must clear.
	if _, err := unix.Read(a, one); err != nil {
		t.Fatalf("read: %v", err)
	}
	if n, err := p.Wait(events, 10*time.Millisecond); err != nil || n != 0 {
		t.Fatalf("drained Wait = (%d, %v), want (0, nil)", n, err)
	}
}

func TestWait_ReportsWritable(t *testing.T) {
	p := newTestPoller(t)
	a, _ := newPair(t)

	// A fresh socket has send buffer space, so writable fires immediately.
	if err := p.Add(a, Writable); err != nil {
		t.Fatalf("Add: %v", err)
	}
	events := make([]Event, 4)
	n, err := p.Wait(events, time.Second)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if n != 1 || events[0].Ready&Writable == 0 {
		t.Fatalf("events = %+v (n=%d), want writable", events[:n], n)
	}
}

func TestModify_ReplacesInterest(t *testing.T) {
	p := newTestPoller(t)
	a, b := newPair(t)

	if err := p.Add(a, Readable|Writable); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := unix.Write(b, []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Drop read interest; the pending byte must no longer surface as
	// Readable even though it is still buffered.
	if err := p.Modify(a, Writable); err != nil {
		t.Fatalf("Modify: %v", err)
	}
	events := make([]Event, 4)
	n, err := p.Wait(events, time.Second)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if n != 1 || events[0].Ready&Readable != 0 || events[0].Ready&Writable == 0 {
		t.Fatalf("events = %+v (n=%d), want writable only", events[:n], n)
	}
}

func TestRemove_StopsNotifications(t *testing.T) {
	p := newTestPoller(t)
	a, b := newPair(t)

	if err := p.Add(a, Readable); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := p.Remove(a); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := unix.Write(b, []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}

	events := make([]Event, 4)
	n, err := p.Wait(events, 20*time.Millisecond)
	if err != nil || n != 0 {
		t.Fatalf("Wait after Remove = (%d, %v), want (0, nil)", n, err)
	}
}

func TestWait_FlagsPeerHangup(t *testing.T) {
	p := newTestPoller(t)
	a, b := newPair(t)

	if err := p.Add(a, Readable); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := unix.Close(b); err != nil {
		t.Fatalf("close: %v", err)
	}

	events := make([]Event, 4)
	n, err := p.Wait(events, time.Second)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if n != 1 || !events[0].Err {
		t.Fatalf("events = %+v (n=%d), want hangup flagged", events[:n], n)
	}
}
