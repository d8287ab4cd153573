// File: server/registry_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"testing"
	"time"

	"github.com/momentics/miniws/reactor"
)

// fakePoller records registration traffic for registry tests.
type fakePoller struct {
	watched map[int]reactor.Interest
	removed []int
}

func newFakePoller() *fakePoller {
	return &fakePoller{watched: make(map[int]reactor.Interest)}
}

func (p *fakePoller) Add(fd int, interest reactor.Interest) error {
	p.watched[fd] = interest
	return nil
}

func (p *fakePoller) Modify(fd int, interest reactor.Interest) error {
	p.watched[fd] = interest
	return nil
}

func (p *fakePoller) Remove(fd int) error {
	p.removed = append(p.removed, fd)
	delete(p.watched, fd)
	return nil
}

func (p *fakePoller) Wait(events []reactor.Event, timeout time.Duration) (int, error) {
	return 0, nil
}

func (p *fakePoller) Close() error { return nil }

var _ reactor.Poller = (*fakePoller)(nil)

// Descriptor numbers far above any real ulimit so the close inside
// Remove cannot touch a descriptor some other test owns.
const testFDBase = 1 << 22

func TestRegistry_AddGetRemove(t *testing.T) {
	p := newFakePoller()
	r := NewRegistry(p)

	a := newConn(testFDBase+1, RolePendingHTTP, "peer-a")
	b := newConn(testFDBase+2, RoleWebSocket, "peer-b")
	r.Add(a)
	r.Add(b)

	if r.Len() != 2 {
		t.Fatalf("Len = %d, want 2", r.Len())
	}
	if got, ok := r.Get(a.fd); !ok || got != a {
		t.Fatalf("Get(%d) = (%v, %v)", a.fd, got, ok)
	}
	if _, ok := r.Get(testFDBase + 99); ok {
		t.Fatal("Get on unknown fd reported a connection")
	}

	r.Remove(a.fd)
	if _, ok := r.Get(a.fd); ok {
		t.Fatal("removed connection still resolvable")
	}
	if r.Len() != 1 {
		t.Fatalf("Len after Remove = %d, want 1", r.Len())
	}
	if len(p.removed) != 1 || p.removed[0] != a.fd {
		t.Fatalf("poller detach calls = %v, want [%d]", p.removed, a.fd)
	}
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	p := newFakePoller()
	r := NewRegistry(p)
	c := newConn(testFDBase+3, RoleWebSocket, "peer")
	r.Add(c)

	r.Remove(c.fd)
	r.Remove(c.fd) // second call must be a no-op

	if len(p.removed) != 1 {
		t.Fatalf("poller detached %d times, want 1", len(p.removed))
	}
	if r.Len() != 0 {
		t.Fatalf("Len = %d, want 0", r.Len())
	}
}

func TestRegistry_EachThenRemove(t *testing.T) {
	p := newFakePoller()
	r := NewRegistry(p)
	for i := 0; i < 4; i++ {
		r.Add(newConn(testFDBase+10+i, RolePendingHTTP, "peer"))
	}

	// Collect first, mutate after: the shutdown pattern.
	var fds []int
	r.Each(func(c *Conn) { fds = append(fds, c.fd) })
	if len(fds) != 4 {
		t.Fatalf("Each visited %d conns, want 4", len(fds))
	}
	for _, fd := range fds {
		r.Remove(fd)
	}
	if r.Len() != 0 {
		t.Fatalf("Len after removals = %d, want 0", r.Len())
	}
}
