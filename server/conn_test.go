// File: server/conn_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"bytes"
	"testing"
)

func TestConn_WriteQueueFIFO(t *testing.T) {
	c := newConn(testFDBase+20, RoleWebSocket, "peer")

	if c.pendingWrites() != 0 {
		t.Fatalf("pendingWrites on fresh conn = %d", c.pendingWrites())
	}
	if c.nextWrite() {
		t.Fatal("nextWrite reported work on an empty queue")
	}

	c.enqueueWrite([]byte("first"))
	c.enqueueWrite([]byte("second"))
	c.enqueueWrite([]byte("third"))
	if got := c.pendingWrites(); got != 3 {
		t.Fatalf("pendingWrites = %d, want 3", got)
	}

	// Chunks must come back in order, with partial progress preserved.
	if !c.nextWrite() || !bytes.Equal(c.wr, []byte("first")) {
		t.Fatalf("current chunk = %q, want %q", c.wr, "first")
	}
	c.wr = c.wr[2:] // simulate a short write
	if !c.nextWrite() || !bytes.Equal(c.wr, []byte("rst")) {
		t.Fatalf("current chunk = %q, want remainder %q", c.wr, "rst")
	}
	c.wr = c.wr[len(c.wr):]

	if !c.nextWrite() || !bytes.Equal(c.wr, []byte("second")) {
		t.Fatalf("current chunk = %q, want %q", c.wr, "second")
	}
	c.wr = nil
	if !c.nextWrite() || !bytes.Equal(c.wr, []byte("third")) {
		t.Fatalf("current chunk = %q, want %q", c.wr, "third")
	}
	c.wr = nil
	if c.nextWrite() {
		t.Fatal("queue should be drained")
	}
	if c.pendingWrites() != 0 {
		t.Fatalf("pendingWrites after drain = %d", c.pendingWrites())
	}
}

func TestConn_EnqueueSkipsEmptyChunks(t *testing.T) {
	c := newConn(testFDBase+21, RoleWebSocket, "peer")
	c.enqueueWrite(nil)
	c.enqueueWrite([]byte{})
	if c.pendingWrites() != 0 {
		t.Fatalf("pendingWrites = %d, want 0", c.pendingWrites())
	}
}

func TestRole_String(t *testing.T) {
	cases := map[Role]string{
		RoleListener:    "listener",
		RolePendingHTTP: "pending-http",
		RoleWebSocket:   "websocket",
		Role(42):        "unknown",
	}
	for role, want := range cases {
		if got := role.String(); got != want {
			t.Errorf("Role(%d).String() = %q, want %q", role, got, want)
		}
	}
}
