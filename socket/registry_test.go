package socket

import (
	"sync"
	"testing"
)

// fakeConn records emitted events for assertions.
type fakeConn struct {
	id string

	mu     sync.Mutex
	events []emitted
}

type emitted struct {
	event   string
	payload interface{}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Emit(event string, v ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var payload interface{}
	if len(v) > 0 {
		payload = v[0]
	}
	c.events = append(c.events, emitted{event: event, payload: payload})
}

func (c *fakeConn) received() []emitted {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]emitted, len(c.events))
	copy(out, c.events)
	return out
}

func TestBroadcastReachesAllMembers(t *testing.T) {
	r := NewRegistry()
	conns := []*fakeConn{{id: "a"}, {id: "b"}, {id: "c"}}
	for _, c := range conns {
		r.Join("session-1", c)
	}

	delivered := r.Broadcast("session-1", "", "hello", "payload")
	if delivered != len(conns) {
		t.Fatalf("delivered to %d connections, want %d", delivered, len(conns))
	}
	for _, c := range conns {
		if got := c.received(); len(got) != 1 || got[0].event != "hello" {
			t.Fatalf("conn %s received %v", c.id, got)
		}
	}
}

func TestBroadcastExceptSkipsSender(t *testing.T) {
	r := NewRegistry()
	sender := &fakeConn{id: "sender"}
	other := &fakeConn{id: "other"}
	r.Join("session-1", sender)
	r.Join("session-1", other)

	if delivered := r.Broadcast("session-1", "sender", "ev", nil); delivered != 1 {
		t.Fatalf("delivered to %d connections, want 1", delivered)
	}
	if len(sender.received()) != 0 {
		t.Fatal("sender received its own broadcast")
	}
	if len(other.received()) != 1 {
		t.Fatal("other member missed the broadcast")
	}
}

func TestBroadcastEmptyRoomIsNoOp(t *testing.T) {
	r := NewRegistry()
	if delivered := r.Broadcast("nobody-here", "", "ev", nil); delivered != 0 {
		t.Fatalf("delivered to %d connections, want 0", delivered)
	}
}

func TestJoinMovesToMostRecentRoom(t *testing.T) {
	r := NewRegistry()
	c := &fakeConn{id: "a"}
	r.Join("session-1", c)
	r.Join("session-2", c)

	if n := r.RoomLen("session-1"); n != 0 {
		t.Fatalf("session-1 still has %d members", n)
	}
	if n := r.RoomLen("session-2"); n != 1 {
		t.Fatalf("session-2 has %d members, want 1", n)
	}
}

func TestRemovePrunesMembership(t *testing.T) {
	r := NewRegistry()
	c := &fakeConn{id: "a"}
	r.Add(c)
	r.Join("session-1", c)

	r.Remove("a")

	if _, ok := r.Get("a"); ok {
		t.Fatal("connection still resolvable after Remove")
	}
	if n := r.RoomLen("session-1"); n != 0 {
		t.Fatalf("room still has %d members after Remove", n)
	}
	if delivered := r.Broadcast("session-1", "", "ev", nil); delivered != 0 {
		t.Fatal("broadcast still delivered after Remove")
	}
}
