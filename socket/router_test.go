package socket

import (
	"context"
	"sync"
	"testing"

	"accessible_connect/models"
)

// fakePresence satisfies PresenceStore without a database.
type fakePresence struct {
	mu           sync.Mutex
	bindings     map[string]*models.Participant // userId -> active binding
	disconnected []string
}

func (p *fakePresence) ActiveBinding(_ context.Context, userID string) (*models.Participant, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bindings[userID], nil
}

func (p *fakePresence) MarkDisconnected(_ context.Context, socketID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disconnected = append(p.disconnected, socketID)
	return nil
}

func (p *fakePresence) bind(userID string, participant *models.Participant) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bindings[userID] = participant
}

func (p *fakePresence) marked() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.disconnected...)
}

func newTestRouter(presence *fakePresence) *Router {
	if presence == nil {
		presence = &fakePresence{bindings: map[string]*models.Participant{}}
	}
	return NewRouter(NewRegistry(), presence)
}

func joinAll(rt *Router, sessionID string, conns ...*fakeConn) {
	for _, c := range conns {
		rt.HandleConnect(c)
		rt.HandleJoin(c, models.JoinRoomMessage{SessionID: sessionID})
	}
}

func TestBroadcastRoundTrip(t *testing.T) {
	rt := newTestRouter(nil)
	sender := &fakeConn{id: "s1"}
	peerA := &fakeConn{id: "s2"}
	peerB := &fakeConn{id: "s3"}
	joinAll(rt, "session-1", sender, peerA, peerB)

	rt.HandleBroadcast(sender, models.BroadcastMessage{
		FromUserID:    "u1",
		FromUserName:  "Deaf: Ada Lovelace",
		SessionID:     "session-1",
		SignalMessage: "Like",
		SignalCode:    models.SignalLike,
	})

	if len(sender.received()) != 0 {
		t.Fatal("sender received its own broadcast echo")
	}
	for _, peer := range []*fakeConn{peerA, peerB} {
		got := peer.received()
		if len(got) != 1 {
			t.Fatalf("peer %s received %d events, want 1", peer.id, len(got))
		}
		if got[0].event != models.EventBroadcastMessageServer {
			t.Fatalf("peer received event %q", got[0].event)
		}
		msg, ok := got[0].payload.(models.BroadcastServerMessage)
		if !ok {
			t.Fatalf("payload type %T", got[0].payload)
		}
		want := models.BroadcastServerMessage{
			FromUserName:  "Deaf: Ada Lovelace",
			FromUserID:    "u1",
			SignalMessage: "Like",
			SignalCode:    models.SignalLike,
		}
		if msg != want {
			// The forwarded form must match field for field, sessionId gone.
			t.Fatalf("got %+v, want %+v", msg, want)
		}
	}
}

func TestBroadcastDoesNotCrossRooms(t *testing.T) {
	rt := newTestRouter(nil)
	sender := &fakeConn{id: "s1"}
	outsider := &fakeConn{id: "s2"}
	joinAll(rt, "session-1", sender)
	joinAll(rt, "session-2", outsider)

	rt.HandleBroadcast(sender, models.BroadcastMessage{
		FromUserID: "u1",
		SessionID:  "session-1",
		SignalCode: models.SignalClap,
	})

	if len(outsider.received()) != 0 {
		t.Fatal("broadcast leaked into another session")
	}
}

func TestDirectedDeliveredToActiveBinding(t *testing.T) {
	presence := &fakePresence{bindings: map[string]*models.Participant{
		"u2": {UserID: "u2", SocketID: "s2"},
	}}
	rt := newTestRouter(presence)
	sender := &fakeConn{id: "s1"}
	recipient := &fakeConn{id: "s2"}
	joinAll(rt, "session-1", sender, recipient)

	rt.HandleDirected(context.Background(), sender, models.DirectedMessage{
		FromUserID:    "u1",
		FromUserName:  "Hearing: Grace Hopper",
		ToUserID:      "u2",
		SignalMessage: "Please look at me",
	})

	got := recipient.received()
	if len(got) != 1 || got[0].event != models.EventMessageReceived {
		t.Fatalf("recipient received %v", got)
	}
	msg := got[0].payload.(models.DirectedServerMessage)
	if msg.FromUserID != "u1" || msg.SignalMessage != "Please look at me" {
		t.Fatalf("got %+v", msg)
	}
}

func TestDirectedToUnknownRecipientIsDropped(t *testing.T) {
	rt := newTestRouter(nil)
	sender := &fakeConn{id: "s1"}
	joinAll(rt, "session-1", sender)

	// No active binding for the target: silently dropped, nothing surfaced
	// to the sender.
	rt.HandleDirected(context.Background(), sender, models.DirectedMessage{
		FromUserID: "u1",
		ToUserID:   "ghost",
	})

	if len(sender.received()) != 0 {
		t.Fatal("sender was notified about a dropped directed message")
	}
}

func TestSpeakingToggleForwarded(t *testing.T) {
	rt := newTestRouter(nil)
	sender := &fakeConn{id: "s1"}
	peer := &fakeConn{id: "s2"}
	joinAll(rt, "session-1", sender, peer)

	rt.HandleSpeaking(sender, models.SpeakingMessage{
		SpeakingUserID:      "u1",
		SpeakingDisplayName: "Hearing: Grace Hopper",
		Speaking:            true,
		SessionID:           "session-1",
	})

	got := peer.received()
	if len(got) != 1 || got[0].event != models.EventBroadcastSpeakingServer {
		t.Fatalf("peer received %v", got)
	}
	msg := got[0].payload.(models.SpeakingServerMessage)
	if !msg.Speaking || msg.SpeakingUserID != "u1" {
		t.Fatalf("got %+v", msg)
	}
}

func TestDisconnectReasons(t *testing.T) {
	presence := &fakePresence{bindings: map[string]*models.Participant{}}
	rt := newTestRouter(presence)
	c := &fakeConn{id: "s1"}
	joinAll(rt, "session-1", c)

	// A transport drop leaves the binding active for the reconnect path.
	rt.HandleDisconnect(context.Background(), c, models.DisconnectReasonTransportClose)
	if len(presence.disconnected) != 0 {
		t.Fatal("transport drop marked the binding disconnected")
	}
	if n := rt.Registry.RoomLen("session-1"); n != 0 {
		t.Fatal("membership not pruned on transport drop")
	}

	joinAll(rt, "session-1", c)
	rt.HandleDisconnect(context.Background(), c, models.DisconnectReasonClientLeave)
	if len(presence.disconnected) != 1 || presence.disconnected[0] != "s1" {
		t.Fatalf("deliberate leave marked %v, want [s1]", presence.disconnected)
	}
}

func TestJoinWithoutSessionIsIgnored(t *testing.T) {
	rt := newTestRouter(nil)
	c := &fakeConn{id: "s1"}
	rt.HandleConnect(c)
	rt.HandleJoin(c, models.JoinRoomMessage{})

	rt.HandleBroadcast(c, models.BroadcastMessage{SessionID: ""})
	if n := rt.Registry.RoomLen(""); n != 0 {
		t.Fatal("connection joined the empty room")
	}
}
