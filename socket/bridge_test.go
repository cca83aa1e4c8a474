package socket

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"accessible_connect/models"

	"github.com/gorilla/websocket"
)

type bridgeClient struct {
	t    *testing.T
	sock *websocket.Conn
	sid  string
}

func dialBridge(t *testing.T, server *httptest.Server) *bridgeClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	sock, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial bridge: %v", err)
	}
	t.Cleanup(func() { sock.Close() })

	frame := readFrame(t, sock)
	if frame.Event != models.EventConnect {
		t.Fatalf("handshake event = %q, want connect", frame.Event)
	}
	var ack ConnectAck
	if err := json.Unmarshal(frame.Data, &ack); err != nil || ack.SID == "" {
		t.Fatalf("malformed connect ack: %s", frame.Data)
	}
	return &bridgeClient{t: t, sock: sock, sid: ack.SID}
}

func (c *bridgeClient) emit(event string, v interface{}) {
	c.t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		c.t.Fatalf("failed to marshal payload: %v", err)
	}
	if err := c.sock.WriteJSON(Frame{Event: event, Data: data}); err != nil {
		c.t.Fatalf("failed to write frame: %v", err)
	}
}

func readFrame(t *testing.T, sock *websocket.Conn) Frame {
	t.Helper()
	sock.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame Frame
	if err := sock.ReadJSON(&frame); err != nil {
		t.Fatalf("failed to read frame: %v", err)
	}
	return frame
}

func expectNoFrame(t *testing.T, sock *websocket.Conn) {
	t.Helper()
	sock.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	var frame Frame
	if err := sock.ReadJSON(&frame); err == nil {
		t.Fatalf("unexpected frame %q", frame.Event)
	}
}

func newBridgeServer(presence *fakePresence) (*httptest.Server, *Router) {
	if presence == nil {
		presence = &fakePresence{bindings: map[string]*models.Participant{}}
	}
	router := NewRouter(NewRegistry(), presence)
	server := httptest.NewServer(NewBridge(router, func() bool { return true }))
	return server, router
}

func TestBridgeBroadcastRoundTrip(t *testing.T) {
	server, _ := newBridgeServer(nil)
	defer server.Close()

	sender := dialBridge(t, server)
	peer := dialBridge(t, server)
	sender.emit(models.EventAddParticipantToRoom, models.JoinRoomMessage{SessionID: "session-1"})
	peer.emit(models.EventAddParticipantToRoom, models.JoinRoomMessage{SessionID: "session-1"})

	// Give the join frames time to land before broadcasting.
	time.Sleep(50 * time.Millisecond)

	sender.emit(models.EventBroadcastMessage, models.BroadcastMessage{
		FromUserID:    "u1",
		FromUserName:  "Deaf: Ada Lovelace",
		SessionID:     "session-1",
		SignalMessage: "Clap",
		SignalCode:    models.SignalClap,
	})

	frame := readFrame(t, peer.sock)
	if frame.Event != models.EventBroadcastMessageServer {
		t.Fatalf("peer received %q", frame.Event)
	}
	var msg models.BroadcastServerMessage
	if err := json.Unmarshal(frame.Data, &msg); err != nil {
		t.Fatalf("failed to unmarshal payload: %v", err)
	}
	if msg.FromUserID != "u1" || msg.SignalCode != models.SignalClap || msg.SignalMessage != "Clap" {
		t.Fatalf("got %+v", msg)
	}
	// The raw frame must not leak the sessionId.
	if strings.Contains(string(frame.Data), "sessionId") {
		t.Fatalf("sessionId leaked in %s", frame.Data)
	}

	expectNoFrame(t, sender.sock)
}

func TestBridgeDirectedDelivery(t *testing.T) {
	presence := &fakePresence{bindings: map[string]*models.Participant{}}
	server, _ := newBridgeServer(presence)
	defer server.Close()

	sender := dialBridge(t, server)
	recipient := dialBridge(t, server)
	presence.bind("u2", &models.Participant{UserID: "u2", SocketID: recipient.sid})

	sender.emit(models.EventSendMessageToParticipant, models.DirectedMessage{
		FromUserID:    "u1",
		FromUserName:  "Hearing: Grace Hopper",
		ToUserID:      "u2",
		SignalMessage: "Please look at me",
	})

	frame := readFrame(t, recipient.sock)
	if frame.Event != models.EventMessageReceived {
		t.Fatalf("recipient received %q", frame.Event)
	}
	var msg models.DirectedServerMessage
	if err := json.Unmarshal(frame.Data, &msg); err != nil {
		t.Fatalf("failed to unmarshal payload: %v", err)
	}
	if msg.FromUserID != "u1" || msg.SignalMessage != "Please look at me" {
		t.Fatalf("got %+v", msg)
	}
}

func TestBridgeDeliberateLeaveMarksPresence(t *testing.T) {
	presence := &fakePresence{bindings: map[string]*models.Participant{}}
	server, _ := newBridgeServer(presence)
	defer server.Close()

	client := dialBridge(t, server)
	reason, _ := json.Marshal(map[string]string{"reason": models.DisconnectReasonClientLeave})
	if err := client.sock.WriteJSON(Frame{Event: models.EventDisconnect, Data: reason}); err != nil {
		t.Fatalf("failed to send leave frame: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if got := presence.marked(); len(got) == 1 && got[0] == client.sid {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("presence marked %v, want [%s]", presence.marked(), client.sid)
}

func TestBridgeTransportDropLeavesBindingActive(t *testing.T) {
	presence := &fakePresence{bindings: map[string]*models.Participant{}}
	server, _ := newBridgeServer(presence)
	defer server.Close()

	client := dialBridge(t, server)
	client.sock.Close()

	time.Sleep(100 * time.Millisecond)
	if got := presence.marked(); len(got) != 0 {
		t.Fatalf("transport drop marked presence: %v", got)
	}
}

func TestBridgeRefusesWhenStoreUnavailable(t *testing.T) {
	router := NewRouter(NewRegistry(), &fakePresence{bindings: map[string]*models.Participant{}})
	server := httptest.NewServer(NewBridge(router, func() bool { return false }))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	sock, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial bridge: %v", err)
	}
	defer sock.Close()

	frame := readFrame(t, sock)
	if frame.Event != models.EventConnectError {
		t.Fatalf("handshake event = %q, want connect_error", frame.Event)
	}
	if !strings.Contains(string(frame.Data), models.ErrDBConnectionMessage) {
		t.Fatalf("refusal payload %s missing the literal reason", frame.Data)
	}
}
