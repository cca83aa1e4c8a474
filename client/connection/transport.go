package connection

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"accessible_connect/models"

	"github.com/gorilla/websocket"
)

// frame mirrors the server bridge's envelope.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type connectAck struct {
	SID string `json:"sid"`
}

type connectErrorPayload struct {
	Message string `json:"message"`
}

type disconnectPayload struct {
	Reason string `json:"reason"`
}

// WebSocketTransport speaks the server's websocket bridge protocol: JSON
// frames carrying the same events as the Socket.IO endpoint, with a
// server-assigned socket id delivered in the connect ack.
type WebSocketTransport struct {
	url string

	mu     sync.Mutex
	sock   *websocket.Conn
	id     string
	closed bool

	hmu      sync.RWMutex
	handlers map[string]func(json.RawMessage)

	onConnect    func(socketID string)
	onDisconnect func(reason string)
}

// NewWebSocketTransport returns a transport for the given ws:// URL.
func NewWebSocketTransport(url string) *WebSocketTransport {
	return &WebSocketTransport{
		url:      url,
		handlers: make(map[string]func(json.RawMessage)),
	}
}

// OnConnect registers the connection-established callback.
func (t *WebSocketTransport) OnConnect(fn func(socketID string)) {
	t.onConnect = fn
}

// OnDisconnect registers the connection-lost callback.
func (t *WebSocketTransport) OnDisconnect(fn func(reason string)) {
	t.onDisconnect = fn
}

// On registers a handler for a named server event.
func (t *WebSocketTransport) On(event string, fn func(data json.RawMessage)) {
	t.hmu.Lock()
	defer t.hmu.Unlock()
	t.handlers[event] = fn
}

// Connect dials the bridge and waits for the connect ack. A server-side
// handshake refusal comes back as an error carrying the server's literal
// reason string.
func (t *WebSocketTransport) Connect() error {
	sock, _, err := websocket.DefaultDialer.Dial(t.url, nil)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", t.url, err)
	}

	var first frame
	if err := sock.ReadJSON(&first); err != nil {
		sock.Close()
		return fmt.Errorf("failed to read handshake: %w", err)
	}

	switch first.Event {
	case models.EventConnect:
		var ack connectAck
		if err := json.Unmarshal(first.Data, &ack); err != nil || ack.SID == "" {
			sock.Close()
			return errors.New("malformed connect ack")
		}
		t.mu.Lock()
		t.sock = sock
		t.id = ack.SID
		t.closed = false
		t.mu.Unlock()

		go t.readPump(sock)
		if t.onConnect != nil {
			t.onConnect(ack.SID)
		}
		return nil

	case models.EventConnectError:
		sock.Close()
		var payload connectErrorPayload
		if err := json.Unmarshal(first.Data, &payload); err == nil && payload.Message != "" {
			return errors.New(payload.Message)
		}
		return errors.New("connection refused")

	default:
		sock.Close()
		return fmt.Errorf("unexpected handshake event %q", first.Event)
	}
}

// ID returns the server-assigned socket id of the current connection.
func (t *WebSocketTransport) ID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.id
}

// Emit sends one event frame.
func (t *WebSocketTransport) Emit(event string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sock == nil {
		return errors.New("transport is not connected")
	}
	return t.sock.WriteJSON(frame{Event: event, Data: data})
}

// Close deliberately ends the session: the leave frame tells the server to
// mark this participant disconnected rather than wait for a reconnect.
func (t *WebSocketTransport) Close() error {
	t.mu.Lock()
	sock := t.sock
	t.closed = true
	t.mu.Unlock()

	if sock == nil {
		return nil
	}
	data, _ := json.Marshal(disconnectPayload{Reason: models.DisconnectReasonClientLeave})
	if err := sock.WriteJSON(frame{Event: models.EventDisconnect, Data: data}); err != nil {
		log.Printf("Failed to send leave frame: %v", err)
	}
	return sock.Close()
}

func (t *WebSocketTransport) readPump(sock *websocket.Conn) {
	for {
		var f frame
		if err := sock.ReadJSON(&f); err != nil {
			t.mu.Lock()
			deliberate := t.closed
			t.mu.Unlock()

			reason := models.DisconnectReasonTransportClose
			if deliberate {
				reason = models.DisconnectReasonClientLeave
			}
			if t.onDisconnect != nil {
				t.onDisconnect(reason)
			}
			return
		}

		t.hmu.RLock()
		handler := t.handlers[f.Event]
		t.hmu.RUnlock()
		if handler != nil {
			handler(f.Data)
		}
	}
}
