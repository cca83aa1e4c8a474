package socket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"accessible_connect/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Frame is the envelope the bridge speaks: the same event names and payloads
// as the Socket.IO endpoint, as plain JSON over a websocket.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ConnectAck carries the server-assigned socket id to a bridge client.
type ConnectAck struct {
	SID string `json:"sid"`
}

// connectErrorPayload mirrors the socket.io connect_error shape.
type connectErrorPayload struct {
	Message string `json:"message"`
}

// disconnectPayload carries the client's leave reason.
type disconnectPayload struct {
	Reason string `json:"reason"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// bridgeConn adapts one bridge websocket to the registry's Conn interface.
// Emit is called from other connections' read loops, so writes are locked.
type bridgeConn struct {
	id   string
	mu   sync.Mutex
	sock *websocket.Conn
}

func (c *bridgeConn) ID() string { return c.id }

func (c *bridgeConn) Emit(event string, v ...interface{}) {
	var data json.RawMessage
	if len(v) > 0 {
		b, err := json.Marshal(v[0])
		if err != nil {
			log.Printf("❌ Failed to marshal %s payload: %v", event, err)
			return
		}
		data = b
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.sock.WriteJSON(Frame{Event: event, Data: data}); err != nil {
		log.Printf("❌ Failed to emit %s to %s: %v", event, c.id, err)
	}
}

// Bridge is the native-client websocket endpoint. It assigns each
// connection a socket id, hands the client a connect ack, and feeds decoded
// frames into the same router the Socket.IO endpoint uses.
type Bridge struct {
	Router *Router
	Ready  func() bool
}

// NewBridge initializes a websocket bridge over the router.
func NewBridge(router *Router, ready func() bool) *Bridge {
	return &Bridge{Router: router, Ready: ready}
}

func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sock, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("❌ Websocket upgrade failed:", err)
		return
	}

	if !b.Ready() {
		log.Println("❌ Refusing bridge connection, store is not reachable")
		payload, _ := json.Marshal(connectErrorPayload{Message: models.ErrDBConnectionMessage})
		_ = sock.WriteJSON(Frame{Event: models.EventConnectError, Data: payload})
		sock.Close()
		return
	}

	conn := &bridgeConn{id: uuid.New().String(), sock: sock}
	b.Router.HandleConnect(conn)
	conn.Emit(models.EventConnect, ConnectAck{SID: conn.id})

	reason := models.DisconnectReasonTransportClose
	defer func() {
		sock.Close()
		b.Router.HandleDisconnect(context.Background(), conn, reason)
	}()

	for {
		var frame Frame
		if err := sock.ReadJSON(&frame); err != nil {
			return
		}

		switch frame.Event {
		case models.EventAddParticipantToRoom:
			var msg models.JoinRoomMessage
			if unmarshalFrame(frame, &msg) {
				b.Router.HandleJoin(conn, msg)
			}
		case models.EventSendMessageToParticipant:
			var msg models.DirectedMessage
			if unmarshalFrame(frame, &msg) {
				b.Router.HandleDirected(r.Context(), conn, msg)
			}
		case models.EventBroadcastMessage:
			var msg models.BroadcastMessage
			if unmarshalFrame(frame, &msg) {
				b.Router.HandleBroadcast(conn, msg)
			}
		case models.EventBroadcastSpeaking:
			var msg models.SpeakingMessage
			if unmarshalFrame(frame, &msg) {
				b.Router.HandleSpeaking(conn, msg)
			}
		case models.EventDisconnect:
			var msg disconnectPayload
			if unmarshalFrame(frame, &msg) && msg.Reason != "" {
				reason = msg.Reason
			}
			return
		default:
			log.Printf("⚠️ Unknown bridge event %q from %s", frame.Event, conn.id)
		}
	}
}

func unmarshalFrame(frame Frame, v interface{}) bool {
	if err := json.Unmarshal(frame.Data, v); err != nil {
		log.Printf("❌ Malformed %s payload: %v", frame.Event, err)
		return false
	}
	return true
}
