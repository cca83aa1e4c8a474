package socket

import (
	"context"
	"errors"
	"log"

	"accessible_connect/models"

	socketio "github.com/googollee/go-socket.io"
)

// NewSocketServer initializes the browser-facing Socket.IO endpoint and
// wires its events into the router. ready gates handshakes on the document
// store being reachable; until it reports true every connection attempt is
// refused with the literal reason the client alerts on.
func NewSocketServer(router *Router, ready func() bool) *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(c socketio.Conn) error {
		if !ready() {
			log.Println("❌ Refusing socket connection, store is not reachable")
			return errors.New(models.ErrDBConnectionMessage)
		}
		router.HandleConnect(c)
		return nil
	})

	server.OnEvent("/", models.EventAddParticipantToRoom, func(c socketio.Conn, msg models.JoinRoomMessage) {
		router.HandleJoin(c, msg)
	})

	server.OnEvent("/", models.EventSendMessageToParticipant, func(c socketio.Conn, msg models.DirectedMessage) {
		router.HandleDirected(context.Background(), c, msg)
	})

	server.OnEvent("/", models.EventBroadcastMessage, func(c socketio.Conn, msg models.BroadcastMessage) {
		router.HandleBroadcast(c, msg)
	})

	server.OnEvent("/", models.EventBroadcastSpeaking, func(c socketio.Conn, msg models.SpeakingMessage) {
		router.HandleSpeaking(c, msg)
	})

	server.OnError("/", func(c socketio.Conn, err error) {
		log.Println("❌ Socket error:", err)
	})

	server.OnDisconnect("/", func(c socketio.Conn, reason string) {
		router.HandleDisconnect(context.Background(), c, reason)
	})

	return server
}
