package socket

import (
	"context"
	"log"

	"accessible_connect/models"
)

// PresenceStore is the slice of the presence tracker the router needs.
type PresenceStore interface {
	ActiveBinding(ctx context.Context, userID string) (*models.Participant, error)
	MarkDisconnected(ctx context.Context, socketID string) error
}

// Router dispatches signaling events. It keeps no signal history: every
// message is resolved against the registry, re-emitted, and discarded.
type Router struct {
	Registry *Registry
	Presence PresenceStore
}

// NewRouter initializes a router over the given registry and presence store.
func NewRouter(registry *Registry, presence PresenceStore) *Router {
	return &Router{Registry: registry, Presence: presence}
}

// HandleConnect registers a new connection. It is not routable until it
// joins a room.
func (rt *Router) HandleConnect(c Conn) {
	log.Println("✅ Socket connected:", c.ID())
	rt.Registry.Add(c)
}

// HandleJoin adds the connection to its session room.
func (rt *Router) HandleJoin(c Conn, msg models.JoinRoomMessage) {
	if msg.SessionID == "" {
		log.Println("❌ Invalid sessionId in addParticipantToRoom request")
		return
	}
	log.Printf("👥 Socket %s joined session %s", c.ID(), msg.SessionID)
	rt.Registry.Join(msg.SessionID, c)
}

// HandleDirected forwards a point-to-point message to the recipient's most
// recent active binding. An unknown or offline recipient is silently
// dropped; the sender is never told.
func (rt *Router) HandleDirected(ctx context.Context, c Conn, msg models.DirectedMessage) {
	log.Printf("📩 Directed message from %s to %s", msg.FromUserID, msg.ToUserID)

	binding, err := rt.Presence.ActiveBinding(ctx, msg.ToUserID)
	if err != nil {
		log.Printf("❌ Failed to resolve recipient %s: %v", msg.ToUserID, err)
		return
	}
	if binding == nil {
		log.Printf("⚠️ No active binding for %s, dropping directed message", msg.ToUserID)
		return
	}

	dest, ok := rt.Registry.Get(binding.SocketID)
	if !ok {
		log.Printf("⚠️ Socket %s for %s not connected here, dropping directed message", binding.SocketID, msg.ToUserID)
		return
	}

	dest.Emit(models.EventMessageReceived, models.DirectedServerMessage{
		FromUserName:  msg.FromUserName,
		FromUserID:    msg.FromUserID,
		SignalMessage: msg.SignalMessage,
	})
}

// HandleBroadcast fans a reaction signal out to the sender's session room,
// stripping the sessionId and excluding the sender's own socket.
func (rt *Router) HandleBroadcast(c Conn, msg models.BroadcastMessage) {
	if msg.SessionID == "" {
		log.Println("❌ Invalid sessionId in broadcastMessage request")
		return
	}
	log.Printf("📢 Broadcast from %s to session %s: %s", msg.FromUserID, msg.SessionID, msg.SignalMessage)

	rt.Registry.Broadcast(msg.SessionID, c.ID(), models.EventBroadcastMessageServer,
		models.BroadcastServerMessage{
			FromUserName:  msg.FromUserName,
			FromUserID:    msg.FromUserID,
			SignalMessage: msg.SignalMessage,
			SignalCode:    msg.SignalCode,
		})
}

// HandleSpeaking fans a speaking-state toggle out to the session room.
func (rt *Router) HandleSpeaking(c Conn, msg models.SpeakingMessage) {
	if msg.SessionID == "" {
		log.Println("❌ Invalid sessionId in broadcastSpeakingMessage request")
		return
	}

	rt.Registry.Broadcast(msg.SessionID, c.ID(), models.EventBroadcastSpeakingServer,
		models.SpeakingServerMessage{
			SpeakingUserID:      msg.SpeakingUserID,
			SpeakingDisplayName: msg.SpeakingDisplayName,
			Speaking:            msg.Speaking,
		})
}

// HandleDisconnect prunes room membership and, only for a deliberate leave,
// tells the presence tracker to mark the binding disconnected. A transport
// drop leaves the binding active on the assumption the client will
// reconnect.
func (rt *Router) HandleDisconnect(ctx context.Context, c Conn, reason string) {
	log.Printf("❌ Socket disconnected: %s (%s)", c.ID(), reason)
	rt.Registry.Remove(c.ID())

	if reason != models.DisconnectReasonClientLeave {
		return
	}
	if err := rt.Presence.MarkDisconnected(ctx, c.ID()); err != nil {
		log.Printf("❌ Failed to mark %s disconnected: %v", c.ID(), err)
	}
}
