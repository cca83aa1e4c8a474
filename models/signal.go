package models

// SignalCode identifies a reaction signal on the wire.
type SignalCode int

const (
	SignalHandRaise SignalCode = iota
	SignalAcknowledge
	SignalLike
	SignalClap
	SignalLowerHand
)

// Change these carefully, remote clients render them verbatim.
var signalMessages = map[SignalCode]string{
	SignalHandRaise:   "Raise Hand",
	SignalAcknowledge: "Ok",
	SignalLike:        "Like",
	SignalClap:        "Clap",
	SignalLowerHand:   "Lower Hand",
}

// Valid reports whether c is one of the five known signal codes.
func (c SignalCode) Valid() bool {
	_, ok := signalMessages[c]
	return ok
}

// Message returns the rendered text for the signal.
func (c SignalCode) Message() string {
	return signalMessages[c]
}

// Signaling event names, identical on both transports.
const (
	EventAddParticipantToRoom     = "addParticipantToRoom"
	EventSendMessageToParticipant = "sendMessageToParticipant"
	EventMessageReceived          = "messageReceivedFromParticipant"
	EventBroadcastMessage         = "broadcastMessage"
	EventBroadcastMessageServer   = "broadcastMessageServer"
	EventBroadcastSpeaking        = "broadcastSpeakingMessage"
	EventBroadcastSpeakingServer  = "broadcastSpeakingMessageServer"
	EventConnect                  = "connect"
	EventConnectError             = "connect_error"
	EventDisconnect               = "disconnect"
)

// ErrDBConnectionMessage is the handshake rejection reason clients key on.
// CHANGE THIS WITH CARE, the client compares against the literal string.
const ErrDBConnectionMessage = "DB CONNECTION ERROR"

// DisconnectReasonClientLeave is the only disconnect reason treated as a
// deliberate leave; everything else is assumed to be a transient drop the
// client will recover from.
const DisconnectReasonClientLeave = "client namespace disconnect"

// DisconnectReasonTransportClose is reported when the transport drops
// without a leave frame.
const DisconnectReasonTransportClose = "transport close"

// JoinRoomMessage adds the emitting socket to its session room.
type JoinRoomMessage struct {
	SessionID string `json:"sessionId"`
}

// DirectedMessage is a point-to-point free-text signal, client to server.
type DirectedMessage struct {
	FromUserID    string `json:"fromUserId"`
	FromUserName  string `json:"fromUserName"`
	ToUserID      string `json:"toUserId"`
	SignalMessage string `json:"signalMessage"`
}

// DirectedServerMessage is the server-to-recipient form of a DirectedMessage.
type DirectedServerMessage struct {
	FromUserName  string `json:"fromUserName"`
	FromUserID    string `json:"fromUserId"`
	SignalMessage string `json:"signalMessage"`
}

// BroadcastMessage is a room-wide reaction signal, client to server.
type BroadcastMessage struct {
	FromUserID    string     `json:"fromUserId"`
	FromUserName  string     `json:"fromUserName"`
	SessionID     string     `json:"sessionId"`
	SignalMessage string     `json:"signalMessage"`
	SignalCode    SignalCode `json:"signalCode"`
}

// BroadcastServerMessage is the fan-out form of a BroadcastMessage; the
// sessionId is stripped before delivery.
type BroadcastServerMessage struct {
	FromUserName  string     `json:"fromUserName"`
	FromUserID    string     `json:"fromUserId"`
	SignalMessage string     `json:"signalMessage"`
	SignalCode    SignalCode `json:"signalCode"`
}

// SpeakingMessage toggles a participant's speaking state for the room.
type SpeakingMessage struct {
	SpeakingUserID      string `json:"speakingUserId"`
	SpeakingDisplayName string `json:"speakingDisplayName"`
	Speaking            bool   `json:"speaking"`
	SessionID           string `json:"sessionId"`
}

// SpeakingServerMessage is the fan-out form of a SpeakingMessage.
type SpeakingServerMessage struct {
	SpeakingUserID      string `json:"speakingUserId"`
	SpeakingDisplayName string `json:"speakingDisplayName"`
	Speaking            bool   `json:"speaking"`
}
