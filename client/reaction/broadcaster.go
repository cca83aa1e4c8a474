// Package reaction holds the client-side reaction state: who has a hand up,
// who acknowledged, liked, clapped, or is speaking, and the plumbing that
// turns a released signal into exactly one outbound message plus local
// transcript side effects.
package reaction

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"accessible_connect/models"
)

// Kind is one of the per-participant reaction states.
type Kind int

const (
	KindHandRaised Kind = iota
	KindAcknowledged
	KindLiked
	KindClapped
	KindSpeaking
)

// ExpireAfter is how long a transient reaction stays visible.
const ExpireAfter = 10 * time.Second

// Emitter is the outbound side of the signaling connection.
type Emitter interface {
	Emit(event string, v interface{}) error
}

// Notifier surfaces toast-style notifications; nil disables them.
type Notifier interface {
	Notify(title, message string)
}

// Broadcaster drives reaction signals in both directions: local releases go
// out as broadcast messages, and incoming signals from the room are folded
// into the same per-kind queues.
type Broadcaster struct {
	mu sync.Mutex

	self       models.Participant
	emitter    Emitter
	notifier   Notifier
	transcript *Transcript

	// Transient kinds self-expire this long after insertion. Overridable
	// before first use, mainly for tests.
	Cooldown time.Duration

	// queues holds, per kind, the set of participants currently in that
	// state with their insertion time. At most one entry per participant
	// per kind.
	queues map[Kind]map[string]time.Time

	handRaisedLocal bool
}

// NewBroadcaster initializes a broadcaster for the local participant.
func NewBroadcaster(self models.Participant, emitter Emitter, transcript *Transcript, notifier Notifier) *Broadcaster {
	if transcript == nil {
		transcript = &Transcript{}
	}
	return &Broadcaster{
		self:       self,
		emitter:    emitter,
		notifier:   notifier,
		transcript: transcript,
		Cooldown:   ExpireAfter,
		queues: map[Kind]map[string]time.Time{
			KindHandRaised:   {},
			KindAcknowledged: {},
			KindLiked:        {},
			KindClapped:      {},
			KindSpeaking:     {},
		},
	}
}

// Transcript returns the feed this broadcaster appends to.
func (b *Broadcaster) Transcript() *Transcript {
	return b.transcript
}

// Release applies a locally released signal and emits exactly one broadcast
// message scoped to the session room.
func (b *Broadcaster) Release(code models.SignalCode) error {
	if !code.Valid() {
		return fmt.Errorf("reaction: unknown signal code %d", code)
	}

	b.mu.Lock()
	b.apply(code, b.self.UserID)
	if code == models.SignalHandRaise {
		b.handRaisedLocal = true
	} else if code == models.SignalLowerHand {
		b.handRaisedLocal = false
	}
	b.mu.Unlock()

	b.transcript.Append(TranscriptEntry{
		SpeakerDisplayName:     speakerName(b.self.DisplayName),
		SpeakerParticipantType: speakerType(b.self.DisplayName),
		Timestamp:              time.Now(),
		Comment:                code.Message(),
		Signal:                 true,
	})

	return b.emitter.Emit(models.EventBroadcastMessage, models.BroadcastMessage{
		FromUserID:    b.self.UserID,
		FromUserName:  b.self.DisplayName,
		SessionID:     b.self.SessionID,
		SignalMessage: code.Message(),
		SignalCode:    code,
	})
}

// HandleBroadcast folds a remote participant's signal into the queues and
// appends it to the transcript.
func (b *Broadcaster) HandleBroadcast(msg models.BroadcastServerMessage) {
	if !msg.SignalCode.Valid() {
		return
	}

	b.mu.Lock()
	b.apply(msg.SignalCode, msg.FromUserID)
	b.mu.Unlock()

	b.transcript.Append(TranscriptEntry{
		SpeakerDisplayName:     speakerName(msg.FromUserName),
		SpeakerParticipantType: speakerType(msg.FromUserName),
		Timestamp:              time.Now(),
		Comment:                msg.SignalCode.Message(),
		Signal:                 true,
	})
}

// SendDirected fires a free-text point-to-point message, e.g. a coaching
// prompt. It has no effect on reaction state and no delivery guarantee.
func (b *Broadcaster) SendDirected(toUserID, message string) error {
	return b.emitter.Emit(models.EventSendMessageToParticipant, models.DirectedMessage{
		FromUserID:    b.self.UserID,
		FromUserName:  b.self.DisplayName,
		ToUserID:      toUserID,
		SignalMessage: message,
	})
}

// HandleDirected surfaces a directed message addressed to us.
func (b *Broadcaster) HandleDirected(msg models.DirectedServerMessage) {
	b.transcript.Append(TranscriptEntry{
		SpeakerDisplayName:     fmt.Sprintf("%s to You", speakerName(msg.FromUserName)),
		SpeakerParticipantType: speakerType(msg.FromUserName),
		Timestamp:              time.Now(),
		Comment:                msg.SignalMessage,
		Signal:                 true,
	})
	if b.notifier != nil {
		b.notifier.Notify(msg.SignalMessage, fmt.Sprintf("From %s", speakerName(msg.FromUserName)))
	}
}

// SetSpeaking toggles the local speaking state and announces it to the room.
func (b *Broadcaster) SetSpeaking(speaking bool) error {
	b.mu.Lock()
	if speaking {
		b.insert(KindSpeaking, b.self.UserID)
	} else {
		delete(b.queues[KindSpeaking], b.self.UserID)
	}
	b.mu.Unlock()

	return b.emitter.Emit(models.EventBroadcastSpeaking, models.SpeakingMessage{
		SpeakingUserID:      b.self.UserID,
		SpeakingDisplayName: b.self.DisplayName,
		Speaking:            speaking,
		SessionID:           b.self.SessionID,
	})
}

// HandleSpeaking folds a remote participant's speaking toggle into the
// speaking queue.
func (b *Broadcaster) HandleSpeaking(msg models.SpeakingServerMessage) {
	b.mu.Lock()
	if msg.Speaking {
		b.insert(KindSpeaking, msg.SpeakingUserID)
	} else {
		delete(b.queues[KindSpeaking], msg.SpeakingUserID)
	}
	b.mu.Unlock()

	comment := "stopped speaking"
	if msg.Speaking {
		comment = "started speaking"
	}
	b.transcript.Append(TranscriptEntry{
		SpeakerDisplayName:     speakerName(msg.SpeakingDisplayName),
		SpeakerParticipantType: speakerType(msg.SpeakingDisplayName),
		Timestamp:              time.Now(),
		Comment:                comment,
		Signal:                 true,
	})
}

// Active reports whether the participant currently holds the given state.
func (b *Broadcaster) Active(kind Kind, userID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.queues[kind][userID]
	return ok
}

// HandRaisedLocally reports whether the local participant's hand is up.
func (b *Broadcaster) HandRaisedLocally() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handRaisedLocal
}

// apply folds one signal into the queues. Hand raise is sticky until an
// explicit lower; the transient kinds schedule their own removal. Callers
// hold the lock.
func (b *Broadcaster) apply(code models.SignalCode, userID string) {
	switch code {
	case models.SignalHandRaise:
		b.insert(KindHandRaised, userID)
	case models.SignalLowerHand:
		delete(b.queues[KindHandRaised], userID)
	case models.SignalAcknowledge:
		b.insertTransient(KindAcknowledged, userID)
	case models.SignalLike:
		b.insertTransient(KindLiked, userID)
	case models.SignalClap:
		b.insertTransient(KindClapped, userID)
	}
}

// insert is an idempotent set add; re-inserting refreshes the timestamp but
// keeps a single logical membership.
func (b *Broadcaster) insert(kind Kind, userID string) {
	b.queues[kind][userID] = time.Now()
}

// insertTransient adds the entry and schedules its removal. A re-insert
// before expiry leaves both timers running; removal of an absent entry is a
// no-op, so the earlier timer firing first is harmless.
func (b *Broadcaster) insertTransient(kind Kind, userID string) {
	b.insert(kind, userID)
	time.AfterFunc(b.Cooldown, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.queues[kind], userID)
	})
}

// speakerName pulls the bare name out of a "<Type>: <First> <Last>" display
// label.
func speakerName(displayName string) string {
	if _, rest, ok := strings.Cut(displayName, ": "); ok {
		return rest
	}
	return displayName
}

// speakerType pulls the participant type out of the display label.
func speakerType(displayName string) string {
	if t, _, ok := strings.Cut(displayName, ":"); ok {
		return t
	}
	return ""
}
