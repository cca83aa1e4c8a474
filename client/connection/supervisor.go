// Package connection owns the client side of the signaling connection: the
// transport lifecycle, reconnection detection, and re-registration into the
// session room after a reconnect.
package connection

import (
	"log"
	"sync"
	"time"

	"accessible_connect/models"
)

// Status is the connectivity state surfaced to observers.
type Status string

const (
	StatusOffline      Status = "Offline"
	StatusConnecting   Status = "Connecting"
	StatusConnected    Status = "Connected"
	StatusDisconnected Status = "Disconnected"
)

// AlertTextTryAgain is the blocking alert shown when the server refuses the
// handshake because its store is unreachable.
const AlertTextTryAgain = "Server Connection Lost! \n\nOption 1: If you are in the call and you don't see 'Server Connected!' in green color within 60 seconds, please refresh the page and join the call again.\n\nOption 2: If you have NOT joined the call yet, refresh the page and try joining the call again."

// retryInterval is the flat delay between connection attempts. There is no
// backoff and no retry cap.
const retryInterval = time.Second

const socketIDKey = "socketId"

// Transport is the persistent bidirectional connection the supervisor
// drives. Implementations report lifecycle changes through the supervisor's
// Handle methods.
type Transport interface {
	Connect() error
	ID() string
	Emit(event string, v interface{}) error
	Close() error
}

// SessionStore is the durable client-side storage the reconnection
// heuristic keys on.
type SessionStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Clear()
}

// MemoryStore is an in-memory SessionStore.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]string)
}

// Config wires a Supervisor's collaborators explicitly; there is no ambient
// singleton connection.
type Config struct {
	Transport Transport
	Store     SessionStore
	Self      models.Participant
	// Announce re-creates the participant record server-side with the
	// current socket id (the createParticipant path).
	Announce func(models.Participant) error
	// Alert surfaces a blocking user-facing message; nil disables it.
	Alert func(message string)
	// OnStatus observes connectivity changes; nil disables it.
	OnStatus func(Status)
	// RetryInterval overrides the flat retry delay, mainly for tests.
	RetryInterval time.Duration
}

// Supervisor owns the connection lifecycle. A reconnection is detected by
// comparing the transport's new connection id against the persisted one;
// each genuine reconnection triggers exactly one re-announce and re-join.
type Supervisor struct {
	mu sync.Mutex

	transport Transport
	store     SessionStore
	self      models.Participant
	announce  func(models.Participant) error
	alert     func(string)
	onStatus  func(Status)
	retry     time.Duration

	status Status
}

// NewSupervisor initializes a supervisor in the Offline state.
func NewSupervisor(cfg Config) *Supervisor {
	retry := cfg.RetryInterval
	if retry <= 0 {
		retry = retryInterval
	}
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}
	return &Supervisor{
		transport: cfg.Transport,
		store:     store,
		self:      cfg.Self,
		announce:  cfg.Announce,
		alert:     cfg.Alert,
		onStatus:  cfg.OnStatus,
		retry:     retry,
		status:    StatusOffline,
	}
}

// Start opens the transport. Connection failures are fed into the retry
// loop rather than returned.
func (s *Supervisor) Start() {
	s.setStatus(StatusConnecting)
	if err := s.transport.Connect(); err != nil {
		s.HandleConnectError(err)
	}
}

// Register performs the first-join handshake once the participant config is
// complete: bind the current socket id, persist it, announce the
// participant, and join the session room.
func (s *Supervisor) Register() error {
	socketID := s.transport.ID()

	s.mu.Lock()
	s.self.SocketID = socketID
	self := s.self
	s.mu.Unlock()

	s.store.Set(socketIDKey, socketID)

	if s.announce != nil {
		if err := s.announce(self); err != nil {
			return err
		}
	}
	return s.JoinRoom()
}

// JoinRoom adds this connection to the session's signaling room. Idempotent
// server-side.
func (s *Supervisor) JoinRoom() error {
	return s.transport.Emit(models.EventAddParticipantToRoom, models.JoinRoomMessage{
		SessionID: s.self.SessionID,
	})
}

// HandleConnect is called by the transport whenever a connection is
// established. A new connection id, when an id was already persisted, means
// the transport reconnected underneath us: rebind identity to the new
// socket, re-join the room, and persist the id. The comparison against the
// persisted id, not event counting, is what keeps the re-announce to one
// per reconnection.
func (s *Supervisor) HandleConnect(socketID string) {
	s.mu.Lock()
	previousID, hasPrevious := s.store.Get(socketIDKey)
	reconnected := hasPrevious && socketID != previousID
	if reconnected {
		s.self.SocketID = socketID
		s.store.Set(socketIDKey, socketID)
	}
	self := s.self
	s.mu.Unlock()

	if reconnected {
		log.Printf("Socket reconnected with new id %s, re-announcing", socketID)
		if s.announce != nil {
			if err := s.announce(self); err != nil {
				log.Printf("Failed to re-announce participant: %v", err)
			}
		}
		if err := s.JoinRoom(); err != nil {
			log.Printf("Failed to re-join room: %v", err)
		}
	}

	s.setStatus(StatusConnected)
}

// HandleDisconnect surfaces the status change and, unless the participant
// left deliberately, re-dials on the flat retry interval. Server-side
// cleanup is the presence tracker's job, not ours.
func (s *Supervisor) HandleDisconnect(reason string) {
	log.Printf("Socket disconnected: %s", reason)
	s.setStatus(StatusDisconnected)
	if reason == models.DisconnectReasonClientLeave {
		return
	}
	s.scheduleRetry()
}

// HandleConnectError alerts on the fatal store-unavailable reason and
// schedules the next attempt after a flat delay, indefinitely.
func (s *Supervisor) HandleConnectError(err error) {
	log.Printf("Socket connect error: %v", err)
	if err != nil && err.Error() == models.ErrDBConnectionMessage && s.alert != nil {
		s.alert(AlertTextTryAgain)
	}
	s.scheduleRetry()
}

// scheduleRetry arranges the next connection attempt after the flat delay.
// There is no backoff and no attempt cap; the loop ends only with a
// successful connect or a deliberate Leave.
func (s *Supervisor) scheduleRetry() {
	time.AfterFunc(s.retry, func() {
		s.setStatus(StatusConnecting)
		if err := s.transport.Connect(); err != nil {
			s.HandleConnectError(err)
		}
	})
}

// Leave deliberately closes the connection so the server marks this
// participant disconnected.
func (s *Supervisor) Leave() error {
	s.store.Clear()
	err := s.transport.Close()
	s.setStatus(StatusOffline)
	return err
}

// Emit forwards an event to the transport. Satisfies reaction.Emitter.
func (s *Supervisor) Emit(event string, v interface{}) error {
	return s.transport.Emit(event, v)
}

// Status returns the current connectivity state.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Supervisor) setStatus(status Status) {
	s.mu.Lock()
	changed := s.status != status
	s.status = status
	s.mu.Unlock()
	if changed && s.onStatus != nil {
		s.onStatus(status)
	}
}
