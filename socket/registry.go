package socket

import "sync"

// Conn is the slice of a transport connection the registry needs. Both
// socket.io channels and bridge websockets satisfy it.
type Conn interface {
	ID() string
	Emit(event string, v ...interface{})
}

// Registry maps socket ids to live connections and sessions to their member
// sets. A connection is not routable until it joins a room, and belongs to
// at most one room at a time.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]Conn                // socketId -> connection
	rooms  map[string]map[string]struct{} // sessionId -> member socketIds
	joined map[string]string              // socketId -> sessionId
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[string]Conn),
		rooms:  make(map[string]map[string]struct{}),
		joined: make(map[string]string),
	}
}

// Add registers a freshly opened connection. It is in no room yet.
func (r *Registry) Add(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.ID()] = c
}

// Join places the connection in the member set for sessionID. Joining again
// moves the connection to the most recently joined room.
func (r *Registry) Join(sessionID string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := c.ID()
	r.conns[id] = c

	if prev, ok := r.joined[id]; ok && prev != sessionID {
		delete(r.rooms[prev], id)
		if len(r.rooms[prev]) == 0 {
			delete(r.rooms, prev)
		}
	}

	members, ok := r.rooms[sessionID]
	if !ok {
		members = make(map[string]struct{})
		r.rooms[sessionID] = members
	}
	members[id] = struct{}{}
	r.joined[id] = sessionID
}

// Get resolves a socket id to its live connection.
func (r *Registry) Get(socketID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[socketID]
	return c, ok
}

// Broadcast emits the event to every member of sessionID, skipping the
// socket id given as except (empty means deliver to all). Fan-out is
// best-effort with no delivery acknowledgment. Returns the number of
// connections the event was emitted to; an empty or unknown room is a no-op.
func (r *Registry) Broadcast(sessionID, except, event string, v interface{}) int {
	r.mu.RLock()
	members := r.rooms[sessionID]
	targets := make([]Conn, 0, len(members))
	for id := range members {
		if id == except {
			continue
		}
		if c, ok := r.conns[id]; ok {
			targets = append(targets, c)
		}
	}
	r.mu.RUnlock()

	for _, c := range targets {
		c.Emit(event, v)
	}
	return len(targets)
}

// Remove drops the connection and prunes its room membership.
func (r *Registry) Remove(socketID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conns, socketID)
	if sessionID, ok := r.joined[socketID]; ok {
		delete(r.joined, socketID)
		delete(r.rooms[sessionID], socketID)
		if len(r.rooms[sessionID]) == 0 {
			delete(r.rooms, sessionID)
		}
	}
}

// RoomLen returns the number of members currently joined to sessionID.
func (r *Registry) RoomLen(sessionID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[sessionID])
}
