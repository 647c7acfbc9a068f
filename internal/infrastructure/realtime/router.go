package realtime

import (
	"sync"
)

// Subscriber is the router-facing side of a session: an identifier plus a
// best-effort payload sink. Websocket connections implement it; tests can
// register fakes.
type Subscriber interface {
	ID() string
	Send(payload []byte) error
}

// Router coordinates sessions and logical rooms. A room is keyed by the
// normalized customer/farmer pair and exists only while it has members; a
// session may belong to many rooms at once (a farmer chatting with several
// buyers) and an identity may hold many sessions (multiple tabs or devices).
type Router struct {
	mu        sync.RWMutex
	sessions  map[string]Subscriber          // sessionID -> subscriber
	rooms     map[string]map[string]struct{} // roomKey -> set of sessionIDs
	sessRooms map[string]map[string]struct{} // sessionID -> set of roomKeys
}

// NewRouter constructs an initialized Router. One instance is built per
// server process and handed to the session protocol; there is no package
// level registry.
func NewRouter() *Router {
	return &Router{
		sessions:  make(map[string]Subscriber),
		rooms:     make(map[string]map[string]struct{}),
		sessRooms: make(map[string]map[string]struct{}),
	}
}

// Attach registers a session with the router.
func (r *Router) Attach(sub Subscriber) {
	r.mu.Lock()
	r.sessions[sub.ID()] = sub
	if r.sessRooms[sub.ID()] == nil {
		r.sessRooms[sub.ID()] = make(map[string]struct{})
	}
	r.mu.Unlock()
}

// Detach removes the session from every room it joined and forgets it.
// Detaching an unknown session is a no-op.
func (r *Router) Detach(sub Subscriber) {
	r.mu.Lock()
	for roomKey := range r.sessRooms[sub.ID()] {
		r.leaveLocked(roomKey, sub.ID())
	}
	delete(r.sessRooms, sub.ID())
	delete(r.sessions, sub.ID())
	r.mu.Unlock()
}

// Join adds the session to the room, creating the room on first join.
// Joining twice has the effect of once. Sessions must be attached first.
func (r *Router) Join(roomKey string, sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sub.ID()]; !ok {
		return
	}

	room := r.rooms[roomKey]
	if room == nil {
		room = make(map[string]struct{})
		r.rooms[roomKey] = room
	}
	room[sub.ID()] = struct{}{}

	memberships := r.sessRooms[sub.ID()]
	if memberships == nil {
		memberships = make(map[string]struct{})
		r.sessRooms[sub.ID()] = memberships
	}
	memberships[roomKey] = struct{}{}
}

// Leave removes the session from the room. Leaving a room the session never
// joined is a no-op.
func (r *Router) Leave(roomKey string, sub Subscriber) {
	r.mu.Lock()
	r.leaveLocked(roomKey, sub.ID())
	r.mu.Unlock()
}

// Broadcast writes payload to every member of the room, including all of the
// sender's own sessions, and returns the delivered count.
func (r *Router) Broadcast(roomKey string, payload []byte) int {
	r.mu.RLock()
	members := make([]Subscriber, 0, len(r.rooms[roomKey]))
	for sessionID := range r.rooms[roomKey] {
		if sub := r.sessions[sessionID]; sub != nil {
			members = append(members, sub)
		}
	}
	r.mu.RUnlock()

	delivered := 0
	for _, sub := range members {
		if err := sub.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// RoomSize reports the current member count of a room.
func (r *Router) RoomSize(roomKey string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomKey])
}

func (r *Router) leaveLocked(roomKey string, sessionID string) {
	room := r.rooms[roomKey]
	if room == nil {
		return
	}
	delete(room, sessionID)
	if len(room) == 0 {
		delete(r.rooms, roomKey)
	}
	if memberships, ok := r.sessRooms[sessionID]; ok {
		delete(memberships, roomKey)
	}
}
