package room

import (
	"sync"
)

// Member is a live connection that can be addressed by the registry. Implemented
// by session.Session.
type Member interface {
	ID() string
	Write(msg []byte) error
	Close() error
}

// Registry maps a design id to the set of members currently viewing or
// editing it. Rooms are derived state: a room exists exactly as long as it
// has at least one member, and an empty set is simply absent from the map.
// Nothing here touches persistence.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[Member]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]map[Member]struct{}),
	}
}

// Join adds the member to the design's room. No-op if already a member; no
// capacity limit.
func (r *Registry) Join(designID string, m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[designID]
	if !ok {
		members = make(map[Member]struct{})
		r.rooms[designID] = members
	}
	members[m] = struct{}{}
}

// Leave removes the member; when the set empties, the room key is dropped.
func (r *Registry) Leave(designID string, m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[designID]
	if !ok {
		return
	}
	delete(members, m)
	if len(members) == 0 {
		delete(r.rooms, designID)
	}
}

// ActiveCount returns the size of the room's member set, 0 if the room does
// not exist.
func (r *Registry) ActiveCount(designID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[designID])
}

// Members returns a snapshot of the room's member set. Inspection and
// fan-out only; mutation broadcast is always room-wide.
func (r *Registry) Members(designID string) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]Member, 0, len(r.rooms[designID]))
	for m := range r.rooms[designID] {
		members = append(members, m)
	}
	return members
}

// RoomCount returns how many rooms currently have members.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
