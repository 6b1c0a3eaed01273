package session

import "sync"

// Registry owns every live session. It replaces ambient room globals with an
// explicit object passed to the orchestrator and handlers.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Session)}
}

// Add registers a session under its ID.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[s.ID()] = s
}

// Get looks up a session by room ID.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rooms[id]
	return s, ok
}

// List returns the current sessions in unspecified order.
func (r *Registry) List() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.rooms))
	for _, s := range r.rooms {
		out = append(out, s)
	}
	return out
}

// FindByAddress returns the session in which address occupies a combatant
// slot, if any.
func (r *Registry) FindByAddress(address string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.rooms {
		if s.HasParticipant(address) {
			return s, true
		}
	}
	return nil, false
}

// RemoveIfEmpty deletes the session, and with it its log, when both
// combatant slots are vacant. Otherwise it is a no-op.
func (r *Registry) RemoveIfEmpty(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rooms[id]
	if !ok {
		return false
	}
	if !s.Empty() {
		return false
	}
	delete(r.rooms, id)
	return true
}
