package session

import (
	"errors"
	"sync"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
)

// Registry maps match ids to their active sessions and enforces at most one
// session per match id. It is safe for concurrent use; mutation happens only
// at dispatch (insert) and on session close (remove).
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Get retrieves the session for a match id.
func (r *Registry) Get(matchID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[matchID]
	return s, ok
}

// Put registers a session under its match id. It fails with
// ErrSessionAlreadyExists if the id is taken, which callers use to resolve
// races between concurrent activations of the same match.
func (r *Registry) Put(matchID string, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[matchID]; exists {
		return ErrSessionAlreadyExists
	}
	r.sessions[matchID] = s
	return nil
}

// Remove deletes the entry for a match id. Removing an absent id is a no-op.
func (r *Registry) Remove(matchID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, matchID)
}

// All returns the currently registered sessions.
func (r *Registry) All() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		result = append(result, s)
	}
	return result
}

// Count returns the number of registered sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
