package core

import "sync"

// Registry is the ordered set of live sessions. Every method is atomic with
// respect to the others; callers only ever see copies of the underlying slice.
type Registry struct {
	mu       sync.RWMutex
	sessions []*Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends a session.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, s)
}

// Remove deletes s by identity. Removing an absent session is a no-op that returns false.
func (r *Registry) Remove(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, cur := range r.sessions {
		if cur != s {
			continue
		}
		copy(r.sessions[i:], r.sessions[i+1:])
		r.sessions[len(r.sessions)-1] = nil
		r.sessions = r.sessions[:len(r.sessions)-1]
		return true
	}
	return false
}

// FindByNickname returns the first authorized session holding name, or nil.
func (r *Registry) FindByNickname(name string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if s.Authorized() && s.Nickname() == name {
			return s
		}
	}
	return nil
}

// ListAuthorizedNicknames snapshots the roster in insertion order.
func (r *Registry) ListAuthorizedNicknames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sessions))
	for _, s := range r.sessions {
		if s.Authorized() {
			names = append(names, s.Nickname())
		}
	}
	return names
}

// Authorized snapshots the authorized sessions in insertion order.
func (r *Registry) Authorized() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		if s.Authorized() {
			out = append(out, s)
		}
	}
	return out
}

// Contains reports whether s is currently registered.
func (r *Registry) Contains(s *Session) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, cur := range r.sessions {
		if cur == s {
			return true
		}
	}
	return false
}

// Counts returns the number of sessions and how many of them are authorized.
func (r *Registry) Counts() (total, authorized int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if s.Authorized() {
			authorized++
		}
	}
	return len(r.sessions), authorized
}

// Drain removes and returns every session.
func (r *Registry) Drain() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.sessions
	r.sessions = nil
	return out
}
