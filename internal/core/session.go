package core

import "sync"

// Session is one client connection as seen by the core layer.
// The transport drains Outbound and closes the connection once it is closed.
type Session struct {
	ID     string
	Remote string

	mu           sync.RWMutex
	authorized   bool
	nickname     string
	reconnecting bool
	closed       bool
	outbound     chan string
}

// NewSession constructs an unauthorized session with a bounded outbound queue.
func NewSession(id, remote string, queueSize int) *Session {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Session{
		ID:       id,
		Remote:   remote,
		outbound: make(chan string, queueSize),
	}
}

// Outbound yields lines queued for the client; it is closed when the core drops the session.
func (s *Session) Outbound() <-chan string {
	return s.outbound
}

func (s *Session) Authorized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authorized
}

func (s *Session) Nickname() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nickname
}

// Authorize marks the session authorized under nickname. It may happen only once.
func (s *Session) Authorize(nickname string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.authorized {
		panic(ErrAlreadyAuthorized)
	}
	if nickname == "" {
		panic(ErrEmptyNickname)
	}
	s.authorized = true
	s.nickname = nickname
}

// SetNickname renames an authorized session. Calling it before authorization panics.
func (s *Session) SetNickname(nickname string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authorized {
		panic(ErrNotAuthorized)
	}
	if nickname == "" {
		panic(ErrEmptyNickname)
	}
	s.nickname = nickname
}

// MarkReconnecting flags a session that is being superseded by a newer login.
func (s *Session) MarkReconnecting() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnecting = true
}

func (s *Session) Reconnecting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reconnecting
}

// Deliver enqueues a line without blocking. It reports false when the queue
// is full or the session is already closed.
func (s *Session) Deliver(line string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.outbound <- line:
		return true
	default:
		return false
	}
}

// Close closes the outbound queue. Lines already queued stay readable.
// It reports whether this call did the closing.
func (s *Session) Close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	close(s.outbound)
	return true
}

func (s *Session) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
