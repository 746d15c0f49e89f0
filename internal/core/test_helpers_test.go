package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

var errStoreDown = errors.New("store down")

// fakeStore is an in-memory CredentialStore keyed by login.
type fakeStore struct {
	mu        sync.Mutex
	passwords map[string]string // login -> password
	nicknames map[string]string // login -> nickname
	failAuth  bool
	failRenm  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		passwords: make(map[string]string),
		nicknames: make(map[string]string),
	}
}

func (f *fakeStore) add(login, password, nickname string) *fakeStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwords[login] = password
	f.nicknames[login] = nickname
	return f
}

func (f *fakeStore) ResolveNickname(_ context.Context, login, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAuth {
		return "", errStoreDown
	}
	if pw, ok := f.passwords[login]; !ok || pw != password {
		return "", nil
	}
	return f.nicknames[login], nil
}

func (f *fakeStore) RenameUser(_ context.Context, oldNickname, newNickname string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRenm {
		return errStoreDown
	}
	owner := ""
	for login, nick := range f.nicknames {
		if nick == newNickname {
			return errors.New("nickname taken")
		}
		if nick == oldNickname {
			owner = login
		}
	}
	if owner == "" {
		return errors.New("user not found")
	}
	f.nicknames[owner] = newNickname
	return nil
}

// newTestHub returns a hub that is driven synchronously through handle.
func newTestHub(t *testing.T, store CredentialStore) *Hub {
	t.Helper()
	return NewHub(store, Options{SendQueueSize: 32})
}

func connect(h *Hub, remote string) *Session {
	s := h.NewSession(remote)
	h.handle(context.Background(), Event{Kind: EventConnected, Session: s})
	return s
}

func send(h *Hub, s *Session, line string) {
	h.handle(context.Background(), Event{Kind: EventLineReceived, Session: s, Line: line})
}

func hangup(h *Hub, s *Session) {
	h.handle(context.Background(), Event{Kind: EventDisconnected, Session: s})
}

// drain returns every line currently queued for s without blocking.
func drain(s *Session) []string {
	var lines []string
	for {
		select {
		case line, ok := <-s.Outbound():
			if !ok {
				return lines
			}
			lines = append(lines, line)
		default:
			return lines
		}
	}
}

// login connects a session and authenticates it, discarding its queued lines.
func login(h *Hub, remote, user, password string) *Session {
	s := connect(h, remote)
	send(h, s, "AUTH_REQUEST|"+user+"|"+password)
	drain(s)
	return s
}

// mustLine waits for the next line on s, failing the test on timeout or close.
func mustLine(t *testing.T, s *Session) string {
	t.Helper()

	select {
	case line, ok := <-s.Outbound():
		if !ok {
			t.Fatalf("session %s closed while waiting for a line", s.ID)
		}
		return line
	case <-time.After(2 * time.Second):
		t.Fatalf("no line received on session %s", s.ID)
	}
	return ""
}

// mustClose waits for the outbound queue of s to be closed, skipping queued lines.
func mustClose(t *testing.T, s *Session) []string {
	t.Helper()

	var lines []string
	deadline := time.After(2 * time.Second)
	for {
		select {
		case line, ok := <-s.Outbound():
			if !ok {
				return lines
			}
			lines = append(lines, line)
		case <-deadline:
			t.Fatalf("session %s was not closed", s.ID)
			return nil
		}
	}
}
