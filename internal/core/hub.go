package core

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat-server/internal/metrics"
	"github.com/vovakirdan/linechat-server/internal/utils"
)

const defaultEventBuffer = 256

// CredentialStore resolves logins and persists nickname changes.
type CredentialStore interface {
	// ResolveNickname returns the nickname for valid credentials and "" otherwise.
	// A non-nil error means the lookup itself failed.
	ResolveNickname(ctx context.Context, login, password string) (string, error)

	// RenameUser persists oldNickname -> newNickname.
	RenameUser(ctx context.Context, oldNickname, newNickname string) error
}

// Options tune a Hub. Zero values are fine.
type Options struct {
	Logger        *zerolog.Logger
	Metrics       *metrics.Metrics
	SendQueueSize int
	EventBuffer   int
}

// Hub owns the registry and serializes every membership change and the
// broadcasts that depend on it. Only the Run goroutine mutates state.
type Hub struct {
	registry  *Registry
	store     CredentialStore
	events    chan Event
	done      chan struct{}
	// stopping is closed when shutdown begins; mu makes it a barrier for submit.
	stopping  chan struct{}
	mu        sync.RWMutex
	log       zerolog.Logger
	metrics   *metrics.Metrics
	queueSize int
}

// NewHub creates a hub backed by the given credential store.
func NewHub(store CredentialStore, opts Options) *Hub {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("component", "hub").Logger()
	}
	buffer := opts.EventBuffer
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	queue := opts.SendQueueSize
	if queue <= 0 {
		queue = 64
	}

	return &Hub{
		registry:  NewRegistry(),
		store:     store,
		events:    make(chan Event, buffer),
		done:      make(chan struct{}),
		stopping:  make(chan struct{}),
		log:       logger,
		metrics:   opts.Metrics,
		queueSize: queue,
	}
}

// NewSession builds a session for a freshly accepted connection.
func (h *Hub) NewSession(remote string) *Session {
	return NewSession(utils.NewID(), remote, h.queueSize)
}

// Run processes events until ctx is cancelled, then closes every session.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	h.log.Info().Msg("hub started")
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case ev := <-h.events:
			h.handle(ctx, ev)
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Connect registers s with the hub.
func (h *Hub) Connect(s *Session) error {
	return h.submit(Event{Kind: EventConnected, Session: s})
}

// Receive hands one inbound line to the hub.
func (h *Hub) Receive(s *Session, line string) error {
	return h.submit(Event{Kind: EventLineReceived, Session: s, Line: line})
}

// Disconnect reports that the transport for s has gone away.
func (h *Hub) Disconnect(s *Session) error {
	return h.submit(Event{Kind: EventDisconnected, Session: s})
}

// Roster returns the current nicknames in registry order.
func (h *Hub) Roster() []string {
	return h.registry.ListAuthorizedNicknames()
}

func (h *Hub) submit(ev Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	select {
	case <-h.stopping:
		return ErrHubStopped
	default:
	}
	select {
	case h.events <- ev:
		return nil
	case <-h.stopping:
		return ErrHubStopped
	}
}

func (h *Hub) handle(ctx context.Context, ev Event) {
	s := ev.Session
	if s == nil {
		return
	}

	switch ev.Kind {
	case EventConnected:
		h.registry.Add(s)
		h.recordSessions()
		h.log.Debug().Str("session_id", s.ID).Str("remote", s.Remote).Msg("session connected")
	case EventLineReceived:
		// Lines queued before a supersession or rejection are ignored.
		if s.Closed() {
			return
		}
		if s.Authorized() {
			h.dispatch(ctx, s, ev.Line)
		} else {
			h.authenticate(ctx, s, ev.Line)
		}
	case EventDisconnected:
		h.disconnect(s)
	}
}

func (h *Hub) disconnect(s *Session) {
	removed := h.registry.Remove(s)
	s.Close()
	if !removed {
		return
	}
	h.recordSessions()
	h.log.Debug().Str("session_id", s.ID).Str("nickname", s.Nickname()).Msg("session disconnected")

	if !s.Authorized() {
		return
	}
	if !s.Reconnecting() {
		h.broadcastSystemNotice(s.Nickname(), "disconnected")
	}
	h.broadcastUserList()
}

func (h *Hub) shutdown() {
	close(h.stopping)
	// Wait out in-flight submits; afterwards nothing new reaches h.events.
	h.mu.Lock()
	h.mu.Unlock()

	sessions := h.registry.Drain()
	for _, s := range sessions {
		s.Close()
	}

	// Connections accepted but not yet registered still need their queues closed.
	for {
		select {
		case ev := <-h.events:
			if ev.Session != nil {
				ev.Session.Close()
			}
		default:
			h.recordSessions()
			h.log.Info().Int("sessions", len(sessions)).Msg("hub stopped")
			return
		}
	}
}

func (h *Hub) recordSessions() {
	total, authorized := h.registry.Counts()
	h.metrics.RecordSessions(total, authorized)
}
