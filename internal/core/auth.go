package core

import (
	"context"

	"github.com/vovakirdan/linechat-server/internal/proto"
)

// authenticate handles a line from a session that has not logged in yet.
func (h *Hub) authenticate(ctx context.Context, s *Session, line string) {
	in := proto.Decode(line)
	req, ok := proto.ParseAuthRequest(in)
	if !ok {
		h.formatError(s, in)
		return
	}

	nickname, err := h.store.ResolveNickname(ctx, req.Login, req.Password)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", s.ID).Str("login", req.Login).Msg("credential lookup failed")
		h.metrics.RecordAuthRejected("store")
		h.reject(s)
		return
	}
	if nickname == "" {
		h.log.Warn().Str("session_id", s.ID).Str("login", req.Login).Str("remote", s.Remote).Msg("invalid credentials attempt")
		h.metrics.RecordAuthRejected("credentials")
		h.reject(s)
		return
	}

	// The stale holder must be gone before anyone hears about the new one.
	superseded := h.supersede(s, nickname)

	s.Authorize(nickname)
	h.metrics.RecordAuthAccepted()
	s.Deliver(proto.AuthAccept(nickname))
	h.log.Info().Str("session_id", s.ID).Str("nickname", nickname).Bool("reconnect", superseded).Msg("session authorized")

	if !superseded {
		h.broadcastSystemNotice(nickname, "connected")
	}
	h.broadcastUserList()
}

// reject denies a login and drops the session; the client reconnects to retry.
func (h *Hub) reject(s *Session) {
	s.Deliver(proto.AuthDenied())
	h.registry.Remove(s)
	s.Close()
	h.recordSessions()
}

// supersede force-closes the authorized session already holding nickname, if any.
// The newest login always wins. It reports whether a session was replaced.
func (h *Hub) supersede(s *Session, nickname string) bool {
	old := h.registry.FindByNickname(nickname)
	if old == nil || old == s {
		return false
	}

	old.MarkReconnecting()
	old.Deliver(proto.Reconnect())
	h.registry.Remove(old)
	old.Close()

	h.metrics.RecordReconnect()
	h.log.Info().
		Str("nickname", nickname).
		Str("old_session_id", old.ID).
		Str("session_id", s.ID).
		Msg("session superseded by newer login")
	return true
}

// formatError echoes the offending line back to the client. Lines that may carry
// credentials are logged as tag and field count only.
func (h *Hub) formatError(s *Session, in proto.Inbound) {
	h.metrics.RecordFormatError()
	event := h.log.Debug().Str("session_id", s.ID)
	if !s.Authorized() || in.Type == proto.TypeAuthRequest {
		event = event.Str("type", in.Type).Int("fields", len(in.Args)+1)
	} else {
		event = event.Str("line", in.Raw)
	}
	event.Msg("malformed line")

	if !s.Deliver(proto.MsgFormatError(in.Raw)) {
		h.log.Warn().Str("session_id", s.ID).Msg("failed to deliver format error")
	}
}
