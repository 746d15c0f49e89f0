package core

import (
	"context"

	"github.com/vovakirdan/linechat-server/internal/proto"
)

// dispatch routes a line from an authorized session.
func (h *Hub) dispatch(ctx context.Context, s *Session, line string) {
	in := proto.Decode(line)

	switch in.Type {
	case proto.TypeUserBroadcast:
		if len(in.Args) == 0 {
			h.formatError(s, in)
			return
		}
		h.broadcastText(s.Nickname(), in.Rest())
	case proto.TypeUserChangeName:
		if len(in.Args) != 1 || in.Args[0] == "" {
			h.formatError(s, in)
			return
		}
		h.rename(ctx, s, in.Args[0])
	default:
		h.formatError(s, in)
	}
}

// rename persists the new nickname first; on any failure nothing changes and nothing is broadcast.
func (h *Hub) rename(ctx context.Context, s *Session, newNickname string) {
	oldNickname := s.Nickname()
	logger := h.log.With().Str("session_id", s.ID).Str("nickname", oldNickname).Str("new_nickname", newNickname).Logger()

	if newNickname == oldNickname {
		return
	}
	if holder := h.registry.FindByNickname(newNickname); holder != nil {
		logger.Warn().Msg("rename rejected: nickname held by a live session")
		h.metrics.RecordRename(false)
		return
	}
	if err := h.store.RenameUser(ctx, oldNickname, newNickname); err != nil {
		logger.Error().Err(err).Msg("rename failed")
		h.metrics.RecordRename(false)
		return
	}

	s.SetNickname(newNickname)
	h.metrics.RecordRename(true)
	logger.Info().Msg("session renamed")

	h.broadcastRename(oldNickname, newNickname)
	h.broadcastUserList()
}
