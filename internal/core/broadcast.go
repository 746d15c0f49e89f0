package core

import "github.com/vovakirdan/linechat-server/internal/proto"

// fanOut enqueues line to every authorized session. A recipient that cannot
// take the line is logged and skipped; it is not disconnected here.
func (h *Hub) fanOut(kind, line string) {
	recipients := h.registry.Authorized()

	delivered, dropped := 0, 0
	for _, s := range recipients {
		if s.Deliver(line) {
			delivered++
			continue
		}
		dropped++
		h.log.Warn().
			Str("session_id", s.ID).
			Str("nickname", s.Nickname()).
			Str("kind", kind).
			Msg("delivery failed")
	}
	h.metrics.RecordBroadcast(kind, delivered, dropped)
}

func (h *Hub) broadcastText(from, body string) {
	h.fanOut("text", proto.Broadcast(from, body))
}

// broadcastSystemNotice announces an event about subject on behalf of the server.
func (h *Hub) broadcastSystemNotice(subject, text string) {
	h.fanOut("notice", proto.Broadcast(proto.SystemNickname, subject+" "+text))
}

func (h *Hub) broadcastRename(oldNickname, newNickname string) {
	h.fanOut("rename", proto.UserRenamed(oldNickname, newNickname))
}

// broadcastUserList publishes the roster; call it after every membership change.
func (h *Hub) broadcastUserList() {
	h.fanOut("roster", proto.UserList(h.registry.ListAuthorizedNicknames()))
	h.recordSessions()
}
