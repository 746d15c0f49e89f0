package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat-server/internal/transport"
)

// WSHandler upgrades HTTP connections and hands them to the line bridge.
// Each text message carries exactly one protocol line.
type WSHandler struct {
	bridge  *transport.Bridge
	maxLine int
	log     *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(bridge *transport.Bridge, maxLine int, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{bridge: bridge, maxLine: maxLine, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	if h.maxLine > 0 {
		conn.SetReadLimit(int64(h.maxLine))
	}

	_ = h.bridge.Serve(r.Context(), &wsConn{conn: conn, remote: r.RemoteAddr})
}

// wsConn adapts a WebSocket connection to transport.LineConn.
type wsConn struct {
	conn   *websocket.Conn
	remote string
}

func (c *wsConn) ReadLine(ctx context.Context) (string, error) {
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		return "", mapCloseErr(err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func (c *wsConn) WriteLine(ctx context.Context, line string) error {
	return mapCloseErr(c.conn.Write(ctx, websocket.MessageText, []byte(line)))
}

func (c *wsConn) RemoteAddr() string {
	return c.remote
}

func (c *wsConn) Close() error {
	return mapCloseErr(c.conn.Close(websocket.StatusNormalClosure, "closing"))
}

func mapCloseErr(err error) error {
	if err == nil {
		return nil
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return transport.ErrConnClosed
	}
	if errors.Is(err, stdhttp.ErrServerClosed) || errors.Is(err, context.Canceled) {
		return transport.ErrConnClosed
	}
	return err
}
