package tcp

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/vovakirdan/linechat-server/internal/transport"
)

// lineConn frames a net.Conn as newline-terminated lines.
type lineConn struct {
	conn    net.Conn
	reader  *bufio.Reader
	maxLine int

	writeMu sync.Mutex
}

func newLineConn(conn net.Conn, maxLine int) *lineConn {
	return &lineConn{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		maxLine: maxLine,
	}
}

// ReadLine blocks until a full line arrives; Close unblocks it.
func (c *lineConn) ReadLine(_ context.Context) (string, error) {
	var sb strings.Builder
	for {
		chunk, isPrefix, err := c.reader.ReadLine()
		if err != nil {
			return "", mapErr(err)
		}
		sb.Write(chunk)
		if c.maxLine > 0 && sb.Len() > c.maxLine {
			return "", transport.ErrLineTooLong
		}
		if !isPrefix {
			return strings.TrimRight(sb.String(), "\r"), nil
		}
	}
}

func (c *lineConn) WriteLine(ctx context.Context, line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline := time.Time{}
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return mapErr(err)
	}
	_, err := c.conn.Write([]byte(line + "\n"))
	return mapErr(err)
}

func (c *lineConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

func (c *lineConn) Close() error {
	return mapErr(c.conn.Close())
}

func mapErr(err error) error {
	if errors.Is(err, net.ErrClosed) {
		return transport.ErrConnClosed
	}
	return err
}
