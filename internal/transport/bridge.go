package transport

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat-server/internal/core"
)

const rateWindow = time.Minute

// LineConn is a connection that carries one protocol line per read or write.
type LineConn interface {
	ReadLine(ctx context.Context) (string, error)
	WriteLine(ctx context.Context, line string) error
	RemoteAddr() string
	Close() error
}

// Options tune a Bridge. Zero values disable the write timeout and the rate limit.
type Options struct {
	WriteTimeout     time.Duration
	MessageRateLimit int
}

// Bridge connects line connections to the hub: inbound lines become hub
// events and the session's outbound queue is written back to the client.
type Bridge struct {
	hub  *core.Hub
	log  zerolog.Logger
	opts Options
}

// NewBridge builds a bridge for hub. The logger may be nil.
func NewBridge(hub *core.Hub, logger *zerolog.Logger, opts Options) *Bridge {
	l := zerolog.Nop()
	if logger != nil {
		l = *logger
	}
	return &Bridge{hub: hub, log: l, opts: opts}
}

// Serve runs conn until the client goes away, the hub drops the session or
// ctx is cancelled. It always closes conn and reports the disconnect.
func (b *Bridge) Serve(ctx context.Context, conn LineConn) error {
	session := b.hub.NewSession(conn.RemoteAddr())
	logger := b.log.With().Str("session_id", session.ID).Str("remote", session.Remote).Logger()

	if err := b.hub.Connect(session); err != nil {
		_ = conn.Close()
		return err
	}
	logger.Debug().Msg("connection opened")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	limiter := newRateLimiter(b.opts.MessageRateLimit, rateWindow)
	limiter.startReset(ctx.Done())

	errCh := make(chan error, 2)
	go func() {
		errCh <- b.readLoop(ctx, conn, session, limiter, logger)
	}()
	go func() {
		errCh <- b.writeLoop(ctx, conn, session, logger)
	}()

	err := <-errCh
	if hubErr := b.hub.Disconnect(session); hubErr != nil {
		session.Close()
	}
	cancel() // stop the other goroutine
	_ = conn.Close()
	<-errCh

	if isClosedErr(err) {
		err = nil
	}
	if err != nil {
		logger.Warn().Err(err).Msg("connection closed with error")
	} else {
		logger.Debug().Msg("connection closed")
	}
	return err
}

func (b *Bridge) readLoop(ctx context.Context, conn LineConn, s *core.Session, limiter *rateLimiter, logger zerolog.Logger) error {
	for {
		line, err := conn.ReadLine(ctx)
		if err != nil {
			return err
		}
		if !limiter.allow() {
			logger.Warn().Msg("rate limit exceeded, line dropped")
			continue
		}
		if err := b.hub.Receive(s, line); err != nil {
			return err
		}
	}
}

// writeLoop drains the outbound queue in order and returns once the hub closes it.
func (b *Bridge) writeLoop(ctx context.Context, conn LineConn, s *core.Session, logger zerolog.Logger) error {
	for {
		select {
		case line, ok := <-s.Outbound():
			if !ok {
				return nil
			}
			if err := b.write(ctx, conn, line); err != nil {
				logger.Error().Err(err).Msg("write line")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (b *Bridge) write(ctx context.Context, conn LineConn, line string) error {
	if b.opts.WriteTimeout <= 0 {
		return conn.WriteLine(ctx, line)
	}
	wctx, cancel := context.WithTimeout(ctx, b.opts.WriteTimeout)
	defer cancel()
	return conn.WriteLine(wctx, line)
}

func isClosedErr(err error) bool {
	return err == nil ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, core.ErrHubStopped) ||
		errors.Is(err, ErrConnClosed)
}
