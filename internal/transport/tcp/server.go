package tcp

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat-server/internal/transport"
)

// Server accepts raw TCP clients and hands each one to the bridge.
type Server struct {
	addr    string
	bridge  *transport.Bridge
	maxLine int
	log     zerolog.Logger

	mu       sync.Mutex
	listener net.Listener
	ready    chan struct{}
	wg       sync.WaitGroup
}

// NewServer builds a TCP line server listening on addr.
func NewServer(addr string, bridge *transport.Bridge, maxLine int, logger *zerolog.Logger) *Server {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "tcp").Logger()
	}
	return &Server{
		addr:    addr,
		bridge:  bridge,
		maxLine: maxLine,
		log:     l,
		ready:   make(chan struct{}),
	}
}

// ListenAndServe accepts connections until ctx is cancelled, then waits for
// every connection handler to return.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	close(s.ready)

	s.log.Info().Str("addr", ln.Addr().String()).Msg("tcp server listening")

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	err := s.acceptLoop(ctx, ln)
	s.wg.Wait()
	s.log.Info().Msg("tcp server stopped")
	return err
}

// Addr returns the bound address once the server is listening.
func (s *Server) Addr() net.Addr {
	<-s.ready
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener.Addr()
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warn().Err(err).Msg("accept error")
			continue
		}

		if tcpConn, ok := conn.(*net.TCPConn); ok {
			_ = tcpConn.SetNoDelay(true)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			_ = s.bridge.Serve(ctx, newLineConn(conn, s.maxLine))
		}()
	}
}
