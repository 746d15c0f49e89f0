package transport

import "errors"

var (
	// ErrConnClosed is returned by a LineConn after Close.
	ErrConnClosed = errors.New("transport: connection closed")
	// ErrLineTooLong is returned when a client line exceeds the configured limit.
	ErrLineTooLong = errors.New("transport: line too long")
)
