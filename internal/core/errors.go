package core

import "errors"

var (
	// ErrHubStopped is returned when an event is submitted after the hub exited.
	ErrHubStopped = errors.New("hub stopped")

	// Programming errors; Session panics with these.
	ErrNotAuthorized     = errors.New("session not authorized")
	ErrAlreadyAuthorized = errors.New("session already authorized")
	ErrEmptyNickname     = errors.New("empty nickname")
)
