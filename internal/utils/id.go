package utils

import "github.com/google/uuid"

// NewID returns a random session identifier, independent of any transport handle.
func NewID() string {
	return uuid.NewString()
}
