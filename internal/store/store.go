package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrNicknameTaken is returned when a nickname is already owned by another user.
	ErrNicknameTaken = errors.New("nickname taken")
	// ErrLoginTaken is returned when registering an existing login.
	ErrLoginTaken = errors.New("login taken")
)

// User represents a chat account.
type User struct {
	ID           int64
	Login        string
	Nickname     string
	PasswordHash string
	CreatedAt    time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, login, nickname, passwordHash string) (*User, error)

	// GetUserByLogin retrieves a user by login.
	GetUserByLogin(ctx context.Context, login string) (*User, error)

	// UpdateNickname renames the user currently owning oldNickname.
	UpdateNickname(ctx context.Context, oldNickname, newNickname string) error
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore

	// Close closes the underlying database connection.
	Close() error
}
