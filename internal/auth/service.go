package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vovakirdan/linechat-server/internal/proto"
	"github.com/vovakirdan/linechat-server/internal/store"
)

var (
	// ErrInvalidLogin is returned when login doesn't meet constraints.
	ErrInvalidLogin = errors.New("invalid login")
	// ErrInvalidNickname is returned when nickname doesn't meet constraints.
	ErrInvalidNickname = errors.New("invalid nickname")
	// ErrInvalidPassword is returned when password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
)

const (
	minNameLen     = 1
	maxNameLen     = 32
	minPasswordLen = 6
)

// Service resolves credentials and persists nickname changes.
type Service struct {
	store store.UserStore
}

// NewService creates a new authentication service.
func NewService(userStore store.UserStore) *Service {
	return &Service{store: userStore}
}

// Register creates a user with a hashed password.
func (s *Service) Register(ctx context.Context, login, nickname, password string) (*store.User, error) {
	login = strings.TrimSpace(login)
	nickname = strings.TrimSpace(nickname)
	if err := ValidateName(login); err != nil {
		return nil, ErrInvalidLogin
	}
	if err := ValidateName(nickname); err != nil {
		return nil, ErrInvalidNickname
	}
	if len(password) < minPasswordLen || strings.Contains(password, proto.Delimiter) {
		return nil, ErrInvalidPassword
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, login, nickname, hashedPassword)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// ResolveNickname returns the nickname owned by login when password matches.
// Unknown logins and wrong passwords yield an empty nickname and no error;
// an error means the store itself failed.
func (s *Service) ResolveNickname(ctx context.Context, login, password string) (string, error) {
	user, err := s.store.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if errPwd := ComparePassword(user.PasswordHash, password); errPwd != nil {
		return "", nil
	}
	return user.Nickname, nil
}

// RenameUser persists a nickname change.
func (s *Service) RenameUser(ctx context.Context, oldNickname, newNickname string) error {
	if err := ValidateName(newNickname); err != nil {
		return err
	}
	if err := s.store.UpdateNickname(ctx, oldNickname, newNickname); err != nil {
		return fmt.Errorf("rename %q: %w", oldNickname, err)
	}
	return nil
}

// ValidateName checks a login or nickname fits on the wire.
func ValidateName(name string) error {
	if len(name) < minNameLen || len(name) > maxNameLen {
		return ErrInvalidNickname
	}
	if strings.ContainsAny(name, proto.Delimiter+" \t\r\n") {
		return ErrInvalidNickname
	}
	if strings.EqualFold(name, proto.SystemNickname) {
		return ErrInvalidNickname
	}
	return nil
}
