// Package accounts handles sign-in. An unknown username signs up on first
// sight; a known one must present the stored password.
package accounts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/contre95/songvault/src/music"
)

// Service is the domain service for the accounts feature.
type Service struct {
	store music.Store
}

// NewService creates a new accounts service.
func NewService(store music.Store) *Service {
	return &Service{store: store}
}

// Login validates or creates the account. Passwords are stored and compared
// as plain text, an inherited limitation of the store format.
func (s *Service) Login(ctx context.Context, username, password, role string) (*music.Account, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" {
		return nil, fmt.Errorf("username cannot be empty")
	}
	if password == "" {
		return nil, fmt.Errorf("password cannot be empty")
	}
	parsedRole, err := music.ParseRole(role)
	if err != nil {
		return nil, err
	}

	acc, err := s.store.GetAccount(ctx, username)
	if err == nil {
		if acc.Password != password {
			slog.Debug("Login rejected", "username", username)
			return nil, fmt.Errorf("%w: %s", music.ErrWrongPassword, username)
		}
		return acc, nil
	}

	// First sight: sign up with empty catalog and collections.
	acc = music.NewAccount(username, password, parsedRole)
	if err := acc.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.PutAccount(ctx, acc); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	slog.Info("Account created", "username", username, "role", parsedRole)
	return acc, nil
}

// Get returns the stored account.
func (s *Service) Get(ctx context.Context, username string) (*music.Account, error) {
	return s.store.GetAccount(ctx, username)
}
