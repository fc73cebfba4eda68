// Package accounts registers users and logs them in with access tokens.
package accounts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geocoder89/quizvote/internal/domain/user"
	"github.com/geocoder89/quizvote/internal/security"
	"github.com/geocoder89/quizvote/internal/validation"
)

type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	ListByName(ctx context.Context, name string) ([]user.User, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID string) (string, error)
}

type Service struct {
	users  UserStore
	tokens TokenIssuer
	log    *slog.Logger
}

func NewService(users UserStore, tokens TokenIssuer, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{users: users, tokens: tokens, log: log}
}

// Register creates a user. Names are not unique.
func (s *Service) Register(ctx context.Context, creds user.Credentials) (user.User, error) {
	if err := validation.Struct(creds); err != nil {
		return user.User{}, err
	}
	if len(creds.Password) > security.MaxPasswordBytes {
		return user.User{}, validation.Field("password", "max", fmt.Sprintf("%d bytes", security.MaxPasswordBytes))
	}

	hash, err := security.HashPassword(creds.Password)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, user.New(creds.Name, hash))
	if err != nil {
		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	s.log.InfoContext(ctx, "user_registered", "user_id", u.ID)
	return u, nil
}

// Login returns a token for the earliest-created user matching both name and password.
// found is false, with a nil error, when nobody matches.
func (s *Service) Login(ctx context.Context, creds user.Credentials) (token string, found bool, err error) {
	if err = validation.Struct(creds); err != nil {
		return "", false, err
	}

	candidates, err := s.users.ListByName(ctx, creds.Name)
	if err != nil {
		return "", false, fmt.Errorf("find user: %w", err)
	}

	for _, u := range candidates {
		ok, cmpErr := security.PasswordMatches(u.PasswordHash, creds.Password)
		if cmpErr != nil {
			s.log.WarnContext(ctx, "password_hash_unreadable", "user_id", u.ID, "err", cmpErr)
			continue
		}
		if !ok {
			continue
		}

		token, err = s.tokens.GenerateAccessToken(u.ID)
		if err != nil {
			return "", false, fmt.Errorf("issue token: %w", err)
		}
		return token, true, nil
	}

	return "", false, nil
}
