// Package auth gates the dashboard behind the shared site password and
// issues opaque bearer tokens backed by Redis.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/pharmalink/pharmalink/internal/shared"
)

const tokenPrefix = "auth:token:"

// Service validates the site password and manages session tokens.
type Service struct {
	client *redis.Client
	hash   []byte
	ttl    time.Duration
}

// NewService hashes the configured site password once at startup so the
// plaintext never lives past construction.
func NewService(client *redis.Client, sitePassword string, ttl time.Duration) (*Service, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(sitePassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Service{client: client, hash: hash, ttl: ttl}, nil
}

// Login checks the password and mints a session token on success.
func (s *Service) Login(ctx context.Context, password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(password)); err != nil {
		return "", shared.ErrInvalidCredentials
	}
	token := uuid.NewString()
	if err := s.client.Set(ctx, tokenPrefix+token, "1", s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Validate reports whether a token is live. Each successful check slides
// the expiry forward by the configured lifetime.
func (s *Service) Validate(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	ok, err := s.client.Expire(ctx, tokenPrefix+token, s.ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Logout revokes a token. Revoking an unknown token is a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.client.Del(ctx, tokenPrefix+token).Err()
}
