package auth

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Service implements the login / refresh / logout flows over the user
// and token repositories.
type Service struct {
	users  UserRepository
	tokens TokenRepository

	secret     string
	accessTTL  int // minutes
	refreshTTL int // minutes
}

// NewService creates an auth service.
func NewService(users UserRepository, tokens TokenRepository, secret string, accessTTLMinutes, refreshTTLMinutes int) *Service {
	if refreshTTLMinutes <= 0 {
		refreshTTLMinutes = 24 * 60
	}
	return &Service{
		users:      users,
		tokens:     tokens,
		secret:     secret,
		accessTTL:  accessTTLMinutes,
		refreshTTL: refreshTTLMinutes,
	}
}

// Register creates a new account and returns it.
func (s *Service) Register(ctx context.Context, username, displayName, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if !IsValidUsername(username) {
		return nil, ErrInvalidUsername
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username:     username,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a token pair.
//
// Bad username and bad password both fail with ErrInvalidCredentials so
// the response never confirms an account exists.
func (s *Service) Login(ctx context.Context, username, password string) (TokenPair, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return TokenPair{}, ErrInvalidCredentials
	}

	return s.issuePair(ctx, user)
}

// Refresh rotates a refresh token: the presented token is revoked and a
// fresh pair is issued. A revoked or expired token fails without side
// effects.
func (s *Service) Refresh(ctx context.Context, rawRefreshToken string) (TokenPair, error) {
	stored, err := s.tokens.GetByTokenHash(ctx, HashToken(rawRefreshToken))
	if err != nil {
		return TokenPair{}, err
	}
	if stored.Revoked {
		return TokenPair{}, ErrTokenRevoked
	}
	if time.Now().After(stored.ExpiresAt) {
		return TokenPair{}, ErrTokenExpired
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("loading token owner: %w", err)
	}

	if err := s.tokens.Revoke(ctx, stored.ID); err != nil {
		return TokenPair{}, err
	}
	return s.issuePair(ctx, user)
}

// Logout revokes the presented refresh token. Idempotent: revoking an
// already-revoked token succeeds.
func (s *Service) Logout(ctx context.Context, rawRefreshToken string) error {
	stored, err := s.tokens.GetByTokenHash(ctx, HashToken(rawRefreshToken))
	if err != nil {
		return err
	}
	if stored.Revoked {
		return nil
	}
	return s.tokens.Revoke(ctx, stored.ID)
}

// Authenticate validates an access token and returns the user ID it
// names. This is the hot path behind every API request.
func (s *Service) Authenticate(tokenString string) (userID string, err error) {
	claims, err := ParseToken(tokenString, s.secret)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *Service) issuePair(ctx context.Context, user *User) (TokenPair, error) {
	access, err := GenerateAccessToken(user, s.secret, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}

	raw, err := GenerateRefreshToken()
	if err != nil {
		return TokenPair{}, err
	}

	err = s.tokens.Create(ctx, &RefreshToken{
		UserID:    user.ID,
		TokenHash: HashToken(raw),
		ExpiresAt: time.Now().Add(time.Duration(s.refreshTTL) * time.Minute),
	})
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: raw}, nil
}
