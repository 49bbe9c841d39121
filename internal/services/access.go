package services

import (
	"context"
	"errors"
	"time"

	"github.com/modelhub-api/apiserver/internal/store"
	"github.com/modelhub-api/apiserver/internal/token"
	"github.com/modelhub-api/apiserver/types"
)

// RevocationRepository defines the revocation list operations. Both the
// Postgres and Redis backends satisfy it.
type RevocationRepository interface {
	Insert(ctx context.Context, userID string, expiresAt time.Time) error
	Exists(ctx context.Context, userID string, now time.Time) (bool, error)
	DeleteAllForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// AccessService is the gate every authenticated request passes through:
// token validation, revocation lookup and account state checks.
type AccessService struct {
	tokens     *token.Manager
	revocation RevocationRepository
	users      UserRepository
}

func NewAccessService(tokens *token.Manager, revocation RevocationRepository, users UserRepository) *AccessService {
	return &AccessService{tokens: tokens, revocation: revocation, users: users}
}

// ValidateToken checks the token signature and expiry, then the
// revocation list. Returns the token subject (user ID) on success.
// Check order is fixed: signature, expiry, revocation.
func (s *AccessService) ValidateToken(ctx context.Context, raw string) (string, error) {
	subject, err := s.tokens.Parse(raw)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}

	revoked, err := s.revocation.Exists(ctx, subject, time.Now().UTC())
	if err != nil {
		return "", err
	}
	if revoked {
		return "", ErrTokenRevoked
	}

	return subject, nil
}

// ResolveIdentity validates the token and loads the account behind it,
// rejecting missing, inactive and blocked accounts.
func (s *AccessService) ResolveIdentity(ctx context.Context, raw string) (types.User, error) {
	subject, err := s.ValidateToken(ctx, raw)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.users.GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUserNotFound
		}
		return types.User{}, err
	}

	if !user.IsActive {
		return types.User{}, ErrUserInactive
	}
	if user.IsBlocked {
		return types.User{}, ErrUserBlocked
	}

	return user, nil
}

// RequireAdmin rejects non-admin identities.
func (s *AccessService) RequireAdmin(user types.User) error {
	if !user.IsAdmin {
		return ErrInsufficientPrivilege
	}
	return nil
}
