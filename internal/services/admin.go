package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/modelhub-api/apiserver/internal/store"
	"github.com/modelhub-api/apiserver/types"
)

// AdminUserInput carries the fields an admin may set on an account.
// Password is optional on update; blank keeps the current hash.
type AdminUserInput struct {
	Email      string
	FullName   string
	Password   string
	IsActive   bool
	IsVerified bool
	IsAdmin    bool
}

// AdminService encapsulates admin user management, including the
// block/unblock workflow.
type AdminService struct {
	users              UserRepository
	revocation         RevocationRepository
	blockRevocationTTL time.Duration
}

func NewAdminService(users UserRepository, revocation RevocationRepository, blockRevocationTTL time.Duration) *AdminService {
	return &AdminService{
		users:              users,
		revocation:         revocation,
		blockRevocationTTL: blockRevocationTTL,
	}
}

// CreateUser registers an account with admin-chosen flags. No
// verification email is sent.
func (s *AdminService) CreateUser(ctx context.Context, input AdminUserInput) (types.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return types.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	return s.users.Create(ctx, types.User{
		Email:        email,
		FullName:     strings.TrimSpace(input.FullName),
		PasswordHash: string(hash),
		IsActive:     input.IsActive,
		IsVerified:   input.IsVerified,
		IsAdmin:      input.IsAdmin,
	})
}

// ListUsers returns a page of accounts, optionally filtered by a
// case-insensitive search over email and full name.
func (s *AdminService) ListUsers(ctx context.Context, offset, limit int, search string) ([]types.User, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 100
	}
	if limit > 100 {
		limit = 100
	}
	return s.users.List(ctx, offset, limit, search)
}

func (s *AdminService) GetUser(ctx context.Context, id string) (types.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUserNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

// UpdateUser overwrites the account's profile and flags. Block state is
// not touched here; that goes through Block/Unblock.
func (s *AdminService) UpdateUser(ctx context.Context, id string, input AdminUserInput) (types.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return types.User{}, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email != "" && email != user.Email {
		if other, err := s.users.GetByEmail(ctx, email); err == nil && other.ID != user.ID {
			return types.User{}, ErrEmailTaken
		} else if err != nil && !errors.Is(err, store.ErrNotFound) {
			return types.User{}, err
		}
		user.Email = email
	}

	if name := strings.TrimSpace(input.FullName); name != "" {
		user.FullName = name
	}
	user.IsActive = input.IsActive
	user.IsVerified = input.IsVerified
	user.IsAdmin = input.IsAdmin

	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return types.User{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	return s.users.Update(ctx, user)
}

func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// Block marks the account as blocked and revokes its outstanding tokens
// for the block retention window. Admin accounts cannot be blocked.
func (s *AdminService) Block(ctx context.Context, id, reason string) (types.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return types.User{}, err
	}

	if user.IsBlocked {
		return types.User{}, ErrAlreadyBlocked
	}
	if user.IsAdmin {
		return types.User{}, ErrCannotBlockAdmin
	}

	now := time.Now().UTC()
	user.IsBlocked = true
	user.BlockedReason = &reason
	user.BlockedAt = &now

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return types.User{}, err
	}

	if err := s.revocation.Insert(ctx, user.ID, now.Add(s.blockRevocationTTL)); err != nil {
		return types.User{}, err
	}
	return updated, nil
}

// Unblock clears the block state and removes the user's revocation
// entries so new logins work immediately.
func (s *AdminService) Unblock(ctx context.Context, id string) (types.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return types.User{}, err
	}

	if !user.IsBlocked {
		return types.User{}, ErrNotBlocked
	}

	user.IsBlocked = false
	user.BlockedReason = nil
	user.BlockedAt = nil

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return types.User{}, err
	}

	if err := s.revocation.DeleteAllForUser(ctx, user.ID); err != nil {
		return types.User{}, err
	}
	return updated, nil
}
