package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/modelhub-api/apiserver/internal/store"
	"github.com/modelhub-api/apiserver/internal/token"
	"github.com/modelhub-api/apiserver/types"
)

const (
	verificationCodeLength = 6
	verificationCodeTTL    = 24 * time.Hour
	resetTokenBytes        = 32
	resetTokenTTL          = 24 * time.Hour
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByVerificationCode(ctx context.Context, code string) (types.User, error)
	GetByResetToken(ctx context.Context, resetToken string) (types.User, error)
	List(ctx context.Context, offset, limit int, search string) ([]types.User, int, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	Delete(ctx context.Context, id string) error
}

// Mailer dispatches outbound account emails. Satisfied by mailer.Service.
type Mailer interface {
	SendVerification(ctx context.Context, to, code string)
	SendPasswordReset(ctx context.Context, to, token string)
	SendContactResponse(ctx context.Context, to, firstName, lastName, message, response string)
}

// ProfileUpdate carries the optional profile fields a user may change.
// Empty fields are left untouched.
type ProfileUpdate struct {
	Email           string
	FullName        string
	CurrentPassword string
	NewPassword     string
}

// UserService encapsulates signup, login and account self-management.
type UserService struct {
	users               UserRepository
	revocation          RevocationRepository
	tokens              *token.Manager
	mail                Mailer
	deleteRevocationTTL time.Duration
}

func NewUserService(users UserRepository, revocation RevocationRepository, tokens *token.Manager, mail Mailer, deleteRevocationTTL time.Duration) *UserService {
	return &UserService{
		users:               users,
		revocation:          revocation,
		tokens:              tokens,
		mail:                mail,
		deleteRevocationTTL: deleteRevocationTTL,
	}
}

// Signup registers a new account and dispatches a verification email.
// The account starts active but unverified.
func (s *UserService) Signup(ctx context.Context, email, fullName, password string) (types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return types.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	code, err := generateVerificationCode()
	if err != nil {
		return types.User{}, err
	}
	codeExpires := time.Now().UTC().Add(verificationCodeTTL)

	user, err := s.users.Create(ctx, types.User{
		Email:                   email,
		FullName:                strings.TrimSpace(fullName),
		PasswordHash:            string(hash),
		IsActive:                true,
		IsVerified:              false,
		IsAdmin:                 false,
		VerificationCode:        &code,
		VerificationCodeExpires: &codeExpires,
	})
	if err != nil {
		return types.User{}, err
	}

	s.mail.SendVerification(ctx, user.Email, code)
	return user, nil
}

// Login verifies credentials and returns a signed access token. Missing
// accounts and bad passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (string, types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", types.User{}, ErrInvalidCredentials
		}
		return "", types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", types.User{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", types.User{}, ErrUserInactive
	}
	if user.IsBlocked {
		return "", types.User{}, ErrUserBlocked
	}

	accessToken, err := s.tokens.Issue(user.ID, 0)
	if err != nil {
		return "", types.User{}, fmt.Errorf("issue token: %w", err)
	}
	return accessToken, user, nil
}

// Verify marks the account behind the code as verified and clears the
// code so it cannot be replayed.
func (s *UserService) Verify(ctx context.Context, code string) error {
	user, err := s.users.GetByVerificationCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidVerification
		}
		return err
	}

	if user.VerificationCodeExpires == nil || user.VerificationCodeExpires.Before(time.Now().UTC()) {
		return ErrInvalidVerification
	}

	user.IsVerified = true
	user.VerificationCode = nil
	user.VerificationCodeExpires = nil
	_, err = s.users.Update(ctx, user)
	return err
}

// ForgotPassword stores a reset token for the account and emails it.
// Unknown emails return nil so the endpoint does not reveal whether an
// address is registered.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	resetToken, err := generateResetToken()
	if err != nil {
		return err
	}
	resetExpires := time.Now().UTC().Add(resetTokenTTL)

	user.ResetPasswordToken = &resetToken
	user.ResetPasswordExpires = &resetExpires
	if _, err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.mail.SendPasswordReset(ctx, user.Email, resetToken)
	return nil
}

// ResetPassword sets a new password for the account behind the reset
// token and clears the token.
func (s *UserService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	user, err := s.users.GetByResetToken(ctx, resetToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	if user.ResetPasswordExpires == nil || user.ResetPasswordExpires.Before(time.Now().UTC()) {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.ResetPasswordToken = nil
	user.ResetPasswordExpires = nil
	_, err = s.users.Update(ctx, user)
	return err
}

// UpdateProfile applies the provided changes to the current user.
// Changing the password requires the current password.
func (s *UserService) UpdateProfile(ctx context.Context, current types.User, update ProfileUpdate) (types.User, error) {
	update.Email = strings.ToLower(strings.TrimSpace(update.Email))
	update.FullName = strings.TrimSpace(update.FullName)

	if update.Email != "" && update.Email != current.Email {
		if other, err := s.users.GetByEmail(ctx, update.Email); err == nil && other.ID != current.ID {
			return types.User{}, ErrEmailTaken
		} else if err != nil && !errors.Is(err, store.ErrNotFound) {
			return types.User{}, err
		}
		current.Email = update.Email
	}

	if update.FullName != "" {
		current.FullName = update.FullName
	}

	if update.NewPassword != "" {
		if update.CurrentPassword == "" {
			return types.User{}, ErrWrongPassword
		}
		if err := bcrypt.CompareHashAndPassword([]byte(current.PasswordHash), []byte(update.CurrentPassword)); err != nil {
			return types.User{}, ErrWrongPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(update.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return types.User{}, fmt.Errorf("hash password: %w", err)
		}
		current.PasswordHash = string(hash)
	}

	return s.users.Update(ctx, current)
}

// DeleteAccount removes the account after confirming the password and
// revokes the user's outstanding tokens for a short retention window.
func (s *UserService) DeleteAccount(ctx context.Context, current types.User, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(current.PasswordHash), []byte(password)); err != nil {
		return ErrWrongPassword
	}

	if err := s.users.Delete(ctx, current.ID); err != nil {
		return err
	}

	return s.revocation.Insert(ctx, current.ID, time.Now().UTC().Add(s.deleteRevocationTTL))
}

func generateVerificationCode() (string, error) {
	var b strings.Builder
	for i := 0; i < verificationCodeLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generate verification code: %w", err)
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

func generateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
