package services

import "errors"

// Access and token lifecycle errors. Handlers map these to HTTP status
// codes; everything else surfaces as an internal error.
var (
	ErrInvalidToken          = errors.New("invalid token")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenRevoked          = errors.New("token revoked")
	ErrUserNotFound          = errors.New("user not found")
	ErrUserInactive          = errors.New("user account is inactive")
	ErrUserBlocked           = errors.New("user account is blocked")
	ErrInsufficientPrivilege = errors.New("insufficient privilege")
)

// Block/unblock workflow errors.
var (
	ErrAlreadyBlocked   = errors.New("user is already blocked")
	ErrNotBlocked       = errors.New("user is not blocked")
	ErrCannotBlockAdmin = errors.New("cannot block an admin account")
)

// Account and credential errors.
var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidVerification = errors.New("invalid or expired verification code")
	ErrInvalidResetToken   = errors.New("invalid or expired reset token")
	ErrWrongPassword       = errors.New("password is incorrect")
)

// Repository feature errors.
var (
	ErrModelLimitReached = errors.New("model limit reached")
	ErrAccessDenied      = errors.New("access denied")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrUnsupportedFile   = errors.New("unsupported file type")
)
