package types

import "time"

// User represents an account in the system.
// It contains identity, account state, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID string `json:"id" db:"id"`

	// Email is the user's unique email address, used as the login name.
	Email string `json:"email" db:"email"`

	// FullName is the user's display name.
	FullName string `json:"full_name" db:"full_name"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"hashed_password"`

	// IsActive indicates whether the account may authenticate at all.
	// Inactive accounts are rejected at login and at the access gate.
	IsActive bool `json:"is_active" db:"is_active"`

	// IsVerified indicates whether the user has confirmed their email
	// address with a verification code.
	IsVerified bool `json:"is_verified" db:"is_verified"`

	// IsAdmin grants access to the admin endpoints. Admin accounts
	// cannot be blocked.
	IsAdmin bool `json:"is_admin" db:"is_admin"`

	// IsBlocked indicates the account was blocked by an admin. Blocking
	// also revokes every outstanding token for the user.
	IsBlocked bool `json:"is_blocked" db:"is_blocked"`

	// BlockedReason is the reason recorded when the user was blocked.
	BlockedReason *string `json:"blocked_reason,omitempty" db:"blocked_reason"`

	// BlockedAt is the timestamp of the block, nil while unblocked.
	BlockedAt *time.Time `json:"blocked_at,omitempty" db:"blocked_at"`

	// VerificationCode is the pending email verification code, nil once
	// the account is verified. Never exposed in API responses.
	VerificationCode *string `json:"-" db:"verification_code"`

	// VerificationCodeExpires bounds the verification code's validity.
	VerificationCodeExpires *time.Time `json:"-" db:"verification_code_expires"`

	// ResetPasswordToken is the pending password reset token, nil when
	// no reset is in flight. Never exposed in API responses.
	ResetPasswordToken *string `json:"-" db:"reset_password_token"`

	// ResetPasswordExpires bounds the reset token's validity.
	ResetPasswordExpires *time.Time `json:"-" db:"reset_password_expires"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
