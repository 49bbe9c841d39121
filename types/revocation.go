package types

import "time"

// RevokedToken marks every bearer token of a user as invalid until
// ExpiresAt, regardless of the tokens' own expiry. Entries are inserted
// when a user is blocked or deletes their account, removed when the user
// is unblocked, and reclaimed in bulk by the revocation sweep once
// expired.
type RevokedToken struct {
	// ID is the unique identifier of the revocation entry.
	ID int64 `json:"id" db:"id"`

	// UserID is the user whose tokens are revoked.
	UserID string `json:"user_id" db:"user_id"`

	// ExpiresAt is when this entry stops applying. An expired entry is
	// treated as absent by the token validator.
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`

	// CreatedAt is when the entry was inserted.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
