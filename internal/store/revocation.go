package store

import (
	"context"
	"database/sql"
	"time"
)

// RevocationRepository handles persistence for the token revocation list
// in Postgres.
type RevocationRepository struct {
	db *sql.DB
}

func NewRevocationRepository(db *sql.DB) *RevocationRepository {
	return &RevocationRepository{db: db}
}

func (r *RevocationRepository) Insert(ctx context.Context, userID string, expiresAt time.Time) error {
	const query = `
		INSERT INTO revoked_tokens (user_id, expires_at, created_at)
		VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, userID, expiresAt, time.Now())
	return err
}

// Exists reports whether the user has at least one revocation entry that
// has not yet expired at the given instant.
func (r *RevocationRepository) Exists(ctx context.Context, userID string, now time.Time) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM revoked_tokens
			WHERE user_id = $1 AND expires_at > $2
		)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, now).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *RevocationRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	const query = `DELETE FROM revoked_tokens WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

// DeleteExpired removes every entry whose expiry has passed and returns
// the number of rows reclaimed.
func (r *RevocationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM revoked_tokens WHERE expires_at < $1`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
