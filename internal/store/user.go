package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/modelhub-api/apiserver/types"
)

const userColumns = `id, email, full_name, hashed_password, is_active, is_verified, is_admin,
		is_blocked, blocked_reason, blocked_at, verification_code, verification_code_expires,
		reset_password_token, reset_password_expires, created_at, updated_at`

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.IsActive,
		&user.IsVerified,
		&user.IsAdmin,
		&user.IsBlocked,
		&user.BlockedReason,
		&user.BlockedAt,
		&user.VerificationCode,
		&user.VerificationCodeExpires,
		&user.ResetPasswordToken,
		&user.ResetPasswordExpires,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) GetByVerificationCode(ctx context.Context, code string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE verification_code = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, code))
}

func (r *UserRepository) GetByResetToken(ctx context.Context, resetToken string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE reset_password_token = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, resetToken))
}

// List returns a page of users and the total count. A non-empty search
// term matches email or full name, case-insensitively.
func (r *UserRepository) List(ctx context.Context, offset, limit int, search string) ([]types.User, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 100
	}

	pattern := "%" + search + "%"

	const countQuery = `
		SELECT COUNT(1)
		FROM users
		WHERE $1 = '' OR email ILIKE $2 OR full_name ILIKE $2`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, search, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT ` + userColumns + `
		FROM users
		WHERE $1 = '' OR email ILIKE $2 OR full_name ILIKE $2
		ORDER BY created_at
		OFFSET $3 LIMIT $4`
	rows, err := r.db.QueryContext(ctx, listQuery, search, pattern, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]types.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.IsActive,
		user.IsVerified,
		user.IsAdmin,
		user.IsBlocked,
		user.BlockedReason,
		user.BlockedAt,
		user.VerificationCode,
		user.VerificationCodeExpires,
		user.ResetPasswordToken,
		user.ResetPasswordExpires,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	user.UpdatedAt = time.Now()

	const query = `
		UPDATE users
		SET email = $1,
			full_name = $2,
			hashed_password = $3,
			is_active = $4,
			is_verified = $5,
			is_admin = $6,
			is_blocked = $7,
			blocked_reason = $8,
			blocked_at = $9,
			verification_code = $10,
			verification_code_expires = $11,
			reset_password_token = $12,
			reset_password_expires = $13,
			updated_at = $14
		WHERE id = $15`
	result, err := r.db.ExecContext(
		ctx,
		query,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.IsActive,
		user.IsVerified,
		user.IsAdmin,
		user.IsBlocked,
		user.BlockedReason,
		user.BlockedAt,
		user.VerificationCode,
		user.VerificationCodeExpires,
		user.ResetPasswordToken,
		user.ResetPasswordExpires,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return types.User{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.User{}, err
	}
	if affected == 0 {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
