package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/modelhub-api/apiserver/types"
)

const modelColumns = `id, name, description, model_type, category, object_key, content_type, user_id, created_at, updated_at`

// ModelRepository handles persistence for AI models.
type ModelRepository struct {
	db *sql.DB
}

func NewModelRepository(db *sql.DB) *ModelRepository {
	return &ModelRepository{db: db}
}

func scanModel(row rowScanner) (types.Model, error) {
	var model types.Model
	err := row.Scan(
		&model.ID,
		&model.Name,
		&model.Description,
		&model.ModelType,
		&model.Category,
		&model.ObjectKey,
		&model.ContentType,
		&model.UserID,
		&model.CreatedAt,
		&model.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Model{}, ErrNotFound
		}
		return types.Model{}, err
	}
	return model, nil
}

// List returns a page of models and the total count. Empty userID and
// category match everything; either narrows the result.
func (r *ModelRepository) List(ctx context.Context, offset, limit int, userID, category string) ([]types.Model, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 100
	}

	const countQuery = `
		SELECT COUNT(1)
		FROM ai_models
		WHERE ($1 = '' OR user_id = $1) AND ($2 = '' OR category = $2)`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, userID, category).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT ` + modelColumns + `
		FROM ai_models
		WHERE ($1 = '' OR user_id = $1) AND ($2 = '' OR category = $2)
		ORDER BY created_at
		OFFSET $3 LIMIT $4`
	rows, err := r.db.QueryContext(ctx, listQuery, userID, category, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	models := make([]types.Model, 0, limit)
	for rows.Next() {
		model, err := scanModel(rows)
		if err != nil {
			return nil, 0, err
		}
		models = append(models, model)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return models, total, nil
}

func (r *ModelRepository) Get(ctx context.Context, id string) (types.Model, error) {
	const query = `
		SELECT ` + modelColumns + `
		FROM ai_models
		WHERE id = $1`
	return scanModel(r.db.QueryRowContext(ctx, query, id))
}

func (r *ModelRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(1) FROM ai_models WHERE user_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ModelRepository) Create(ctx context.Context, model types.Model) (types.Model, error) {
	now := time.Now()
	model.ID = uuid.NewString()
	model.CreatedAt = now
	model.UpdatedAt = now

	const query = `
		INSERT INTO ai_models (` + modelColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		model.ID,
		model.Name,
		model.Description,
		model.ModelType,
		model.Category,
		model.ObjectKey,
		model.ContentType,
		model.UserID,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return types.Model{}, err
	}
	return model, nil
}

func (r *ModelRepository) Update(ctx context.Context, model types.Model) (types.Model, error) {
	model.UpdatedAt = time.Now()

	const query = `
		UPDATE ai_models
		SET name = $1,
			description = $2,
			model_type = $3,
			category = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		model.Name,
		model.Description,
		model.ModelType,
		model.Category,
		model.UpdatedAt,
		model.ID,
	)
	if err != nil {
		return types.Model{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Model{}, err
	}
	if affected == 0 {
		return types.Model{}, ErrNotFound
	}
	return model, nil
}

func (r *ModelRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM ai_models WHERE id = $1`
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
