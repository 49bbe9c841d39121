package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/modelhub-api/apiserver/types"
)

// DocumentRepository handles persistence for RAG documents.
type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) List(ctx context.Context, offset, limit int) ([]types.Document, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 100
	}

	const countQuery = `SELECT COUNT(1) FROM documents`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT id, name, description, document_type, object_key, content_type, created_at, updated_at
		FROM documents
		ORDER BY created_at
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	documents := make([]types.Document, 0, limit)
	for rows.Next() {
		var doc types.Document
		if err := rows.Scan(
			&doc.ID,
			&doc.Name,
			&doc.Description,
			&doc.DocumentType,
			&doc.ObjectKey,
			&doc.ContentType,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		documents = append(documents, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return documents, total, nil
}

// ListWithContent returns every document including its extracted text,
// used by the chatbot's retrieval step.
func (r *DocumentRepository) ListWithContent(ctx context.Context) ([]types.Document, error) {
	const query = `
		SELECT id, name, description, document_type, object_key, content_type, text_content, created_at, updated_at
		FROM documents`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var documents []types.Document
	for rows.Next() {
		var doc types.Document
		if err := rows.Scan(
			&doc.ID,
			&doc.Name,
			&doc.Description,
			&doc.DocumentType,
			&doc.ObjectKey,
			&doc.ContentType,
			&doc.TextContent,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		documents = append(documents, doc)
	}
	return documents, rows.Err()
}

func (r *DocumentRepository) Get(ctx context.Context, id string) (types.Document, error) {
	const query = `
		SELECT id, name, description, document_type, object_key, content_type, text_content, created_at, updated_at
		FROM documents
		WHERE id = $1`
	var doc types.Document
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID,
		&doc.Name,
		&doc.Description,
		&doc.DocumentType,
		&doc.ObjectKey,
		&doc.ContentType,
		&doc.TextContent,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Document{}, ErrNotFound
		}
		return types.Document{}, err
	}
	return doc, nil
}

func (r *DocumentRepository) Create(ctx context.Context, doc types.Document) (types.Document, error) {
	now := time.Now()
	doc.ID = uuid.NewString()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	const query = `
		INSERT INTO documents (id, name, description, document_type, object_key, content_type, text_content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.Name,
		doc.Description,
		doc.DocumentType,
		doc.ObjectKey,
		doc.ContentType,
		doc.TextContent,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return types.Document{}, err
	}
	return doc, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM documents WHERE id = $1`
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
