package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/modelhub-api/apiserver/types"
)

const contactColumns = `id, first_name, last_name, email, phone, message, status, response,
		responded_at, responded_by, updated_by, created_at, updated_at`

// ContactRepository handles persistence for contact reports.
type ContactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func scanContactReport(row rowScanner) (types.ContactReport, error) {
	var report types.ContactReport
	err := row.Scan(
		&report.ID,
		&report.FirstName,
		&report.LastName,
		&report.Email,
		&report.Phone,
		&report.Message,
		&report.Status,
		&report.Response,
		&report.RespondedAt,
		&report.RespondedBy,
		&report.UpdatedBy,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.ContactReport{}, ErrNotFound
		}
		return types.ContactReport{}, err
	}
	return report, nil
}

// List returns every contact report, newest first.
func (r *ContactRepository) List(ctx context.Context) ([]types.ContactReport, error) {
	const query = `
		SELECT ` + contactColumns + `
		FROM contact_reports
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []types.ContactReport
	for rows.Next() {
		report, err := scanContactReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

func (r *ContactRepository) Get(ctx context.Context, id string) (types.ContactReport, error) {
	const query = `
		SELECT ` + contactColumns + `
		FROM contact_reports
		WHERE id = $1`
	return scanContactReport(r.db.QueryRowContext(ctx, query, id))
}

func (r *ContactRepository) Create(ctx context.Context, report types.ContactReport) (types.ContactReport, error) {
	now := time.Now()
	report.ID = uuid.NewString()
	report.Status = types.ContactStatusPending
	report.CreatedAt = now
	report.UpdatedAt = now

	const query = `
		INSERT INTO contact_reports (id, first_name, last_name, email, phone, message, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		report.ID,
		report.FirstName,
		report.LastName,
		report.Email,
		report.Phone,
		report.Message,
		report.Status,
		report.CreatedAt,
		report.UpdatedAt,
	)
	if err != nil {
		return types.ContactReport{}, err
	}
	return report, nil
}

// SetResponse records an admin response and moves the report to the
// responded state.
func (r *ContactRepository) SetResponse(ctx context.Context, id, response, adminID string) (types.ContactReport, error) {
	now := time.Now()

	const query = `
		UPDATE contact_reports
		SET status = $1,
			response = $2,
			responded_at = $3,
			responded_by = $4,
			updated_at = $3
		WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query, types.ContactStatusResponded, response, now, adminID, id)
	if err != nil {
		return types.ContactReport{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.ContactReport{}, err
	}
	if affected == 0 {
		return types.ContactReport{}, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *ContactRepository) SetStatus(ctx context.Context, id string, status types.ContactStatus, adminID string) (types.ContactReport, error) {
	now := time.Now()

	const query = `
		UPDATE contact_reports
		SET status = $1,
			updated_by = $2,
			updated_at = $3
		WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, status, adminID, now, id)
	if err != nil {
		return types.ContactReport{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.ContactReport{}, err
	}
	if affected == 0 {
		return types.ContactReport{}, ErrNotFound
	}
	return r.Get(ctx, id)
}
