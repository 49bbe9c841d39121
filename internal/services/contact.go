package services

import (
	"context"

	"github.com/modelhub-api/apiserver/types"
)

// ContactRepository defines persistence operations for contact reports.
type ContactRepository interface {
	List(ctx context.Context) ([]types.ContactReport, error)
	Get(ctx context.Context, id string) (types.ContactReport, error)
	Create(ctx context.Context, report types.ContactReport) (types.ContactReport, error)
	SetResponse(ctx context.Context, id, response, adminID string) (types.ContactReport, error)
	SetStatus(ctx context.Context, id string, status types.ContactStatus, adminID string) (types.ContactReport, error)
}

// ContactService manages the contact-form mailbox: public submission
// and the admin response workflow.
type ContactService struct {
	repo ContactRepository
	mail Mailer
}

func NewContactService(repo ContactRepository, mail Mailer) *ContactService {
	return &ContactService{repo: repo, mail: mail}
}

// Submit records a contact-form submission. Reports always start
// pending regardless of input.
func (s *ContactService) Submit(ctx context.Context, report types.ContactReport) (types.ContactReport, error) {
	return s.repo.Create(ctx, report)
}

// ListReports returns every report, newest first. Admin surface.
func (s *ContactService) ListReports(ctx context.Context) ([]types.ContactReport, error) {
	return s.repo.List(ctx)
}

// Respond stores the admin's response, marks the report responded and
// emails the submitter.
func (s *ContactService) Respond(ctx context.Context, id, response string, admin types.User) (types.ContactReport, error) {
	report, err := s.repo.SetResponse(ctx, id, response, admin.ID)
	if err != nil {
		return types.ContactReport{}, err
	}

	s.mail.SendContactResponse(ctx, report.Email, report.FirstName, report.LastName, report.Message, response)
	return report, nil
}

// UpdateStatus moves a report to another workflow state.
func (s *ContactService) UpdateStatus(ctx context.Context, id string, status types.ContactStatus, admin types.User) (types.ContactReport, error) {
	switch status {
	case types.ContactStatusPending, types.ContactStatusInProgress, types.ContactStatusResponded, types.ContactStatusDone:
	default:
		return types.ContactReport{}, ErrInvalidStatus
	}

	return s.repo.SetStatus(ctx, id, status, admin.ID)
}
