package services

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelhub-api/apiserver/internal/store"
	"github.com/modelhub-api/apiserver/types"
)

type fakeContactRepo struct {
	reports []types.ContactReport
}

func (r *fakeContactRepo) List(_ context.Context) ([]types.ContactReport, error) {
	return r.reports, nil
}

func (r *fakeContactRepo) Get(_ context.Context, id string) (types.ContactReport, error) {
	for _, report := range r.reports {
		if report.ID == id {
			return report, nil
		}
	}
	return types.ContactReport{}, store.ErrNotFound
}

func (r *fakeContactRepo) Create(_ context.Context, report types.ContactReport) (types.ContactReport, error) {
	report.ID = "report-" + strconv.Itoa(len(r.reports)+1)
	report.Status = types.ContactStatusPending
	report.CreatedAt = time.Now().UTC()
	r.reports = append(r.reports, report)
	return report, nil
}

func (r *fakeContactRepo) SetResponse(_ context.Context, id, response, adminID string) (types.ContactReport, error) {
	for i, report := range r.reports {
		if report.ID == id {
			now := time.Now().UTC()
			report.Status = types.ContactStatusResponded
			report.Response = &response
			report.RespondedAt = &now
			report.RespondedBy = &adminID
			r.reports[i] = report
			return report, nil
		}
	}
	return types.ContactReport{}, store.ErrNotFound
}

func (r *fakeContactRepo) SetStatus(_ context.Context, id string, status types.ContactStatus, adminID string) (types.ContactReport, error) {
	for i, report := range r.reports {
		if report.ID == id {
			report.Status = status
			report.UpdatedBy = &adminID
			r.reports[i] = report
			return report, nil
		}
	}
	return types.ContactReport{}, store.ErrNotFound
}

func TestContactSubmitStartsPending(t *testing.T) {
	repo := &fakeContactRepo{}
	svc := NewContactService(repo, &fakeMailer{})

	report, err := svc.Submit(context.Background(), types.ContactReport{
		FirstName: "Alice",
		LastName:  "Doe",
		Email:     "alice@example.com",
		Message:   "hi",
		Status:    types.ContactStatusDone, // ignored
	})
	require.NoError(t, err)
	assert.Equal(t, types.ContactStatusPending, report.Status)
}

func TestContactRespondEmailsSubmitter(t *testing.T) {
	repo := &fakeContactRepo{}
	mail := &fakeMailer{}
	svc := NewContactService(repo, mail)

	report, err := svc.Submit(context.Background(), types.ContactReport{
		FirstName: "Alice",
		LastName:  "Doe",
		Email:     "alice@example.com",
		Message:   "how do I upload?",
	})
	require.NoError(t, err)

	admin := types.User{ID: "admin-1", IsAdmin: true}
	responded, err := svc.Respond(context.Background(), report.ID, "Use the models page.", admin)
	require.NoError(t, err)

	assert.Equal(t, types.ContactStatusResponded, responded.Status)
	require.NotNil(t, responded.RespondedBy)
	assert.Equal(t, "admin-1", *responded.RespondedBy)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "contact_response", mail.sent[0].kind)
	assert.Equal(t, "alice@example.com", mail.sent[0].to)
}

func TestContactUpdateStatus(t *testing.T) {
	repo := &fakeContactRepo{}
	svc := NewContactService(repo, &fakeMailer{})

	report, err := svc.Submit(context.Background(), types.ContactReport{
		FirstName: "Alice",
		Email:     "alice@example.com",
		Message:   "hi",
	})
	require.NoError(t, err)

	admin := types.User{ID: "admin-1", IsAdmin: true}

	updated, err := svc.UpdateStatus(context.Background(), report.ID, types.ContactStatusInProgress, admin)
	require.NoError(t, err)
	assert.Equal(t, types.ContactStatusInProgress, updated.Status)

	_, err = svc.UpdateStatus(context.Background(), report.ID, types.ContactStatus("bogus"), admin)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
