package services

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/modelhub-api/apiserver/internal/store"
	"github.com/modelhub-api/apiserver/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// In-memory repository fakes shared by the service tests.

type fakeUserRepo struct {
	users  map[string]types.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]types.User{}}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) GetByVerificationCode(_ context.Context, code string) (types.User, error) {
	for _, user := range r.users {
		if user.VerificationCode != nil && *user.VerificationCode == code {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) GetByResetToken(_ context.Context, resetToken string) (types.User, error) {
	for _, user := range r.users {
		if user.ResetPasswordToken != nil && *user.ResetPasswordToken == resetToken {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) List(_ context.Context, offset, limit int, _ string) ([]types.User, int, error) {
	all := make([]types.User, 0, len(r.users))
	for _, user := range r.users {
		all = append(all, user)
	}
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

func (r *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	r.nextID++
	user.ID = "user-" + strconv.Itoa(r.nextID)
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeRevocationRepo struct {
	entries map[string][]time.Time
}

func newFakeRevocationRepo() *fakeRevocationRepo {
	return &fakeRevocationRepo{entries: map[string][]time.Time{}}
}

func (r *fakeRevocationRepo) Insert(_ context.Context, userID string, expiresAt time.Time) error {
	r.entries[userID] = append(r.entries[userID], expiresAt)
	return nil
}

func (r *fakeRevocationRepo) Exists(_ context.Context, userID string, now time.Time) (bool, error) {
	for _, expiresAt := range r.entries[userID] {
		if expiresAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRevocationRepo) DeleteAllForUser(_ context.Context, userID string) error {
	delete(r.entries, userID)
	return nil
}

func (r *fakeRevocationRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var removed int64
	for userID, expiries := range r.entries {
		kept := expiries[:0]
		for _, expiresAt := range expiries {
			if expiresAt.After(now) {
				kept = append(kept, expiresAt)
			} else {
				removed++
			}
		}
		if len(kept) == 0 {
			delete(r.entries, userID)
		} else {
			r.entries[userID] = kept
		}
	}
	return removed, nil
}

type fakeDocumentRepo struct {
	docs []types.Document
}

func (r *fakeDocumentRepo) List(_ context.Context, offset, limit int) ([]types.Document, int, error) {
	return r.docs, len(r.docs), nil
}

func (r *fakeDocumentRepo) ListWithContent(_ context.Context) ([]types.Document, error) {
	return r.docs, nil
}

func (r *fakeDocumentRepo) Get(_ context.Context, id string) (types.Document, error) {
	for _, doc := range r.docs {
		if doc.ID == id {
			return doc, nil
		}
	}
	return types.Document{}, store.ErrNotFound
}

func (r *fakeDocumentRepo) Create(_ context.Context, doc types.Document) (types.Document, error) {
	doc.ID = "doc-" + strconv.Itoa(len(r.docs)+1)
	r.docs = append(r.docs, doc)
	return doc, nil
}

func (r *fakeDocumentRepo) Delete(_ context.Context, id string) error {
	for i, doc := range r.docs {
		if doc.ID == id {
			r.docs = append(r.docs[:i], r.docs[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type fakeChatLogRepo struct {
	logs []types.ChatLog
}

func (r *fakeChatLogRepo) Create(_ context.Context, log types.ChatLog) (types.ChatLog, error) {
	log.ID = "log-" + strconv.Itoa(len(r.logs)+1)
	log.CreatedAt = time.Now().UTC()
	r.logs = append(r.logs, log)
	return log, nil
}

func (r *fakeChatLogRepo) ListByUser(_ context.Context, userID string, limit int) ([]types.ChatLog, error) {
	var out []types.ChatLog
	for i := len(r.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if r.logs[i].UserID == userID {
			out = append(out, r.logs[i])
		}
	}
	return out, nil
}

func (r *fakeChatLogRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	kept := r.logs[:0]
	var removed int64
	for _, log := range r.logs {
		if log.CreatedAt.After(cutoff) {
			kept = append(kept, log)
		} else {
			removed++
		}
	}
	r.logs = kept
	return removed, nil
}

type sentMail struct {
	kind string
	to   string
	code string
}

type fakeMailer struct {
	sent []sentMail
}

func (m *fakeMailer) SendVerification(_ context.Context, to, code string) {
	m.sent = append(m.sent, sentMail{kind: "verification", to: to, code: code})
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, token string) {
	m.sent = append(m.sent, sentMail{kind: "password_reset", to: to, code: token})
}

func (m *fakeMailer) SendContactResponse(_ context.Context, to, _, _, _, _ string) {
	m.sent = append(m.sent, sentMail{kind: "contact_response", to: to})
}

type fakeCompleter struct {
	prompt   string
	response string
	err      error
}

func (c *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	c.prompt = prompt
	return c.response, c.err
}
