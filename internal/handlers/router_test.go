package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/modelhub-api/apiserver/internal/services"
	"github.com/modelhub-api/apiserver/internal/store"
	"github.com/modelhub-api/apiserver/internal/token"
	"github.com/modelhub-api/apiserver/types"
)

// Shared in-memory fixtures for the handler tests. The router is wired
// exactly as in the server, with fakes behind the service layer.

type testEnv struct {
	router     chi.Router
	users      *fakeUserRepo
	revocation *fakeRevocationRepo
	mailer     *fakeMailer
	tokens     *token.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tokens, err := token.NewManager("handler-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new token manager: %v", err)
	}

	users := newFakeUserRepo()
	revocation := newFakeRevocationRepo()
	mailer := &fakeMailer{}

	userService := services.NewUserService(users, revocation, tokens, mailer, 7*24*time.Hour)
	adminService := services.NewAdminService(users, revocation, 365*24*time.Hour)
	accessService := services.NewAccessService(tokens, revocation, users)

	authMiddleware := RequireAuth(accessService)
	adminMiddleware := RequireAdmin(accessService)

	router := chi.NewRouter()
	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			AuthRouter(r, userService, authMiddleware)
		})
		r.Route("/admin", func(r chi.Router) {
			AdminRouter(r, adminService, authMiddleware, adminMiddleware)
		})
	})

	return &testEnv{
		router:     router,
		users:      users,
		revocation: revocation,
		mailer:     mailer,
		tokens:     tokens,
	}
}

// addUser seeds an active verified account and returns it with a valid
// access token.
func (e *testEnv) addUser(t *testing.T, email, password string, admin bool) (types.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	user, err := e.users.Create(context.Background(), types.User{
		Email:        email,
		FullName:     "Test User",
		PasswordHash: string(hash),
		IsActive:     true,
		IsVerified:   true,
		IsAdmin:      admin,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	accessToken, err := e.tokens.Issue(user.ID, 0)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return user, accessToken
}

func (e *testEnv) do(t *testing.T, method, path, accessToken string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return out
}

// In-memory repository fakes implementing the service interfaces.

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

type fakeMailer struct {
	verificationCodes map[string]string
	resetTokens       map[string]string
}

func (m *fakeMailer) SendVerification(_ context.Context, to, code string) {
	if m.verificationCodes == nil {
		m.verificationCodes = map[string]string{}
	}
	m.verificationCodes[to] = code
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, resetToken string) {
	if m.resetTokens == nil {
		m.resetTokens = map[string]string{}
	}
	m.resetTokens[to] = resetToken
}

func (m *fakeMailer) SendContactResponse(_ context.Context, _, _, _, _, _ string) {}
