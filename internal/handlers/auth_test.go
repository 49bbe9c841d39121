package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelhub-api/apiserver/types"
)

func TestSignupVerifyLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email":     "Alice@Example.com",
		"full_name": "Alice",
		"password":  "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decodeBody[types.User](t, rec)
	assert.Equal(t, "alice@example.com", created.Email)
	assert.False(t, created.IsVerified)

	code, ok := env.mailer.verificationCodes["alice@example.com"]
	require.True(t, ok, "verification email not dispatched")

	rec = env.do(t, http.MethodPost, "/api/v1/auth/verify/"+code, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	tokenResp := decodeBody[TokenResponse](t, rec)
	assert.Equal(t, "bearer", tokenResp.TokenType)
	require.NotEmpty(t, tokenResp.AccessToken)

	rec = env.do(t, http.MethodGet, "/api/v1/auth/me", tokenResp.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody[types.User](t, rec)
	assert.Equal(t, "alice@example.com", me.Email)
	assert.True(t, me.IsVerified)
}

func TestSignupDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "taken@example.com", "password123", false)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email":     "taken@example.com",
		"full_name": "Dup",
		"password":  "password123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignupMissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email": "incomplete@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "bob@example.com", "password123", false)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "bob@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyUnknownCode(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/verify/000000", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/auth/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestForgotAndResetPassword(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "carol@example.com", "oldpassword1", false)

	// Unknown addresses get the same response as registered ones.
	rec := env.do(t, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{
		"email": "unknown@example.com",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{
		"email": "carol@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resetToken, ok := env.mailer.resetTokens["carol@example.com"]
	require.True(t, ok, "reset email not dispatched")

	rec = env.do(t, http.MethodPost, "/api/v1/auth/reset-password", "", map[string]string{
		"token":        resetToken,
		"new_password": "newpassword1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "carol@example.com",
		"password": "newpassword1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// A consumed token is rejected.
	rec = env.do(t, http.MethodPost, "/api/v1/auth/reset-password", "", map[string]string{
		"token":        resetToken,
		"new_password": "anotherpass1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteAccountRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	_, accessToken := env.addUser(t, "dave@example.com", "password123", false)

	rec := env.do(t, http.MethodDelete, "/api/v1/auth/delete-account", accessToken, map[string]string{
		"password": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/auth/delete-account", accessToken, map[string]string{
		"password": "password123",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/auth/me", accessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
