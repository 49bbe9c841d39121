package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/modelhub-api/apiserver/internal/token"
	"github.com/modelhub-api/apiserver/types"
)

const testDeleteTTL = 7 * 24 * time.Hour

func newUserFixture(t *testing.T) (*UserService, *fakeUserRepo, *fakeRevocationRepo, *fakeMailer) {
	t.Helper()

	tokens, err := token.NewManager("user-test-secret", 30*time.Minute)
	require.NoError(t, err)

	users := newFakeUserRepo()
	revocation := newFakeRevocationRepo()
	mail := &fakeMailer{}
	svc := NewUserService(users, revocation, tokens, mail, testDeleteTTL)
	return svc, users, revocation, mail
}

func signupUser(t *testing.T, svc *UserService, email, password string) types.User {
	t.Helper()

	user, err := svc.Signup(context.Background(), email, "Test User", password)
	require.NoError(t, err)
	return user
}

func TestSignup(t *testing.T) {
	svc, users, _, mail := newUserFixture(t)

	user := signupUser(t, svc, "new@example.com", "secret123")

	assert.True(t, user.IsActive)
	assert.False(t, user.IsVerified)
	assert.False(t, user.IsAdmin)

	stored := users.users[user.ID]
	require.NotNil(t, stored.VerificationCode)
	assert.Len(t, *stored.VerificationCode, 6)
	require.NotNil(t, stored.VerificationCodeExpires)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "verification", mail.sent[0].kind)
	assert.Equal(t, "new@example.com", mail.sent[0].to)
	assert.Equal(t, *stored.VerificationCode, mail.sent[0].code)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newUserFixture(t)
	signupUser(t, svc, "dup@example.com", "secret123")

	_, err := svc.Signup(context.Background(), "dup@example.com", "Other", "secret456")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	svc, _, _, _ := newUserFixture(t)
	user := signupUser(t, svc, "login@example.com", "secret123")

	raw, loggedIn, err := svc.Login(context.Background(), "login@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _, _ := newUserFixture(t)
	signupUser(t, svc, "login@example.com", "secret123")

	_, _, err := svc.Login(context.Background(), "login@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _, _ := newUserFixture(t)

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginBlockedUser(t *testing.T) {
	svc, users, _, _ := newUserFixture(t)
	user := signupUser(t, svc, "blocked@example.com", "secret123")

	stored := users.users[user.ID]
	stored.IsBlocked = true
	users.users[user.ID] = stored

	_, _, err := svc.Login(context.Background(), "blocked@example.com", "secret123")
	assert.ErrorIs(t, err, ErrUserBlocked)
}

func TestLoginInactiveUser(t *testing.T) {
	svc, users, _, _ := newUserFixture(t)
	user := signupUser(t, svc, "inactive@example.com", "secret123")

	stored := users.users[user.ID]
	stored.IsActive = false
	users.users[user.ID] = stored

	_, _, err := svc.Login(context.Background(), "inactive@example.com", "secret123")
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestVerify(t *testing.T) {
	svc, users, _, _ := newUserFixture(t)
	user := signupUser(t, svc, "verify@example.com", "secret123")

	code := *users.users[user.ID].VerificationCode
	require.NoError(t, svc.Verify(context.Background(), code))

	stored := users.users[user.ID]
	assert.True(t, stored.IsVerified)
	assert.Nil(t, stored.VerificationCode)
	assert.Nil(t, stored.VerificationCodeExpires)

	// The code is single use.
	assert.ErrorIs(t, svc.Verify(context.Background(), code), ErrInvalidVerification)
}

func TestVerifyExpiredCode(t *testing.T) {
	svc, users, _, _ := newUserFixture(t)
	user := signupUser(t, svc, "verify@example.com", "secret123")

	stored := users.users[user.ID]
	expired := time.Now().UTC().Add(-time.Minute)
	stored.VerificationCodeExpires = &expired
	users.users[user.ID] = stored

	err := svc.Verify(context.Background(), *stored.VerificationCode)
	assert.ErrorIs(t, err, ErrInvalidVerification)
}

func TestForgotAndResetPassword(t *testing.T) {
	svc, users, _, mail := newUserFixture(t)
	user := signupUser(t, svc, "reset@example.com", "secret123")

	require.NoError(t, svc.ForgotPassword(context.Background(), "reset@example.com"))

	stored := users.users[user.ID]
	require.NotNil(t, stored.ResetPasswordToken)
	resetToken := *stored.ResetPasswordToken

	require.Len(t, mail.sent, 2)
	assert.Equal(t, "password_reset", mail.sent[1].kind)
	assert.Equal(t, resetToken, mail.sent[1].code)

	require.NoError(t, svc.ResetPassword(context.Background(), resetToken, "newsecret456"))

	stored = users.users[user.ID]
	assert.Nil(t, stored.ResetPasswordToken)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("newsecret456")))

	// The token is single use.
	assert.ErrorIs(t, svc.ResetPassword(context.Background(), resetToken, "again"), ErrInvalidResetToken)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc, _, _, mail := newUserFixture(t)

	// Unknown addresses are not revealed.
	assert.NoError(t, svc.ForgotPassword(context.Background(), "nobody@example.com"))
	assert.Empty(t, mail.sent)
}

func TestUpdateProfilePasswordChange(t *testing.T) {
	svc, users, _, _ := newUserFixture(t)
	user := signupUser(t, svc, "profile@example.com", "secret123")

	_, err := svc.UpdateProfile(context.Background(), users.users[user.ID], ProfileUpdate{
		NewPassword: "newsecret456",
	})
	assert.ErrorIs(t, err, ErrWrongPassword)

	updated, err := svc.UpdateProfile(context.Background(), users.users[user.ID], ProfileUpdate{
		CurrentPassword: "secret123",
		NewPassword:     "newsecret456",
	})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("newsecret456")))
}

func TestUpdateProfileEmailTaken(t *testing.T) {
	svc, users, _, _ := newUserFixture(t)
	signupUser(t, svc, "taken@example.com", "secret123")
	user := signupUser(t, svc, "mine@example.com", "secret123")

	_, err := svc.UpdateProfile(context.Background(), users.users[user.ID], ProfileUpdate{
		Email: "taken@example.com",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestDeleteAccount(t *testing.T) {
	svc, users, revocation, _ := newUserFixture(t)
	user := signupUser(t, svc, "gone@example.com", "secret123")

	err := svc.DeleteAccount(context.Background(), users.users[user.ID], "wrong")
	assert.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, svc.DeleteAccount(context.Background(), users.users[user.ID], "secret123"))

	_, err = users.GetByID(context.Background(), user.ID)
	assert.Error(t, err)

	// Deletion revokes outstanding tokens for the retention window.
	revoked, err := revocation.Exists(context.Background(), user.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, revoked)

	expiries := revocation.entries[user.ID]
	require.Len(t, expiries, 1)
	assert.WithinDuration(t, time.Now().Add(testDeleteTTL), expiries[0], time.Minute)
}
