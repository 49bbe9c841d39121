// Package token issues and verifies the signed bearer tokens used to
// authenticate API calls. Tokens are HS256 JWTs carrying the user ID as
// subject; validity beyond signature and expiry (revocation, account
// state) is the access gate's concern.
package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned for tokens that fail signature
	// verification or carry malformed claims.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned for well-formed tokens past their expiry.
	ErrTokenExpired = errors.New("token expired")
)

// Manager signs and parses bearer tokens with a shared secret.
type Manager struct {
	secret     []byte
	defaultTTL time.Duration
}

// NewManager constructs a Manager. An empty secret is a configuration
// error and refuses to start.
func NewManager(secret string, defaultTTL time.Duration) (*Manager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token signing secret is required")
	}
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Minute
	}
	return &Manager{
		secret:     []byte(secret),
		defaultTTL: defaultTTL,
	}, nil
}

// Issue mints a signed token for the given subject. A zero ttl falls
// back to the manager's default; a negative ttl mints an already
// expired token.
func (m *Manager) Issue(subject string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = m.defaultTTL
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies the signature and expiry of a token and returns its
// subject. It never touches stored state.
func (m *Manager) Parse(raw string) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return "", ErrInvalidToken
	}
	return subject, nil
}
