package token

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	t.Parallel()

	mgr, err := NewManager("super-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}

	tok, err := mgr.Issue("user-42", time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	subject, err := mgr.Parse(tok)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if subject != "user-42" {
		t.Fatalf("subject mismatch: got %q want %q", subject, "user-42")
	}
}

func TestParseExpired(t *testing.T) {
	t.Parallel()

	mgr, err := NewManager("secret", time.Hour)
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}

	tok, err := mgr.Issue("u1", -time.Second)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = mgr.Parse(tok)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseWrongSecret(t *testing.T) {
	t.Parallel()

	issuer, err := NewManager("right-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	verifier, err := NewManager("wrong-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}

	tok, err := issuer.Issue("u2", time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = verifier.Parse(tok)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseGarbage(t *testing.T) {
	t.Parallel()

	mgr, err := NewManager("secret", time.Hour)
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := mgr.Parse(raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Parse(%q): expected ErrInvalidToken, got %v", raw, err)
		}
	}
}

func TestNewManagerEmptySecret(t *testing.T) {
	t.Parallel()

	if _, err := NewManager("  ", time.Hour); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestIssueDefaultTTL(t *testing.T) {
	t.Parallel()

	mgr, err := NewManager("secret", time.Minute)
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}

	tok, err := mgr.Issue("u3", 0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if subject, err := mgr.Parse(tok); err != nil || subject != "u3" {
		t.Fatalf("Parse: got (%q, %v)", subject, err)
	}
}
