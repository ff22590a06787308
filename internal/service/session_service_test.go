package service

import (
	"errors"
	"testing"
	"time"
)

func TestSessionServiceIssueParse(t *testing.T) {
	svc := NewSessionService("secret", 15*time.Minute)

	token, err := svc.Issue("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	username, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if username != "alice" {
		t.Fatalf("expected alice, got %q", username)
	}
}

func TestSessionServiceRejectsEmptyUsername(t *testing.T) {
	svc := NewSessionService("secret", 15*time.Minute)
	if _, err := svc.Issue("   "); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
}

func TestSessionServiceRevoke(t *testing.T) {
	svc := NewSessionService("secret", 15*time.Minute)

	token, err := svc.Issue("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.Revoke(token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := svc.Parse(token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected revoked session to be invalid, got %v", err)
	}
}

func TestSessionServiceWrongSecret(t *testing.T) {
	issuer := NewSessionService("secret-a", 15*time.Minute)
	verifier := NewSessionService("secret-b", 15*time.Minute)

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Parse(token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
}

func TestSessionServiceExpired(t *testing.T) {
	svc := NewSessionService("secret", time.Nanosecond)

	token, err := svc.Issue("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := svc.Parse(token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestSessionServiceGarbage(t *testing.T) {
	svc := NewSessionService("secret", 15*time.Minute)
	if _, err := svc.Parse("not-a-token"); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
	if _, err := svc.Parse(""); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid for empty token, got %v", err)
	}
}
