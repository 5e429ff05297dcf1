package auth

import (
	"errors"
	"testing"
	"time"
)

func TestSignVerify_RoundTrip(t *testing.T) {
	k := NewKeys("secret", 0)
	tok, err := k.Sign("u1", true)
	if err != nil {
		t.Fatalf("Sign returned unexpected error: %v", err)
	}

	claims, err := k.Verify(tok)
	if err != nil {
		t.Fatalf("Verify returned unexpected error: %v", err)
	}
	if claims.Username != "u1" || !claims.IsAdmin {
		t.Errorf("claims = %+v, want username=u1 isAdmin=true", claims)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	tok, _ := NewKeys("secret", 0).Sign("u1", false)
	_, err := NewKeys("other", 0).Verify(tok)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify with wrong secret error = %v, want ErrInvalidToken", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	k := NewKeys("secret", time.Minute)
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	k.now = func() time.Time { return issued }
	tok, err := k.Sign("u1", false)
	if err != nil {
		t.Fatalf("Sign returned unexpected error: %v", err)
	}

	k.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := k.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify of expired token error = %v, want ErrInvalidToken", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	if _, err := NewKeys("secret", 0).Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify(garbage) error = %v, want ErrInvalidToken", err)
	}
}
