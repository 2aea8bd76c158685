package auth

import (
	"errors"
	"strings"
	"testing"
)

const testSecret = "test-secret-at-least-32-characters-long"

func TestAccessTokenRoundTrip(t *testing.T) {
	user := &User{ID: "u1", Username: "alice"}

	token, err := GenerateAccessToken(user, testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "u1" {
		t.Errorf("subject = %q, want u1", claims.Subject)
	}
	if claims.Username != "alice" {
		t.Errorf("username = %q, want alice", claims.Username)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(&User{ID: "u1", Username: "alice"}, testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	if _, err := ParseToken(token, "a-completely-different-secret-value"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("ParseToken(wrong secret) = %v, want ErrTokenInvalid", err)
	}
}

func TestParseTokenRejectsTampered(t *testing.T) {
	token, err := GenerateAccessToken(&User{ID: "u1", Username: "alice"}, testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	tampered := token[:len(token)-2] + "xx"
	if _, err := ParseToken(tampered, testSecret); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("ParseToken(tampered) = %v, want ErrTokenInvalid", err)
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, err := ParseToken("not.a.jwt", testSecret); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("ParseToken(garbage) = %v, want ErrTokenInvalid", err)
	}
}

func TestRefreshTokenGeneration(t *testing.T) {
	raw, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}
	if len(raw) != 64 { // 32 bytes hex encoded
		t.Errorf("token length = %d, want 64", len(raw))
	}

	other, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}
	if raw == other {
		t.Error("two refresh tokens are identical")
	}

	if HashToken(raw) == raw || len(HashToken(raw)) != 64 {
		t.Errorf("HashToken(%s) = %s", raw, HashToken(raw))
	}
}

func TestIsValidUsername(t *testing.T) {
	valid := []string{"alice", "bob.smith", "user_1", "a-b"}
	for _, u := range valid {
		if !IsValidUsername(u) {
			t.Errorf("IsValidUsername(%q) = false, want true", u)
		}
	}

	invalid := []string{"", "has space", "exclaim!", strings.Repeat("x", 65)}
	for _, u := range invalid {
		if IsValidUsername(u) {
			t.Errorf("IsValidUsername(%q) = true, want false", u)
		}
	}
}
