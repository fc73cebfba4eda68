package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndVerify(t *testing.T) {
	m := NewManager("test-secret")

	tok, err := m.GenerateAccessToken("user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.VerifyAccessToken(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected user-1, got %q", claims.UserID)
	}
	if claims.ExpiresAt != nil {
		t.Fatalf("tokens must not carry an expiry, got %v", claims.ExpiresAt)
	}
}

func TestVerify_OldTokenStillValid(t *testing.T) {
	m := NewManager("test-secret")
	m.now = func() time.Time { return time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC) }

	tok, err := m.GenerateAccessToken("user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := NewManager("test-secret").VerifyAccessToken(tok); err != nil {
		t.Fatalf("old token should verify: %v", err)
	}
}

func TestVerify_Failures(t *testing.T) {
	m := NewManager("test-secret")

	other, err := NewManager("another-secret").GenerateAccessToken("user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	noneTok, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	noID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "missing", token: "", want: ErrMissingToken},
		{name: "garbage", token: "not-a-jwt", want: ErrInvalidToken},
		{name: "different_secret", token: other, want: ErrInvalidToken},
		{name: "alg_none", token: noneTok, want: ErrInvalidToken},
		{name: "bearer_prefix_not_stripped", token: "Bearer " + other, want: ErrInvalidToken},
		{name: "missing_id", token: noID, want: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.VerifyAccessToken(tt.token)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGenerate_EmptyUser(t *testing.T) {
	if _, err := NewManager("s").GenerateAccessToken(" "); err == nil {
		t.Fatalf("expected error for empty user id")
	}
}
