package tokenstore

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestExpiryReadsClaimWithoutVerification(t *testing.T) {
	t.Parallel()

	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	token := signedToken(t, jwt.MapClaims{"sub": "user-1", "exp": exp.Unix()})

	got, ok := Expiry(token)
	if !ok {
		t.Fatal("Expiry() ok = false, want true")
	}
	if !got.Equal(exp) {
		t.Fatalf("Expiry() = %v, want %v", got, exp)
	}
}

func TestExpiryWithoutClaim(t *testing.T) {
	t.Parallel()

	for _, token := range []string{"", "opaque-token", signedToken(t, jwt.MapClaims{"sub": "user-1"})} {
		if _, ok := Expiry(token); ok {
			t.Fatalf("Expiry(%q) ok = true, want false", token)
		}
	}
}

func TestLive(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{name: "empty", token: "", want: false},
		{name: "opaque", token: "opaque-token", want: true},
		{name: "future exp", token: signedToken(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()}), want: true},
		{name: "past exp", token: signedToken(t, jwt.MapClaims{"exp": now.Add(-time.Second).Unix()}), want: false},
		{name: "no exp", token: signedToken(t, jwt.MapClaims{"sub": "u"}), want: true},
	}
	for _, tc := range tests {
		if got := Live(tc.token, now); got != tc.want {
			t.Fatalf("Live(%s) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
