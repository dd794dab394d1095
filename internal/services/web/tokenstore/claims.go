package tokenstore

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Expiry returns the exp claim of a JWT. The signature is not checked; the
// backend owns validation. Opaque or claim-less tokens report false.
func Expiry(token string) (time.Time, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Live reports whether token is non-empty and not past its exp claim.
func Live(token string, now time.Time) bool {
	if strings.TrimSpace(token) == "" {
		return false
	}
	exp, ok := Expiry(token)
	if !ok {
		return true
	}
	return now.Before(exp)
}
