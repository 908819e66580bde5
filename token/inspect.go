package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var parser = jwt.NewParser()

// Expiry returns the exp claim of a JWT-shaped token. ok is false when the
// token is not a parseable JWT or carries no exp claim.
func Expiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether token is a JWT whose exp has passed, with skew as
// leeway. Tokens without a readable expiry are never reported expired.
func Expired(token string, skew time.Duration) bool {
	exp, ok := Expiry(token)
	if !ok {
		return false
	}
	return time.Now().Add(skew).After(exp)
}
