package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the exp claim of an ID token without verifying its
// signature. The provider verifies tokens; the client only needs to know
// when to refresh. ok is false when the token has no readable exp.
func TokenExpiry(idToken string) (exp time.Time, ok bool) {
	token, _, err := jwt.NewParser().ParseUnverified(idToken, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}

	nd, err := token.Claims.GetExpirationTime()
	if err != nil || nd == nil {
		return time.Time{}, false
	}
	return nd.Time, true
}
