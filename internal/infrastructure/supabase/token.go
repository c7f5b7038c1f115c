package supabase

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// tokenExpiry reads the exp claim of an access token. The signature is not
// checked: the token came straight from the auth server and is only sent back to it.
func tokenExpiry(accessToken string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return time.Time{}, fmt.Errorf("parse access token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("access token has no exp claim")
	}
	return claims.ExpiresAt.Time, nil
}
