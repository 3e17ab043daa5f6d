package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// decodeExpiration returns the access token's exp claim in epoch
// milliseconds, or -1 when the token or the claim cannot be decoded. The
// signature is deliberately not verified; this service only schedules
// refreshes, the backend validates tokens.
func decodeExpiration(accessToken string) int64 {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return -1
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return -1
	}
	return exp.UnixMilli()
}
