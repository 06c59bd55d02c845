package uaa

import (
	"github.com/golang-jwt/jwt/v5"
)

// peekUserClaims reads user_id and user_name from a JWT access token without
// verifying it. The token was just received from the token endpoint over TLS,
// so the claims are only used to fill in fields the response omitted.
// Opaque tokens yield empty strings.
func peekUserClaims(raw string) (userID, userName string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return "", ""
	}
	userID, _ = claims["user_id"].(string)
	userName, _ = claims["user_name"].(string)
	return userID, userName
}
