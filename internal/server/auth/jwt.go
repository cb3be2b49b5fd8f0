// Package auth signs and verifies the HS256 JWTs used for two things: the
// bearer tokens the Identity Provider issues for API calls, and the
// short-lived state values that bind an OAuth callback to its owner.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mberzonis/carelink/internal/common"
)

// Claims carries the standard registered claims plus the portal user ID.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// GenerateToken mints an HS256 token for userID valid for validityDuration.
func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
	})
	return token.SignedString(secretKey)
}

// GetUserIDFromToken verifies the token and returns the embedded user ID.
// Expired, malformed, or wrongly signed tokens yield common.ErrInvalidToken.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", common.ErrInvalidToken
	}
	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
