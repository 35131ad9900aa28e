package util

import (
	"fmt"
	"strconv"
	"time"

	"github.com/diyetisyenim/diyet-api/model"
	"github.com/golang-jwt/jwt/v4"
)

// TokenTTL is the fixed lifetime of issued access tokens. There is no
// refresh mechanism; clients re-authenticate when the token expires.
const TokenTTL = 24 * time.Hour

// TokenClaims carries the authenticated identity inside an access token.
// Subject holds the user id.
type TokenClaims struct {
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken issues a signed HS256 token for the user.
func GenerateToken(user model.User) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(GetJWTSecretByte())
}

// ParseToken validates signature and expiry, returning the claims and
// the user id from the subject. Any failure (malformed, expired, wrong
// method, bad signature) yields an error.
func ParseToken(tokenString string) (*TokenClaims, uint, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return GetJWTSecretByte(), nil
	})
	if err != nil {
		return nil, 0, err
	}
	if !token.Valid {
		return nil, 0, fmt.Errorf("invalid token")
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid token subject: %w", err)
	}
	if _, ok := model.ParseRole(string(claims.Role)); !ok {
		return nil, 0, fmt.Errorf("unknown role in token")
	}
	return claims, uint(userID), nil
}
