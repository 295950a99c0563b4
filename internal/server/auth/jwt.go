// Package auth issues and verifies the two JWT types used by the session
// workflow: a short-lived access token carrying identity claims and a
// long-lived refresh token carrying only the user ID. Each type is signed
// with its own HS256 secret.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/anveshm/vidtube/internal/common"
	"github.com/anveshm/vidtube/internal/server/models"
)

// AccessClaims are embedded in access tokens. The identity fields let the
// HTTP layer serve authenticated requests without a database read.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// RefreshClaims are embedded in refresh tokens. Deliberately minimal:
// refresh tokens are long-lived, and a smaller claim surface limits
// staleness if account fields change.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

func GenerateAccessToken(user *models.User, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		FullName: user.FullName,
	})

	return token.SignedString(secretKey)
}

// GenerateRefreshToken mints a refresh token. The jti claim makes every
// token unique even within the same second (iat/exp have one-second
// resolution), so rotating always replaces the stored value with a
// different string.
func GenerateRefreshToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
	})

	return token.SignedString(secretKey)
}

// ParseAccessToken verifies the signature and expiry of an access token and
// returns its claims. Expired tokens yield common.ErrTokenExpired; any other
// verification failure yields common.ErrInvalidToken.
func ParseAccessToken(tokenString string, secretKey []byte) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := parseToken(tokenString, claims, secretKey); err != nil {
		return nil, err
	}
	return claims, nil
}

// GetUserIDFromRefreshToken verifies a refresh token and returns the user ID
// embedded in it.
func GetUserIDFromRefreshToken(tokenString string, secretKey []byte) (string, error) {
	claims := &RefreshClaims{}
	if err := parseToken(tokenString, claims, secretKey); err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func parseToken(tokenString string, claims jwt.Claims, secretKey []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return common.ErrTokenExpired
		}
		return common.ErrInvalidToken
	}

	if !token.Valid {
		return common.ErrInvalidToken
	}

	return nil
}
