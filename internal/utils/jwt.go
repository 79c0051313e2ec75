// internal/utils/jwt.go
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var jwtSecret []byte
var jwtExpiration time.Duration

type JWTClaims struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	BusinessID string `json:"business_id,omitempty"`
	IsAdmin    bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

func SetJWTConfig(secret string, expirationHours int) {
	jwtSecret = []byte(secret)
	jwtExpiration = time.Duration(expirationHours) * time.Hour
}

func GenerateJWT(userID, email, businessID string, isAdmin bool) (string, error) {
	if len(jwtSecret) == 0 {
		return "", errors.New("jwt secret not configured")
	}

	claims := JWTClaims{
		UserID:     userID,
		Email:      email,
		BusinessID: businessID,
		IsAdmin:    isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "agrimart",
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ValidateJWT(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
