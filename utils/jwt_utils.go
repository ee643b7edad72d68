package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"optimarket/config"
)

const (
	RoleOptician = "OPTICIAN"
	RoleAdmin    = "ADMIN"
)

var ErrInvalidToken = errors.New("invalid token")

// GenerateToken issues a signed token carrying the caller identity and
// role.
func GenerateToken(userID int64, role string) (string, error) {
	cfg := config.LoadConfig()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	})
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseToken validates a token and extracts the caller identity and
// role.
func ParseToken(tokenString string) (int64, string, error) {
	cfg := config.LoadConfig()
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", ErrInvalidToken
	}

	rawID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, "", ErrInvalidToken
	}
	role, ok := claims["role"].(string)
	if !ok {
		return 0, "", ErrInvalidToken
	}
	return int64(rawID), role, nil
}
