package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"writehub/internal/config"
	"writehub/internal/model"
)

// AuthService issues and verifies the session bearer token. A single
// long-lived token covers the session; there is no refresh flow.
type AuthService struct {
	config *config.Config
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{config: cfg}
}

// TokenClaims is the verified identity carried by a session token.
type TokenClaims struct {
	UserID int64
	Email  string
}

// IssueToken signs a session token for the user, valid for TokenMaxAge.
func (s *AuthService) IssueToken(userID int64, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     now.Add(time.Duration(s.config.TokenMaxAge) * time.Second).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses and validates a session token, returning its claims.
func (s *AuthService) VerifyToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, model.ErrInvalidCredentials
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return nil, model.ErrInvalidCredentials
	}
	email, _ := claims["email"].(string)

	return &TokenClaims{UserID: int64(userIDFloat), Email: email}, nil
}
