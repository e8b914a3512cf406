package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pageza/recipebox/backend/internal/types"
)

var ErrInvalidToken = errors.New("invalid token")

// AuthService validates HS256 bearer tokens from the identity provider.
// Users and passwords live there; this service only reads the subject.
type AuthService struct {
	jwtSecret string
}

func NewAuthService(jwtSecret string) *AuthService {
	return &AuthService{jwtSecret: jwtSecret}
}

func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	if s.jwtSecret == "" {
		return nil, errors.New("token validation is not configured")
	}
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateToken signs a token for userID. Used by operator tooling and
// tests; production tokens come from the identity provider.
func (s *AuthService) GenerateToken(userID string, ttl time.Duration) (string, error) {
	if s.jwtSecret == "" {
		return "", errors.New("token signing is not configured")
	}
	now := time.Now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
}
