package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OperatorClaims are the claims carried by an operator token.
type OperatorClaims struct {
	OperatorID string `json:"operator_id"`
	jwt.RegisteredClaims
}

// TokenService issues and validates operator tokens for the monitoring API.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a token service signing with the given secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    24 * time.Hour,
	}
}

// Generate issues a signed operator token.
func (s *TokenService) Generate(operatorID string) (string, error) {
	claims := &OperatorClaims{
		OperatorID: operatorID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses a token string and returns its claims.
func (s *TokenService) Validate(tokenString string) (*OperatorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &OperatorClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*OperatorClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrInvalidKey
}
