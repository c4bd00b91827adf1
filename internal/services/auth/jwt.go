package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type JWTManager struct {
	secret []byte
	ttl    time.Duration
}

type Claims struct {
	Username string
	SID      string
	Role     string
}

type tokenClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	SID      string `json:"sid"`
	jwt.RegisteredClaims
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &JWTManager{
		secret: []byte(strings.TrimSpace(secret)),
		ttl:    ttl,
	}
}

func (m *JWTManager) Generate(username, sid, role string, now time.Time) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("jwt secret is empty")
	}

	claims := tokenClaims{
		Username: username,
		Role:     role,
		SID:      sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

func (m *JWTManager) Parse(accessToken string) (Claims, error) {
	token, err := jwt.ParseWithClaims(accessToken, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrUnauthorized
		}
		return m.secret, nil
	})
	if err != nil {
		return Claims{}, ErrUnauthorized
	}

	tc, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return Claims{}, ErrUnauthorized
	}
	if strings.TrimSpace(tc.Username) == "" || strings.TrimSpace(tc.SID) == "" {
		return Claims{}, ErrUnauthorized
	}

	return Claims{
		Username: strings.TrimSpace(tc.Username),
		SID:      strings.TrimSpace(tc.SID),
		Role:     strings.TrimSpace(tc.Role),
	}, nil
}

func (m *JWTManager) TTL() time.Duration {
	return m.ttl
}
