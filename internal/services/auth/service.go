package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrSessionNotFound    = errors.New("session not found")
)

const RoleAdmin = "ADMIN"

type SessionRecord struct {
	SID       string
	Username  string
	Role      string
	ExpiresAt time.Time
}

type SessionStore interface {
	Create(ctx context.Context, session SessionRecord) error
	Get(ctx context.Context, sid string) (SessionRecord, error)
	Delete(ctx context.Context, sid string) error
}

// Service performs the "is authenticated admin" capability check that guards
// every mutating endpoint. Credentials come from configuration; sessions live
// in Redis so a restart does not invalidate issued tokens early.
type Service struct {
	jwt        *JWTManager
	sessions   SessionStore
	username   string
	password   string
	sessionTTL time.Duration
	now        func() time.Time
}

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
}

func NewService(jwt *JWTManager, sessions SessionStore, username, password string, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}
	return &Service{
		jwt:        jwt,
		sessions:   sessions,
		username:   strings.TrimSpace(username),
		password:   password,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return LoginResult{}, ErrInvalidInput
	}
	if s.jwt == nil || s.sessions == nil || s.username == "" || s.password == "" {
		return LoginResult{}, fmt.Errorf("auth dependencies are not configured")
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
	if !userOK || !passOK {
		return LoginResult{}, ErrInvalidCredentials
	}

	now := s.now().UTC()
	session := SessionRecord{
		SID:       uuid.NewString(),
		Username:  s.username,
		Role:      RoleAdmin,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return LoginResult{}, fmt.Errorf("create admin session: %w", err)
	}

	token, err := s.jwt.Generate(session.Username, session.SID, session.Role, now)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		AccessToken: token,
		ExpiresAt:   now.Add(s.jwt.TTL()),
	}, nil
}

// ValidateAccessToken checks both the token signature and that the backing
// session still exists, so logout takes effect before token expiry.
func (s *Service) ValidateAccessToken(ctx context.Context, accessToken string) (Identity, error) {
	if s.jwt == nil || s.sessions == nil {
		return Identity{}, fmt.Errorf("auth dependencies are not configured")
	}

	claims, err := s.jwt.Parse(accessToken)
	if err != nil {
		return Identity{}, ErrUnauthorized
	}

	session, err := s.sessions.Get(ctx, claims.SID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Identity{}, ErrUnauthorized
		}
		return Identity{}, fmt.Errorf("load admin session: %w", err)
	}
	if s.now().UTC().After(session.ExpiresAt) {
		return Identity{}, ErrUnauthorized
	}

	return Identity{
		Username: session.Username,
		SID:      session.SID,
		Role:     session.Role,
	}, nil
}

func (s *Service) Logout(ctx context.Context, sid string) error {
	if strings.TrimSpace(sid) == "" {
		return ErrInvalidInput
	}
	if s.sessions == nil {
		return fmt.Errorf("auth dependencies are not configured")
	}
	return s.sessions.Delete(ctx, sid)
}
