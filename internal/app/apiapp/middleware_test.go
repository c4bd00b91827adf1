package apiapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	authsvc "github.com/pkazlouski/devfolio/backend/internal/services/auth"
)

type memorySessionStore struct {
	sessions map[string]authsvc.SessionRecord
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: map[string]authsvc.SessionRecord{}}
}

func (s *memorySessionStore) Create(_ context.Context, session authsvc.SessionRecord) error {
	s.sessions[session.SID] = session
	return nil
}

func (s *memorySessionStore) Get(_ context.Context, sid string) (authsvc.SessionRecord, error) {
	session, ok := s.sessions[sid]
	if !ok {
		return authsvc.SessionRecord{}, authsvc.ErrSessionNotFound
	}
	return session, nil
}

func (s *memorySessionStore) Delete(_ context.Context, sid string) error {
	delete(s.sessions, sid)
	return nil
}

func newTestAuthService(t *testing.T) *authsvc.Service {
	t.Helper()
	jwt := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	return authsvc.NewService(jwt, newMemorySessionStore(), "admin", "password", 12*time.Hour)
}

func TestAdminAuthMiddlewareRejectsMissingToken(t *testing.T) {
	mw := AdminAuthMiddleware(newTestAuthService(t), zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/threads", nil)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called without a token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAdminAuthMiddlewareRejectsInvalidToken(t *testing.T) {
	mw := AdminAuthMiddleware(newTestAuthService(t), zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/threads", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called with an invalid token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAdminAuthMiddlewareSetsIdentityContext(t *testing.T) {
	service := newTestAuthService(t)
	mw := AdminAuthMiddleware(service, zap.NewNop())

	login, err := service.Login(context.Background(), "admin", "password")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/threads", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := authsvc.IdentityFromContext(r.Context())
		if !ok {
			t.Fatalf("identity missing in context")
		}
		if identity.Username != "admin" || identity.Role != authsvc.RoleAdmin {
			t.Fatalf("unexpected identity: %+v", identity)
		}
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
		wantOK bool
	}{
		{name: "valid", header: "Bearer abc.def.ghi", want: "abc.def.ghi", wantOK: true},
		{name: "lowercase scheme", header: "bearer abc.def.ghi", want: "abc.def.ghi", wantOK: true},
		{name: "missing scheme", header: "abc.def.ghi"},
		{name: "empty token", header: "Bearer "},
		{name: "empty header", header: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := extractBearerToken(tc.header)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("unexpected result: got (%q, %v) want (%q, %v)", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{path: "/threads", want: "/threads"},
		{path: "/threads/42", want: "/threads/{id}"},
		{path: "/threads/42/comments", want: "/threads/{id}/comments"},
		{path: "/media/8f4d2c1a-aa0b-4d3e", want: "/media/{id}"},
		{path: "/media/url", want: "/media/url"},
	}

	for _, tc := range cases {
		if got := normalizePath(tc.path); got != tc.want {
			t.Fatalf("normalizePath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
