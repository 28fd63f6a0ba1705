//go:build unit

package middleware

import (
	"context"
	"errors"
	"go-blog-admin/internal/auth"
	"go-blog-admin/internal/logger"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubSession struct {
	subject string
}

func (s *stubSession) LoadAndSave(next http.Handler) http.Handler           { return next }
func (s *stubSession) Put(ctx context.Context, key string, val interface{}) {}
func (s *stubSession) GetString(ctx context.Context, key string) string {
	if key == SessionSubjectKey {
		return s.subject
	}
	return ""
}
func (s *stubSession) PopString(ctx context.Context, key string) string { return "" }
func (s *stubSession) RenewToken(ctx context.Context) error             { return nil }
func (s *stubSession) Destroy(ctx context.Context) error                { return nil }
func (s *stubSession) Remove(ctx context.Context, key string)           {}

type stubVerifier map[string]string

func (v stubVerifier) VerifySubject(ctx context.Context, raw string) (string, error) {
	if sub, ok := v[raw]; ok {
		return sub, nil
	}
	return "", errors.New("bad token")
}

func TestAuthorizer(t *testing.T) {
	enforcer, err := auth.NewMemoryEnforcer()
	require.NoError(t, err)
	auth.SeedDefaultPolicies(enforcer, []string{"alice"}, logger.Nop())

	verifier := stubVerifier{"alice-token": "alice", "bob-token": "bob"}

	tests := []struct {
		name        string
		method      string
		path        string
		session     string
		bearer      string
		wantStatus  int
		wantSubject string
	}{
		{"anonymous may list posts", http.MethodGet, "/posts", "", "", http.StatusOK, AnonymousSubject},
		{"anonymous may read a post", http.MethodGet, "/posts/7", "", "", http.StatusOK, AnonymousSubject},
		{"trailing slash on list", http.MethodGet, "/posts/", "", "", http.StatusOK, AnonymousSubject},
		{"trailing slash on item", http.MethodGet, "/categories/3/", "", "", http.StatusOK, AnonymousSubject},
		{"trailing slash does not widen writes", http.MethodPost, "/posts/", "", "", http.StatusUnauthorized, ""},
		{"dot segments cannot escape policy", http.MethodDelete, "/posts/../posts/7", "bob", "", http.StatusForbidden, ""},
		{"anonymous may not create", http.MethodPost, "/posts", "", "", http.StatusUnauthorized, ""},
		{"editor session may update", http.MethodPut, "/posts/7", "alice", "", http.StatusOK, "alice"},
		{"editor session may still read", http.MethodGet, "/categories/3", "alice", "", http.StatusOK, "alice"},
		{"non editor is forbidden", http.MethodDelete, "/categories/3", "bob", "", http.StatusForbidden, ""},
		{"editor bearer token", http.MethodPost, "/categories", "", "alice-token", http.StatusOK, "alice"},
		{"bearer wins over session", http.MethodPost, "/posts", "alice", "bob-token", http.StatusForbidden, ""},
		{"invalid bearer token", http.MethodGet, "/posts", "", "garbage", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotSubject string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotSubject = GetUserInfo(r.Context()).Subject
				w.WriteHeader(http.StatusOK)
			})
			h := Authorizer(enforcer, &stubSession{subject: tt.session}, verifier, logger.Nop())(next)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			require.Equal(t, tt.wantSubject, gotSubject)
		})
	}
}

func TestAuthorizerWithoutVerifierRejectsBearer(t *testing.T) {
	enforcer, err := auth.NewMemoryEnforcer()
	require.NoError(t, err)
	auth.SeedDefaultPolicies(enforcer, nil, logger.Nop())

	h := Authorizer(enforcer, nil, nil, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
