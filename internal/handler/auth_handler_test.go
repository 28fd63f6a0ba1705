//go:build unit

package handler

import (
	"context"
	"errors"
	"go-blog-admin/internal/logger"
	"go-blog-admin/internal/middleware"
	"go-blog-admin/internal/session"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// mockSessionManager is a mock implementation of the session.Manager interface.
type mockSessionManager struct {
	destroyCalled bool
	renewCalled   bool
	putKey        string
	putValue      interface{}
	subject       string
}

// Ensure mockSessionManager implements the session.Manager interface.
var _ session.Manager = (*mockSessionManager)(nil)

func (m *mockSessionManager) LoadAndSave(next http.Handler) http.Handler { return next }
func (m *mockSessionManager) Put(ctx context.Context, key string, val interface{}) {
	m.putKey = key
	m.putValue = val
}
func (m *mockSessionManager) GetString(ctx context.Context, key string) string { return m.subject }
func (m *mockSessionManager) PopString(ctx context.Context, key string) string { return "" }
func (m *mockSessionManager) Remove(ctx context.Context, key string)           {}
func (m *mockSessionManager) RenewToken(ctx context.Context) error {
	m.renewCalled = true
	return nil
}
func (m *mockSessionManager) Destroy(ctx context.Context) error {
	m.destroyCalled = true
	return nil
}

type fakeProvider struct {
	subject   string
	verifyErr error
}

func (p *fakeProvider) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return "https://idp.example.com/authorize?state=" + state
}

func (p *fakeProvider) Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	if code == "" {
		return nil, errors.New("missing code")
	}
	tok := &oauth2.Token{AccessToken: "access"}
	return tok.WithExtra(map[string]interface{}{"id_token": "raw-id-token"}), nil
}

func (p *fakeProvider) VerifySubject(ctx context.Context, rawToken string) (string, error) {
	if p.verifyErr != nil {
		return "", p.verifyErr
	}
	return p.subject, nil
}

func TestLogoutHandler(t *testing.T) {
	mockSession := &mockSessionManager{}
	// The provider is not used by the logout handler.
	authHandler := NewAuthHandler(nil, mockSession, logger.Nop())

	req := httptest.NewRequest("GET", "/auth/logout", nil)
	rr := httptest.NewRecorder()

	authHandler.handleLogout(rr, req)

	require.True(t, mockSession.destroyCalled, "expected session.Destroy to be called")
	require.Equal(t, http.StatusFound, rr.Code)
	location, err := rr.Result().Location()
	require.NoError(t, err)
	require.Equal(t, "/", location.Path)
}

func TestLoginHandlerSetsState(t *testing.T) {
	authHandler := NewAuthHandler(&fakeProvider{}, &mockSessionManager{}, logger.Nop())

	rr := httptest.NewRecorder()
	authHandler.handleLogin(rr, httptest.NewRequest("GET", "/auth/login", nil))

	require.Equal(t, http.StatusFound, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, stateCookie, cookies[0].Name)
	require.NotEmpty(t, cookies[0].Value)
	require.True(t, strings.HasSuffix(rr.Header().Get("Location"), "state="+cookies[0].Value))
}

func TestCallbackHandler(t *testing.T) {
	callback := func(provider *fakeProvider, sm *mockSessionManager, query, cookieState string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/auth/callback?"+query, nil)
		if cookieState != "" {
			req.AddCookie(&http.Cookie{Name: stateCookie, Value: cookieState})
		}
		rr := httptest.NewRecorder()
		NewAuthHandler(provider, sm, logger.Nop()).handleCallback(rr, req)
		return rr
	}

	t.Run("stores subject in a renewed session", func(t *testing.T) {
		sm := &mockSessionManager{}
		rr := callback(&fakeProvider{subject: "alice"}, sm, "state=s1&code=c1", "s1")

		require.Equal(t, http.StatusFound, rr.Code)
		require.True(t, sm.renewCalled)
		require.Equal(t, middleware.SessionSubjectKey, sm.putKey)
		require.Equal(t, "alice", sm.putValue)
	})

	t.Run("missing state cookie", func(t *testing.T) {
		sm := &mockSessionManager{}
		rr := callback(&fakeProvider{subject: "alice"}, sm, "state=s1&code=c1", "")

		require.Equal(t, http.StatusBadRequest, rr.Code)
		require.Empty(t, sm.putKey)
	})

	t.Run("state mismatch", func(t *testing.T) {
		sm := &mockSessionManager{}
		rr := callback(&fakeProvider{subject: "alice"}, sm, "state=other&code=c1", "s1")

		require.Equal(t, http.StatusBadRequest, rr.Code)
		require.Empty(t, sm.putKey)
	})

	t.Run("invalid id token", func(t *testing.T) {
		sm := &mockSessionManager{}
		rr := callback(&fakeProvider{verifyErr: errors.New("expired")}, sm, "state=s1&code=c1", "s1")

		require.Equal(t, http.StatusUnauthorized, rr.Code)
		require.False(t, sm.renewCalled)
	})
}
