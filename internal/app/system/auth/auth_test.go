package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aiesociety/aiesweb/internal/app/system/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		zap.NewNop(),
	)
	require.NoError(t, err)
	return sm
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("protected content"))
	})
}

// issueCookie signs s in and returns the cookie the browser would send back.
func issueCookie(t *testing.T, sm *auth.SessionManager, s auth.Session) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	_, err := sm.Issue(rec, httptest.NewRequest(http.MethodPost, "/login", nil), s)
	require.NoError(t, err)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestIsValid(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &auth.Session{
		Subject:   "admin@aies.org",
		Role:      auth.RoleAdmin,
		IssuedAt:  now.Add(-time.Hour),
		ExpiresAt: now.Add(time.Hour),
	}
	assert.True(t, auth.IsValid(s, now))
	assert.True(t, auth.IsValid(s, s.IssuedAt))
	assert.False(t, auth.IsValid(s, s.ExpiresAt))
	assert.False(t, auth.IsValid(s, s.IssuedAt.Add(-time.Second)))
	assert.False(t, auth.IsValid(nil, now))

	noRole := *s
	noRole.Role = ""
	assert.False(t, auth.IsValid(&noRole, now))

	inverted := *s
	inverted.ExpiresAt = inverted.IssuedAt
	assert.False(t, auth.IsValid(&inverted, now))
}

// A token is valid exactly inside its half-open lifetime window.
func TestIsValid_Window(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rapid.Check(t, func(rt *rapid.T) {
		issued := base.Add(time.Duration(rapid.Int64Range(0, 1e6).Draw(rt, "issued")) * time.Second)
		ttl := time.Duration(rapid.Int64Range(1, 1e6).Draw(rt, "ttl")) * time.Second
		at := base.Add(time.Duration(rapid.Int64Range(-1e6, 3e6).Draw(rt, "at")) * time.Second)

		s := &auth.Session{Subject: "x", Role: auth.RoleMember, IssuedAt: issued, ExpiresAt: issued.Add(ttl)}
		want := !at.Before(issued) && at.Before(issued.Add(ttl))
		if got := auth.IsValid(s, at); got != want {
			rt.Fatalf("IsValid(%v..%v, %v) = %v, want %v", issued, issued.Add(ttl), at, got, want)
		}
	})
}

func TestIssueThenLoadSession_RoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)
	cookie := issueCookie(t, sm, auth.Session{Subject: "64f0c0ffee", Role: auth.RoleMember, Name: "Ada", Email: "ada@example.org"})

	var got *auth.Session
	h := sm.LoadSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentSession(r)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.AddCookie(cookie)
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, "64f0c0ffee", got.Subject)
	assert.Equal(t, auth.RoleMember, got.Role)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, 24*time.Hour, got.ExpiresAt.Sub(got.IssuedAt))
}

func TestLoadSession_ExpiredTokenIgnored(t *testing.T) {
	sm := newTestSessionManager(t)
	cookie := issueCookie(t, sm, auth.Session{Subject: "s", Role: auth.RoleAdmin})

	sm.SetClock(func() time.Time { return time.Now().Add(25 * time.Hour) })

	var found bool
	h := sm.LoadSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = auth.CurrentSession(r)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, found)
}

func TestLoadSession_TamperedCookieIgnored(t *testing.T) {
	sm := newTestSessionManager(t)
	cookie := issueCookie(t, sm, auth.Session{Subject: "s", Role: auth.RoleAdmin})
	cookie.Value = cookie.Value[:len(cookie.Value)-4] + "AAAA"

	var found bool
	h := sm.LoadSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = auth.CurrentSession(r)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, found)
}

func TestClear_ExpiresCookie(t *testing.T) {
	sm := newTestSessionManager(t)
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Clear(rec, httptest.NewRequest(http.MethodPost, "/logout", nil)))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestRequireSignedIn_NoSession_RedirectsBrowserToLogin(t *testing.T) {
	sm := newTestSessionManager(t)
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	sm.RequireSignedIn(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/login"))
}

func TestRequireSignedIn_NoSession_API_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	sm.RequireSignedIn(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"unauthorized"}`, rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	sm := newTestSessionManager(t)
	h := sm.RequireRole(auth.RoleAdmin)(okHandler())
	now := time.Now()

	member := &auth.Session{Subject: "m", Role: auth.RoleMember, IssuedAt: now, ExpiresAt: now.Add(time.Hour)}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, auth.WithSession(httptest.NewRequest(http.MethodGet, "/api/admin/courses", nil), member))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := &auth.Session{Subject: "a", Role: "Admin", IssuedAt: now, ExpiresAt: now.Add(time.Hour)}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, auth.WithSession(httptest.NewRequest(http.MethodGet, "/api/admin/courses", nil), admin))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/courses", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNewSessionManager_Errors(t *testing.T) {
	_, err := auth.NewSessionManager("k", "", "", time.Hour, false, zap.NewNop())
	assert.Error(t, err)
	_, err = auth.NewSessionManager("k", "n", "", 0, false, zap.NewNop())
	assert.Error(t, err)

	sm, err := auth.NewSessionManager("", "n", "", time.Hour, false, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, time.Hour, sm.TTL())
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := auth.HashPassword("secret1", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.NoError(t, auth.CheckPassword(hash, "secret1"))
	assert.ErrorIs(t, auth.CheckPassword(hash, "secret2"), auth.ErrPasswordMismatch)
}
