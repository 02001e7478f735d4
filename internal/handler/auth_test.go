package handler_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dareyes/restaurant-management/internal/testutil"
)

const registerBody = `{"name":"Ana","email":"ana@example.com","password":"secret123","role":"waiter"}`

func TestRegister(t *testing.T) {
	s := testutil.NewServer(t)

	rec := s.Do(testutil.JSONRequest(http.MethodPost, "/api/auth/register", registerBody))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := testutil.DecodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	token, _ := body["accessToken"].(string)
	assert.Len(t, strings.Split(token, "."), 3, "access token should be a compact JWT")

	user := body["user"].(map[string]any)
	assert.Equal(t, "ana@example.com", user["email"])
	assert.Equal(t, "waiter", user["role"])

	cookie := testutil.RefreshCookie(rec)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.False(t, cookie.Secure, "Secure is reserved for production")
}

func TestRegisterValidation(t *testing.T) {
	s := testutil.NewServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing fields", `{"email":"x@example.com"}`},
		{"invalid role", `{"name":"A","email":"a@example.com","password":"p","role":"overlord"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.Do(testutil.JSONRequest(http.MethodPost, "/api/auth/register", tc.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := testutil.NewServer(t)

	rec := s.Do(testutil.JSONRequest(http.MethodPost, "/api/auth/register", registerBody))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.Do(testutil.JSONRequest(http.MethodPost, "/api/auth/register", registerBody))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already registered")
}

// Omitting the role defaults the account to client.
func TestRegisterDefaultRole(t *testing.T) {
	s := testutil.NewServer(t)

	rec := s.Do(testutil.JSONRequest(http.MethodPost, "/api/auth/register",
		`{"name":"Guest","email":"guest@example.com","password":"secret123"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := testutil.DecodeBody(t, rec)["user"].(map[string]any)
	assert.Equal(t, "client", user["role"])
}

func TestLogin(t *testing.T) {
	s := testutil.NewServer(t)
	s.Do(testutil.JSONRequest(http.MethodPost, "/api/auth/register", registerBody))

	rec := s.Do(testutil.JSONRequest(http.MethodPost, "/api/auth/login",
		`{"email":"ana@example.com","password":"secret123"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := testutil.DecodeBody(t, rec)
	token, _ := body["accessToken"].(string)
	assert.Len(t, strings.Split(token, "."), 3)
	assert.Equal(t, "waiter", body["user"].(map[string]any)["role"])
	require.NotNil(t, testutil.RefreshCookie(rec))

	// The fresh token works against a protected route.
	req := testutil.JSONRequest(http.MethodGet, "/api/auth/profile", "")
	req.Header.Set("Authorization", "Bearer "+token)
	rec = s.Do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ana@example.com",
		testutil.DecodeBody(t, rec)["user"].(map[string]any)["email"])
}

func TestLoginFailures(t *testing.T) {
	s := testutil.NewServer(t)
	s.Do(testutil.JSONRequest(http.MethodPost, "/api/auth/register", registerBody))

	cases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"wrong password", `{"email":"ana@example.com","password":"nope"}`, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"unknown email", `{"email":"ghost@example.com","password":"secret123"}`, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"missing fields", `{"email":"ana@example.com"}`, http.StatusBadRequest, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.Do(testutil.JSONRequest(http.MethodPost, "/api/auth/login", tc.body))
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			if tc.code != "" {
				assert.Equal(t, tc.code, testutil.DecodeBody(t, rec)["code"])
			}
		})
	}
}

func TestRefreshEndpointRotates(t *testing.T) {
	s := testutil.NewServer(t)
	first := s.Do(testutil.JSONRequest(http.MethodPost, "/api/auth/register", registerBody))
	cookie := testutil.RefreshCookie(first)
	require.NotNil(t, cookie)

	req := testutil.JSONRequest(http.MethodPost, "/api/auth/refresh-token", "")
	req.AddCookie(cookie)
	rec := s.Do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := testutil.DecodeBody(t, rec)
	assert.NotEmpty(t, body["accessToken"])
	rotated := testutil.RefreshCookie(rec)
	require.NotNil(t, rotated)
	assert.NotEqual(t, cookie.Value, rotated.Value)

	// Replaying the consumed cookie fails and clears it.
	req = testutil.JSONRequest(http.MethodPost, "/api/auth/refresh-token", "")
	req.AddCookie(cookie)
	rec = s.Do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_REFRESH_TOKEN_DB", testutil.DecodeBody(t, rec)["code"])
	cleared := testutil.RefreshCookie(rec)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.Expires.Before(time.Now()))
}

// Clients that cannot send cookies may put the token in the body instead.
func TestRefreshEndpointBodyFallback(t *testing.T) {
	s := testutil.NewServer(t)
	first := s.Do(testutil.JSONRequest(http.MethodPost, "/api/auth/register", registerBody))
	cookie := testutil.RefreshCookie(first)
	require.NotNil(t, cookie)

	rec := s.Do(testutil.JSONRequest(http.MethodPost, "/api/auth/refresh-token",
		`{"refreshToken":"`+cookie.Value+`"}`))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

// Refreshing with a cookie from a superseded session fails with the
// mismatch code and leaves an attributable audit event behind.
func TestRefreshEndpointReportsReuse(t *testing.T) {
	s := testutil.NewServer(t)
	first := s.Do(testutil.JSONRequest(http.MethodPost, "/api/auth/register", registerBody))
	cookie := testutil.RefreshCookie(first)
	require.NotNil(t, cookie)

	rec := s.Do(testutil.JSONRequest(http.MethodPost, "/api/auth/login",
		`{"email":"ana@example.com","password":"secret123"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	req := testutil.JSONRequest(http.MethodPost, "/api/auth/refresh-token", "")
	req.AddCookie(cookie)
	rec = s.Do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "REFRESH_TOKEN_ID_MISMATCH", testutil.DecodeBody(t, rec)["code"])

	events := s.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "session.reuse_detected", events[0].Type)
	assert.Equal(t, uint64(1), events[0].UserID)
	assert.Equal(t, "ana@example.com", events[0].Email)
}

func TestRefreshEndpointWithoutToken(t *testing.T) {
	s := testutil.NewServer(t)

	rec := s.Do(testutil.JSONRequest(http.MethodPost, "/api/auth/refresh-token", "{}"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "NO_REFRESH_TOKEN", testutil.DecodeBody(t, rec)["code"])
}

func TestLogout(t *testing.T) {
	s := testutil.NewServer(t)
	first := s.Do(testutil.JSONRequest(http.MethodPost, "/api/auth/register", registerBody))
	token, _ := testutil.DecodeBody(t, first)["accessToken"].(string)
	cookie := testutil.RefreshCookie(first)
	require.NotNil(t, cookie)

	req := testutil.JSONRequest(http.MethodPost, "/api/auth/logout", "")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := s.Do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cleared := testutil.RefreshCookie(rec)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	// The revoked refresh token is dead.
	req = testutil.JSONRequest(http.MethodPost, "/api/auth/refresh-token", "")
	req.AddCookie(cookie)
	rec = s.Do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_REFRESH_TOKEN_DB", testutil.DecodeBody(t, rec)["code"])
}

func TestLogoutAll(t *testing.T) {
	s := testutil.NewServer(t)
	s.Do(testutil.JSONRequest(http.MethodPost, "/api/auth/register", registerBody))
	second := s.Do(testutil.JSONRequest(http.MethodPost, "/api/auth/login",
		`{"email":"ana@example.com","password":"secret123"}`))
	token, _ := testutil.DecodeBody(t, second)["accessToken"].(string)

	req := testutil.JSONRequest(http.MethodPost, "/api/auth/logoutAll", "")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := s.Do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, 0, s.Tokens.LiveCount(1))
}

func TestProfileRequiresAuth(t *testing.T) {
	s := testutil.NewServer(t)

	rec := s.Do(testutil.JSONRequest(http.MethodGet, "/api/auth/profile", ""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "MISSING_TOKEN", testutil.DecodeBody(t, rec)["code"])
}
