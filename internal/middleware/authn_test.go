package middleware_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dareyes/restaurant-management/internal/middleware"
	"github.com/dareyes/restaurant-management/internal/testutil"
)

// profileReq builds a GET /api/auth/profile request, the protected probe
// route used throughout these tests.
func profileReq(token string) *http.Request {
	req := testutil.JSONRequest(http.MethodGet, "/api/auth/profile", "")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	return req
}

func registerUser(t *testing.T, s *testutil.Server) (string, *http.Cookie) {
	t.Helper()
	rec := s.Do(testutil.JSONRequest(http.MethodPost, "/api/auth/register",
		`{"name":"Ana","email":"ana@example.com","password":"secret123","role":"waiter"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := testutil.DecodeBody(t, rec)
	token, _ := body["accessToken"].(string)
	require.NotEmpty(t, token)
	cookie := testutil.RefreshCookie(rec)
	require.NotNil(t, cookie)
	return token, cookie
}

func TestAuthnHeaderParsing(t *testing.T) {
	s := testutil.NewServer(t)
	token, _ := registerUser(t, s)

	cases := []struct {
		name     string
		header   string
		status   int
		code     string
	}{
		{"missing header", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"bearer with no token", "Bearer", http.StatusUnauthorized, "EMPTY_TOKEN"},
		{"too many parts", "Bearer a b", http.StatusUnauthorized, "INVALID_TOKEN_FORMAT"},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"bearer form", "Bearer " + token, http.StatusOK, ""},
		{"bare token form", token, http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.Do(profileReq(tc.header))
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			if tc.code != "" {
				body := testutil.DecodeBody(t, rec)
				assert.Equal(t, tc.code, body["code"])
			}
		})
	}
}

func TestAuthnAttachesIdentity(t *testing.T) {
	s := testutil.NewServer(t)
	token, _ := registerUser(t, s)

	rec := s.Do(profileReq("Bearer " + token))
	require.Equal(t, http.StatusOK, rec.Code)
	body := testutil.DecodeBody(t, rec)
	user := body["user"].(map[string]any)
	assert.Equal(t, "ana@example.com", user["email"])
	assert.Equal(t, "waiter", user["role"])
}

// With a negative access TTL every token arrives expired, so each request
// exercises the transparent refresh: the response must carry a rotated
// cookie and the new access token in the X-Access-Token header.
func TestAuthnTransparentRefresh(t *testing.T) {
	s := testutil.NewServerTTL(t, -time.Minute)
	token, cookie := registerUser(t, s)

	req := profileReq("Bearer " + token)
	req.AddCookie(cookie)
	rec := s.Do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	newToken := rec.Header().Get(middleware.AccessTokenHeader)
	assert.NotEmpty(t, newToken)
	assert.NotEqual(t, token, newToken)

	rotated := testutil.RefreshCookie(rec)
	require.NotNil(t, rotated)
	assert.NotEqual(t, cookie.Value, rotated.Value)

	// The original request went through with the old (expired) token.
	body := testutil.DecodeBody(t, rec)
	assert.Equal(t, "ana@example.com", body["user"].(map[string]any)["email"])

	// The superseded cookie is now burnt: a second hop with it fails.
	req = profileReq("Bearer " + token)
	req.AddCookie(cookie)
	rec = s.Do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_REFRESH_TOKEN_DB", testutil.DecodeBody(t, rec)["code"])
	cleared := testutil.RefreshCookie(rec)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestAuthnExpiredWithoutCookie(t *testing.T) {
	s := testutil.NewServerTTL(t, -time.Minute)
	token, _ := registerUser(t, s)

	rec := s.Do(profileReq("Bearer " + token))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "NO_REFRESH_TOKEN", testutil.DecodeBody(t, rec)["code"])
}

// A stale-session cookie presented on the transparent-refresh path is a
// reuse signature: the request fails with the mismatch code and the audit
// sink receives an attributable event.
func TestAuthnTransparentRefreshReportsReuse(t *testing.T) {
	s := testutil.NewServerTTL(t, -time.Minute)
	token, cookie := registerUser(t, s)

	rec := s.Do(testutil.JSONRequest(http.MethodPost, "/api/auth/login",
		`{"email":"ana@example.com","password":"secret123"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	req := profileReq("Bearer " + token)
	req.AddCookie(cookie)
	rec = s.Do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "REFRESH_TOKEN_ID_MISMATCH", testutil.DecodeBody(t, rec)["code"])

	events := s.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "session.reuse_detected", events[0].Type)
	assert.Equal(t, uint64(1), events[0].UserID)
	assert.Equal(t, "ana@example.com", events[0].Email)
	assert.NotEmpty(t, events[0].SessionID)
}

func TestAuthnExpiredWithRevokedCookie(t *testing.T) {
	s := testutil.NewServerTTL(t, -time.Minute)
	token, cookie := registerUser(t, s)

	require.NoError(t, s.Tokens.RevokeAllForUser(context.Background(), 1))

	req := profileReq("Bearer " + token)
	req.AddCookie(cookie)
	rec := s.Do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_REFRESH_TOKEN_DB", testutil.DecodeBody(t, rec)["code"])
}

// An access token from a superseded session is cryptographically fine but
// no longer matches the user's session marker.
func TestAuthnSupersededSession(t *testing.T) {
	s := testutil.NewServer(t)
	token, _ := registerUser(t, s)

	rec := s.Do(testutil.JSONRequest(http.MethodPost, "/api/auth/login",
		`{"email":"ana@example.com","password":"secret123"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.Do(profileReq("Bearer " + token))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_SESSION", testutil.DecodeBody(t, rec)["code"])
}

func TestAuthnUserDeleted(t *testing.T) {
	s := testutil.NewServer(t)
	token, _ := registerUser(t, s)

	u, err := s.Users.GetByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	s.Users.Remove(u.ID)

	rec := s.Do(profileReq("Bearer " + token))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "USER_NOT_FOUND", testutil.DecodeBody(t, rec)["code"])
}
