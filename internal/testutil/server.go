package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dareyes/restaurant-management/internal/auth"
	"github.com/dareyes/restaurant-management/internal/config"
	"github.com/dareyes/restaurant-management/internal/handler"
	"github.com/dareyes/restaurant-management/internal/middleware"
	"github.com/dareyes/restaurant-management/internal/queue"
)

// Server is a fully wired in-memory instance of the auth surface: fake
// stores, real codec, real session manager, real middleware and handlers.
type Server struct {
	Cfg      config.Config
	Users    *FakeUserStore
	Tokens   *FakeTokenStore
	Codec    *auth.Codec
	Sessions *auth.SessionManager
	Authn    *middleware.Authenticator
	Echo     *echo.Echo

	mu     sync.Mutex
	events []queue.AuthEvent
}

// Events returns a copy of the audit events the session manager emitted.
func (s *Server) Events() []queue.AuthEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]queue.AuthEvent, len(s.events))
	copy(out, s.events)
	return out
}

// NewServer builds a Server with the standard 15m/7d token lifetimes.
func NewServer(t *testing.T) *Server {
	return NewServerTTL(t, 15*time.Minute)
}

// NewServerTTL builds a Server with a custom access token lifetime.  A
// negative lifetime makes every issued access token already expired, which
// is how the transparent-refresh path is exercised without sleeping.
func NewServerTTL(t *testing.T, accessTTL time.Duration) *Server {
	t.Helper()

	cfg := config.Config{
		Env:            "test",
		AccessSecret:   "access-secret-for-tests",
		RefreshSecret:  "refresh-secret-for-tests",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
	}
	users := NewFakeUserStore()
	tokens := NewFakeTokenStore()
	codec := auth.NewCodec(cfg.AccessSecret, cfg.RefreshSecret, accessTTL, cfg.RefreshTTL())
	sessions := auth.NewSessionManager(users, tokens, codec)
	authn := middleware.NewAuthenticator(codec, users, sessions, cfg)
	h := handler.NewAuthHandler(cfg, sessions)

	e := echo.New()
	e.POST("/api/auth/register", h.Register)
	e.POST("/api/auth/login", h.Login)
	e.POST("/api/auth/refresh-token", h.RefreshToken)
	g := e.Group("/api/auth", authn.Middleware())
	g.POST("/logout", h.Logout)
	g.POST("/logoutAll", h.LogoutAll)
	g.GET("/profile", h.Profile)

	s := &Server{
		Cfg:      cfg,
		Users:    users,
		Tokens:   tokens,
		Codec:    codec,
		Sessions: sessions,
		Authn:    authn,
		Echo:     e,
	}
	sessions.SetAudit(func(ev queue.AuthEvent) {
		s.mu.Lock()
		s.events = append(s.events, ev)
		s.mu.Unlock()
	})
	return s
}

// Do serves the request against the in-memory router.
func (s *Server) Do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

// JSONRequest builds a request carrying a JSON body.
func JSONRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// DecodeBody unmarshals the recorded JSON response.
func DecodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response body: %v (%s)", err, rec.Body.String())
	}
	return body
}

// RefreshCookie returns the refresh token cookie from the response, or nil
// if none was set.
func RefreshCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.RefreshCookieName {
			return ck
		}
	}
	return nil
}
