package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dareyes/restaurant-management/internal/auth"
	"github.com/dareyes/restaurant-management/internal/config"
	"github.com/dareyes/restaurant-management/internal/middleware"
	"github.com/dareyes/restaurant-management/internal/model"
	"github.com/dareyes/restaurant-management/internal/queue"
	"github.com/dareyes/restaurant-management/internal/repository"
)

const dbTimeout = 5 * time.Second

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Sessions *auth.SessionManager
}

func NewAuthHandler(cfg config.Config, sessions *auth.SessionManager) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Sessions: sessions}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type userPart struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role.String()}
}

func authError(c echo.Context, err error) error {
	e := auth.AsError(err)
	if e == auth.ErrServer {
		c.Logger().Errorf("auth: %v", err)
	}
	return c.JSON(e.Status, echo.Map{"success": false, "code": e.Code, "message": e.Message})
}

func (h *AuthHandler) publish(evType string, u model.User, sessionID string) {
	if h.Cfg.RabbitURL == "" {
		return
	}
	ev := queue.AuthEvent{
		Type:      evType,
		UserID:    u.ID,
		Email:     u.Email,
		SessionID: sessionID,
		At:        time.Now().UTC(),
	}
	// Fire and forget; audit must not block or fail the request.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
		defer cancel()
		_ = queue.Publish(ctx, h.Cfg.RabbitURL, ev)
	}()
}

// Register creates a user and establishes a session immediately, returning
// the same shape as login.  Duplicate email and invalid role are 400s.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "name, email and password are required"})
	}
	roleInput := req.Role
	if strings.TrimSpace(roleInput) == "" {
		roleInput = model.RoleClient.String()
	}
	role, ok := model.ParseRole(roleInput)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid role"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	pair, u, err := h.Sessions.Register(ctx, req.Name, req.Email, req.Password, role)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "email already registered"})
		}
		return authError(c, err)
	}

	middleware.SetRefreshCookie(c, h.Cfg, pair.RefreshToken, pair.RefreshExpires)
	h.publish(queue.EventRegister, u, u.SessionID)

	return c.JSON(http.StatusCreated, echo.Map{
		"success":     true,
		"accessToken": pair.AccessToken,
		"user":        toUserPart(u),
	})
}

// Login verifies credentials and starts a fresh session, superseding any
// previous one for the user.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	pair, u, err := h.Sessions.Login(ctx, req.Email, req.Password)
	if err != nil {
		return authError(c, err)
	}

	middleware.SetRefreshCookie(c, h.Cfg, pair.RefreshToken, pair.RefreshExpires)
	h.publish(queue.EventLogin, u, u.SessionID)

	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"accessToken": pair.AccessToken,
		"user":        toUserPart(u),
	})
}

// RefreshToken rotates the refresh token from the httpOnly cookie (body
// field as a fallback) and returns a new access token.  Every failure mode
// revokes the presented record and clears the cookie so the client cannot
// retry with the same bad token.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	raw, ok := middleware.ReadRefreshCookie(c)
	if !ok {
		var req refreshReq
		_ = c.Bind(&req)
		raw = strings.TrimSpace(req.RefreshToken)
	}
	if raw == "" {
		e := auth.ErrNoRefreshToken
		return c.JSON(e.Status, echo.Map{"success": false, "code": e.Code, "message": e.Message})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	// Reuse detection is reported by the session manager's audit sink, which
	// knows the targeted user; nothing to attribute here on failure.
	pair, u, err := h.Sessions.Refresh(ctx, raw)
	if err != nil {
		middleware.ClearRefreshCookie(c, h.Cfg)
		return authError(c, err)
	}

	middleware.SetRefreshCookie(c, h.Cfg, pair.RefreshToken, pair.RefreshExpires)

	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"accessToken": pair.AccessToken,
		"user":        toUserPart(u),
	})
}

// Logout revokes the refresh tokens of the caller's current session only;
// a newer session started elsewhere stays untouched.
func (h *AuthHandler) Logout(c echo.Context) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return authError(c, auth.ErrUnauthenticated)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Sessions.Logout(ctx, id.UserID, id.SessionID); err != nil {
		return authError(c, err)
	}
	middleware.ClearRefreshCookie(c, h.Cfg)
	h.publish(queue.EventLogout, model.User{ID: id.UserID, Email: id.Email}, id.SessionID)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "session closed"})
}

// LogoutAll revokes every refresh token for the caller across all sessions.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return authError(c, auth.ErrUnauthenticated)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Sessions.LogoutAll(ctx, id.UserID); err != nil {
		return authError(c, err)
	}
	middleware.ClearRefreshCookie(c, h.Cfg)
	h.publish(queue.EventLogoutAll, model.User{ID: id.UserID, Email: id.Email}, "")

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "all sessions closed"})
}

// Profile returns the authenticated identity.
func (h *AuthHandler) Profile(c echo.Context) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return authError(c, auth.ErrUnauthenticated)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user": userPart{
			ID:    id.UserID,
			Name:  id.Name,
			Email: id.Email,
			Role:  id.Role.String(),
		},
	})
}
